package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/florentdestremau/florent.cc/internal/collections"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// envFiles are loaded most specific first; godotenv never overrides a set
// variable, so .env.local wins over .env and the process wins over both.
var envFiles = []string{".env.local", ".env"}

func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", "file", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment file", "file", path)
	}
}

// ResolveEnvironment reads variable through lookup once and maps it to an Environment.
func ResolveEnvironment(lookup LookupFunc, variable string) collections.Environment {
	if lookup == nil {
		return collections.EnvDevelopment
	}
	raw, _ := lookup(variable)
	return collections.ParseEnvironment(raw)
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
