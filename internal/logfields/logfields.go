package logfields

import "log/slog"

// Canonical log field names shared by the build, preview and CLI packages.
const (
	KeyBuildID     = "build_id"
	KeyStage       = "stage"
	KeyDurationMS  = "duration_ms"
	KeyFile        = "file"
	KeyPath        = "path"
	KeyURL         = "url"
	KeyLayout      = "layout"
	KeyFilter      = "filter"
	KeyCollection  = "collection"
	KeyEnvironment = "environment"
	KeyCount       = "count"
	KeyError       = "error"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeyOp          = "op"
)

func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Layout(l string) slog.Attr        { return slog.String(KeyLayout, l) }
func Filter(name string) slog.Attr     { return slog.String(KeyFilter, name) }
func Collection(name string) slog.Attr { return slog.String(KeyCollection, name) }
func Environment(env string) slog.Attr { return slog.String(KeyEnvironment, env) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Op(op string) slog.Attr           { return slog.String(KeyOp, op) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
