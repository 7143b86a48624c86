package build

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
)

// ManifestFile is written to the output root and records a fingerprint per page.
const ManifestFile = ".florentcc-manifest.yaml"

// Manifest maps output-relative page paths to content fingerprints.
type Manifest struct {
	BuildID string            `yaml:"build_id"`
	Pages   map[string]string `yaml:"pages"`
}

func newManifest(buildID string) *Manifest {
	return &Manifest{BuildID: buildID, Pages: map[string]string{}}
}

// Fingerprint returns the fingerprint recorded for a generated page.
func Fingerprint(page []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(page))
}

// loadManifest reads the manifest in outputDir. A missing or unreadable
// manifest yields an empty one, which forces every page to be written.
func loadManifest(outputDir string) *Manifest {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestFile))
	if err != nil {
		return newManifest("")
	}
	m := newManifest("")
	if err := yaml.Unmarshal(data, m); err != nil || m.Pages == nil {
		return newManifest("")
	}
	return m
}

func (m *Manifest) save(outputDir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode build manifest").Build()
	}
	if err := os.WriteFile(filepath.Join(outputDir, ManifestFile), data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write build manifest").
			WithContext("path", outputDir).Build()
	}
	return nil
}

// unchanged reports whether path was recorded with fp and still exists on disk.
func (m *Manifest) unchanged(outputDir, path, fp string) bool {
	if m.Pages[path] != fp {
		return false
	}
	_, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(path)))
	return err == nil
}

// stale returns the paths recorded in m that next no longer produces, sorted.
func (m *Manifest) stale(next *Manifest) []string {
	var out []string
	for p := range m.Pages {
		if _, ok := next.Pages[p]; !ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
