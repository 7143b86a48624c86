// Package passthrough copies static files from the input tree to the output
// tree without processing them.
package passthrough

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
	"github.com/florentdestremau/florent.cc/internal/logfields"
	"github.com/florentdestremau/florent.cc/internal/site"
)

// Copier performs passthrough copies between an input and an output root.
type Copier struct {
	inputRoot  string
	outputRoot string
	logger     *slog.Logger
}

// NewCopier returns a copier. A nil logger uses slog.Default.
func NewCopier(inputRoot, outputRoot string, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Copier{inputRoot: inputRoot, outputRoot: outputRoot, logger: logger}
}

// CopyAll applies rules in order and returns the number of files written.
// A rule whose source does not exist is logged and skipped.
func (c *Copier) CopyAll(ctx context.Context, rules []site.PassthroughCopy) (int, error) {
	total := 0
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := c.Copy(rule)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Copy applies a single rule. From may name a file, a directory or a
// filepath.Match glob. For a glob with an explicit target, matches are placed
// inside the target directory.
func (c *Copier) Copy(rule site.PassthroughCopy) (int, error) {
	target := rule.To
	if target == "" {
		target = rule.From
	}

	if hasMeta(rule.From) {
		matches, err := filepath.Glob(filepath.Join(c.inputRoot, filepath.FromSlash(rule.From)))
		if err != nil {
			return 0, errors.WrapError(err, errors.CategoryValidation, "invalid passthrough pattern").
				WithContext("pattern", rule.From).Build()
		}
		if len(matches) == 0 {
			c.logger.Warn("Passthrough pattern matched nothing", logfields.Path(rule.From))
			return 0, nil
		}
		total := 0
		for _, m := range matches {
			dst, err := c.globTarget(m, rule.From, target)
			if err != nil {
				return total, err
			}
			n, err := c.copyPath(m, dst)
			total += n
			if err != nil {
				return total, err
			}
		}
		return total, nil
	}

	src := filepath.Join(c.inputRoot, filepath.FromSlash(rule.From))
	if _, err := os.Stat(src); os.IsNotExist(err) {
		c.logger.Warn("Passthrough source not found, skipping", logfields.Path(rule.From))
		return 0, nil
	}
	return c.copyPath(src, filepath.Join(c.outputRoot, filepath.FromSlash(target)))
}

func (c *Copier) globTarget(match, pattern, target string) (string, error) {
	if target == pattern {
		rel, err := filepath.Rel(c.inputRoot, match)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "resolve passthrough match").
				WithContext("path", match).Build()
		}
		return filepath.Join(c.outputRoot, rel), nil
	}
	return filepath.Join(c.outputRoot, filepath.FromSlash(target), filepath.Base(match)), nil
}

func (c *Copier) copyPath(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, wrapFS(err, src)
	}
	if info.IsDir() {
		return CopyDir(src, dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, wrapFS(err, dst)
	}
	if err := copyFile(src, dst); err != nil {
		return 0, wrapFS(err, src)
	}
	c.logger.Debug("Copied passthrough file", logfields.Path(dst))
	return 1, nil
}

// CopyDir recursively copies a directory tree, preserving file modes.
// It returns the number of files copied.
func CopyDir(src, dst string) (int, error) {
	// Get properties of source dir
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, wrapFS(err, src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return 0, wrapFS(err, dst)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, wrapFS(err, src)
	}

	count := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			n, err := CopyDir(srcPath, dstPath)
			count += n
			if err != nil {
				return count, err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return count, wrapFS(err, srcPath)
		}
		count++
	}

	return count, nil
}

// copyFile copies a single file from src to dst and gives dst the source's
// permissions. An existing dst is replaced, even when it is read-only.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()
	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	return os.Chmod(dst, srcInfo.Mode().Perm())
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[\`)
}

func wrapFS(err error, path string) error {
	return errors.WrapError(err, errors.CategoryFileSystem, "passthrough copy failed").
		WithContext("path", path).Build()
}
