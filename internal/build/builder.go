package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/florentdestremau/florent.cc/internal/collections"
	"github.com/florentdestremau/florent.cc/internal/config"
	"github.com/florentdestremau/florent.cc/internal/content"
	"github.com/florentdestremau/florent.cc/internal/foundation/errors"
	"github.com/florentdestremau/florent.cc/internal/logfields"
	"github.com/florentdestremau/florent.cc/internal/markdown"
	"github.com/florentdestremau/florent.cc/internal/metrics"
	"github.com/florentdestremau/florent.cc/internal/observability"
	"github.com/florentdestremau/florent.cc/internal/passthrough"
	"github.com/florentdestremau/florent.cc/internal/site"
	"github.com/florentdestremau/florent.cc/internal/siteconf"
)

// Status is the overall outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Report summarizes a build.
type Report struct {
	BuildID     string
	Environment collections.Environment
	Status      Status
	OutputPath  string

	// Pages is the number of documents loaded.
	Pages          int
	PagesWritten   int
	PagesUnchanged int
	// DraftsSkipped counts draft pages not written because of the environment.
	DraftsSkipped    int
	PagesRemoved     int
	PassthroughFiles int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Builder builds the site described by a configuration.
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder. The default records nothing.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New returns a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, recorder: metrics.NoopRecorder{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

type pageOutput struct {
	item *collections.Item
	data []byte
}

// Build runs the full pipeline once. The returned report is non-nil even
// when an error is returned.
func (b *Builder) Build(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	report = &Report{
		BuildID:   uuid.NewString(),
		StartTime: start,
	}

	if b.cfg == nil {
		report.finish(StatusFailed)
		b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		return report, errors.ConfigError("config required").Build()
	}
	cfg := b.cfg
	report.Environment = cfg.Environment
	report.OutputPath = cfg.Output

	ctx = observability.WithLogger(ctx, b.logger)
	ctx = observability.WithBuildID(ctx, report.BuildID)
	ctx = observability.WithEnvironment(ctx, cfg.Environment.String())

	defer func() {
		switch {
		case err == nil:
			report.finish(StatusSuccess)
			b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
			observability.InfoContext(ctx, "Build completed",
				logfields.DurationMS(float64(report.Duration.Microseconds())/1000),
				slog.Int("written", report.PagesWritten),
				slog.Int("unchanged", report.PagesUnchanged),
				slog.Int("drafts_skipped", report.DraftsSkipped),
				slog.Int("passthrough", report.PassthroughFiles))
		case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
			report.finish(StatusCanceled)
			b.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
			observability.WarnContext(ctx, "Build canceled", logfields.Error(err))
		default:
			report.finish(StatusFailed)
			b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
			observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
		}
		b.recorder.ObserveBuildDuration(report.Duration)
	}()

	observability.InfoContext(ctx, "Starting build",
		logfields.Path(cfg.Input), slog.String("output", cfg.Output))

	// Stage 1: registry
	registry, err := b.newRegistry(ctx)
	if err != nil {
		return report, err
	}

	// Stage 2: content
	docs, err := stage(ctx, b, "load", func(ctx context.Context) ([]*content.Document, error) {
		return b.loadContent()
	})
	if err != nil {
		return report, err
	}
	report.Pages = len(docs)

	// Stage 3: markdown
	renderer := markdown.NewRenderer(registry.MarkdownExtensions()...)
	items := make([]*collections.Item, 0, len(docs))
	_, err = stage(ctx, b, "markdown", func(ctx context.Context) (struct{}, error) {
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return struct{}{}, err
			}
			html, err := renderer.Render(doc.Body)
			if err != nil {
				return struct{}{}, errors.WrapError(err, errors.CategoryRender, "render markdown").
					WithContext("file", doc.Item.InputPath).Build()
			}
			doc.Item.Content = string(html)
			items = append(items, doc.Item)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return report, err
	}

	colls := registry.ResolveCollections(items, cfg.Environment)
	for _, name := range registry.CollectionNames() {
		observability.DebugContext(ctx, "Resolved collection",
			logfields.Collection(name), logfields.Count(len(colls[name])))
	}

	// Stage 4: layouts and transforms
	pages, err := stage(ctx, b, "render", func(ctx context.Context) ([]pageOutput, error) {
		return b.renderPages(ctx, registry, items, colls, report)
	})
	if err != nil {
		return report, err
	}

	// Stage 5: write
	if _, err = stage(ctx, b, "write", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, b.writePages(ctx, pages, report)
	}); err != nil {
		return report, err
	}

	// Stage 6: passthrough
	copier := passthrough.NewCopier(cfg.Input, cfg.Output, observability.ContextLogger(ctx))
	n, err := stage(ctx, b, "passthrough", func(ctx context.Context) (int, error) {
		return copier.CopyAll(ctx, registry.Passthrough())
	})
	report.PassthroughFiles = n
	b.recorder.AddPassthroughFiles(n)
	if err != nil {
		return report, err
	}

	return report, nil
}

func (b *Builder) newRegistry(ctx context.Context) (*site.Registry, error) {
	ctx = observability.WithStage(ctx, "configure")
	registry := site.NewRegistry()
	err := siteconf.Configure(registry, b.cfg, siteconf.WithFallbackHook(func(filter string, value any) {
		b.recorder.IncFilterFallback(filter)
		observability.DebugContext(ctx, "Filter fell back to string form",
			logfields.Filter(filter), slog.Any("value", value))
	}))
	if err != nil {
		return nil, err
	}
	return registry, nil
}

func (b *Builder) loadContent() ([]*content.Document, error) {
	return content.Load(content.Options{Root: b.cfg.Input, Exclude: []string{b.cfg.Output, b.cfg.Layouts}})
}

// Collections loads the content and resolves the registered collections
// without rendering or writing anything. Names are in registration order.
func (b *Builder) Collections(ctx context.Context) ([]string, map[string][]*collections.Item, error) {
	if b.cfg == nil {
		return nil, nil, errors.ConfigError("config required").Build()
	}
	ctx = observability.WithLogger(ctx, b.logger)
	registry, err := b.newRegistry(ctx)
	if err != nil {
		return nil, nil, err
	}
	docs, err := b.loadContent()
	if err != nil {
		return nil, nil, err
	}
	items := make([]*collections.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.Item)
	}
	return registry.CollectionNames(), registry.ResolveCollections(items, b.cfg.Environment), nil
}

// stage runs fn with the stage recorded on ctx and its duration observed.
func stage[T any](ctx context.Context, b *Builder, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx = observability.WithStage(ctx, name)
	started := time.Now()
	observability.DebugContext(ctx, "Stage started")
	out, err := fn(ctx)
	b.recorder.ObserveStageDuration(name, time.Since(started))
	if err == nil {
		observability.DebugContext(ctx, "Stage finished",
			logfields.DurationMS(float64(time.Since(started).Microseconds())/1000))
	}
	return out, err
}

func (b *Builder) renderPages(ctx context.Context, registry *site.Registry, items []*collections.Item,
	colls map[string][]*collections.Item, report *Report) ([]pageOutput, error) {
	layouts, err := loadLayouts(b.cfg.Layouts, registry.Filters())
	if err != nil {
		return nil, err
	}
	siteData := SiteData{
		Title:       b.cfg.Title,
		URL:         b.cfg.URL,
		Environment: b.cfg.Environment.String(),
		BuildID:     report.BuildID,
	}
	transforms := registry.Transforms()

	pages := make([]pageOutput, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !collections.Publishable(item, b.cfg.Environment) {
			report.DraftsSkipped++
			b.recorder.IncPage(metrics.PageSkipped)
			observability.DebugContext(ctx, "Skipping draft", logfields.File(item.InputPath))
			continue
		}

		out, err := layouts.render(b.layoutFor(item, layouts), PageData{
			Page:        item,
			Content:     template.HTML(item.Content), // #nosec G203 -- rendered from author-owned Markdown
			Collections: colls,
			Site:        siteData,
		})
		if err != nil {
			return nil, withFile(err, item.InputPath)
		}

		for _, tr := range transforms {
			out, err = tr.Fn(out, item.OutputPath)
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryRender, "output transform failed").
					WithContext("transform", tr.Name).WithContext("file", item.InputPath).Build()
			}
		}
		pages = append(pages, pageOutput{item: item, data: out})
	}
	return pages, nil
}

// layoutFor picks the item's layout. An explicit layout may omit the .html
// extension; without one the configured default is used when it exists.
func (b *Builder) layoutFor(item *collections.Item, layouts *layoutSet) string {
	if item.Layout != "" {
		if item.Layout != NoLayout && !layouts.has(item.Layout) && layouts.has(item.Layout+".html") {
			return item.Layout + ".html"
		}
		return item.Layout
	}
	if layouts.has(b.cfg.DefaultLayout) {
		return b.cfg.DefaultLayout
	}
	return ""
}

func (b *Builder) writePages(ctx context.Context, pages []pageOutput, report *Report) error {
	outputDir := b.cfg.Output
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("path", outputDir).Build()
	}

	previous := loadManifest(outputDir)
	next := newManifest(report.BuildID)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := page.item.OutputPath
		if _, dup := next.Pages[rel]; dup {
			return errors.ContentError("two documents write the same output path").
				WithContext("path", rel).WithContext("file", page.item.InputPath).Build()
		}
		fp := Fingerprint(page.data)
		next.Pages[rel] = fp

		if previous.unchanged(outputDir, rel, fp) {
			report.PagesUnchanged++
			b.recorder.IncPage(metrics.PageUnchanged)
			continue
		}

		dst := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create page directory").
				WithContext("path", dst).Build()
		}
		if err := os.WriteFile(dst, page.data, 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "write page").
				WithContext("path", dst).Build()
		}
		report.PagesWritten++
		b.recorder.IncPage(metrics.PageWritten)
		observability.DebugContext(ctx, "Wrote page", logfields.Path(rel), logfields.URL(page.item.URL))
	}

	for _, rel := range previous.stale(next) {
		dst := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			observability.WarnContext(ctx, "Failed to remove stale page", logfields.Path(rel), logfields.Error(err))
			continue
		}
		report.PagesRemoved++
		observability.DebugContext(ctx, "Removed stale page", logfields.Path(rel))
	}

	return next.save(outputDir)
}

func withFile(err error, file string) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("file", file)
	}
	return errors.WrapError(err, errors.CategoryRender, "render page").WithContext("file", file).Build()
}

func (r *Report) finish(status Status) {
	r.Status = status
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Summary renders the report as a single line for CLI output.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d written, %d unchanged, %d drafts skipped, %d files copied in %s",
		r.Status, r.PagesWritten, r.PagesUnchanged, r.DraftsSkipped, r.PassthroughFiles,
		r.Duration.Round(time.Millisecond))
}
