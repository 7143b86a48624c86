package metrics

import "time"

// PageResult enumerates what happened to a generated page.
type PageResult string

const (
	PageWritten   PageResult = "written"
	PageUnchanged PageResult = "unchanged"
	PageSkipped   PageResult = "skipped"
)

// BuildOutcome is the final status of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds. Implementations must be
// safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncPage(result PageResult)
	IncFilterFallback(filter string)
	AddPassthroughFiles(n int)
	IncBuildOutcome(outcome BuildOutcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncPage(PageResult)                         {}
func (NoopRecorder) IncFilterFallback(string)                   {}
func (NoopRecorder) AddPassthroughFiles(int)                    {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
