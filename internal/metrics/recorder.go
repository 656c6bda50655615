package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
	ResultSkipped  ResultLabel = "skipped"
)

// BuildOutcomeLabel is the final build status label.
type BuildOutcomeLabel string

// AssetResult labels the per-file outcome of the asset transcoder.
type AssetResult string

const (
	AssetCopied    AssetResult = "copied"
	AssetConverted AssetResult = "converted"
	AssetFailed    AssetResult = "failed"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	IncAsset(result AssetResult)
	AddFetchedBytes(n int64)
	IncIssue(code, stage, severity string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) IncAsset(AssetResult)                       {}
func (NoopRecorder) AddFetchedBytes(int64)                      {}
func (NoopRecorder) IncIssue(string, string, string)            {}
