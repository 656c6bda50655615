package models

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// BuildObserver receives callbacks around stage execution and build lifecycle.
type BuildObserver interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *BuildReport)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(_ StageName)                                    {}
func (NoopObserver) OnStageComplete(_ StageName, _ time.Duration, _ StageResult) {}
func (NoopObserver) OnBuildComplete(_ *BuildReport)                              {}

// RecorderObserver adapts metrics.Recorder into a BuildObserver.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(_ StageName) {}
func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, _ StageResult) {
	if r.Recorder != nil {
		r.Recorder.ObserveStageDuration(string(stage), d)
	}
}

func (r RecorderObserver) OnBuildComplete(report *BuildReport) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	r.Recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	for _, is := range report.Issues {
		r.Recorder.IncIssue(string(is.Code), string(is.Stage), string(is.Severity))
	}
}

// LogObserver logs stage transitions at debug level.
type LogObserver struct{}

func (LogObserver) OnStageStart(stage StageName) {
	slog.Debug("Stage started", logfields.Stage(string(stage)))
}

func (LogObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	slog.Debug("Stage completed", logfields.Stage(string(stage)), logfields.Duration(d), logfields.Outcome(string(result)))
}

func (LogObserver) OnBuildComplete(report *BuildReport) {
	slog.Debug("Build completed", logfields.BuildID(report.BuildID), logfields.Outcome(string(report.Outcome)))
}

// MultiObserver fans callbacks out to several observers in order.
type MultiObserver []BuildObserver

func (m MultiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m MultiObserver) OnStageComplete(stage StageName, d time.Duration, result StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, result)
	}
}

func (m MultiObserver) OnBuildComplete(report *BuildReport) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}
