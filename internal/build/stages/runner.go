package stages

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// RunStages executes stages in order, recording timing and stopping on first
// fatal error. A stage that returns nil but recorded warning issues counts as
// a warning result.
func RunStages(ctx context.Context, bs *models.BuildState, stages []models.StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := models.NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.StageErrorKinds[st.Name] = se.Kind
			bs.Report.AddIssue(models.IssueCanceled, st.Name, models.SeverityError, se.Error(), se)
			bs.Report.RecordStageResult(st.Name, models.StageResultCanceled, recorder(bs))
			observer(bs).OnStageComplete(st.Name, 0, models.StageResultCanceled)
			return se
		default:
		}

		stageCtx := observability.WithStage(ctx, string(st.Name))
		observer(bs).OnStageStart(st.Name)

		warningsBefore := bs.Report.WarningsFor(st.Name)
		t0 := time.Now()
		err := st.Fn(stageCtx, bs)
		dur := time.Since(t0)

		bs.Report.StageDurations[string(st.Name)] = dur

		out := ClassifyStageResult(st.Name, err)
		if out.Error != nil {
			bs.Report.StageErrorKinds[st.Name] = out.Error.Kind
			bs.Report.AddIssue(out.IssueCode, out.Stage, out.Severity, out.Error.Error(), out.Error)
		} else if bs.Report.WarningsFor(st.Name) > warningsBefore {
			out.Result = models.StageResultWarning
			bs.Report.StageErrorKinds[st.Name] = models.StageErrorWarning
		}

		bs.Report.RecordStageResult(st.Name, out.Result, recorder(bs))
		observer(bs).OnStageComplete(st.Name, dur, out.Result)

		if out.Abort {
			if out.Error != nil {
				return out.Error
			}
			return fmt.Errorf("stage %s aborted", st.Name)
		}
	}
	return nil
}

func recorder(bs *models.BuildState) metrics.Recorder {
	if bs.Generator == nil || bs.Generator.Recorder() == nil {
		return metrics.NoopRecorder{}
	}
	return bs.Generator.Recorder()
}

func observer(bs *models.BuildState) models.BuildObserver {
	if bs.Generator == nil || bs.Generator.Observer() == nil {
		return models.NoopObserver{}
	}
	return bs.Generator.Observer()
}
