package stages

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
)

// StageOutcome normalized result of stage execution.
type StageOutcome struct {
	Stage     models.StageName
	Error     *models.StageError
	Result    models.StageResult
	IssueCode models.ReportIssueCode
	Severity  models.IssueSeverity
	Abort     bool
}

func resultFromStageErrorKind(k models.StageErrorKind) models.StageResult {
	switch k {
	case models.StageErrorWarning:
		return models.StageResultWarning
	case models.StageErrorCanceled:
		return models.StageResultCanceled
	case models.StageErrorFatal:
		return models.StageResultFatal
	default:
		return models.StageResultFatal
	}
}

func severityFromStageErrorKind(k models.StageErrorKind) models.IssueSeverity {
	if k == models.StageErrorWarning {
		return models.SeverityWarning
	}
	return models.SeverityError
}

// ClassifyStageResult converts a raw error from a stage into a StageOutcome.
// Plain errors are fatal unless they stem from context cancellation.
func ClassifyStageResult(stage models.StageName, err error) StageOutcome {
	if err == nil {
		return StageOutcome{Stage: stage, Result: models.StageResultSuccess}
	}

	var se *models.StageError
	if !errors.As(err, &se) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			se = models.NewCanceledStageError(stage, err)
		} else {
			se = models.NewFatalStageError(stage, err)
		}
	}

	if se.Kind == models.StageErrorCanceled {
		return StageOutcome{
			Stage:     stage,
			Error:     se,
			Result:    models.StageResultCanceled,
			IssueCode: models.IssueCanceled,
			Severity:  models.SeverityError,
			Abort:     true,
		}
	}

	return StageOutcome{
		Stage:     stage,
		Error:     se,
		Result:    resultFromStageErrorKind(se.Kind),
		IssueCode: classifyIssueCode(se),
		Severity:  severityFromStageErrorKind(se.Kind),
		Abort:     se.Kind == models.StageErrorFatal,
	}
}

func classifyIssueCode(se *models.StageError) models.ReportIssueCode {
	switch se.Stage {
	case models.StageFetchCSS:
		return models.IssueFetchFailure
	case models.StageLoadMetadata:
		return models.IssueMetadataInvalid
	case models.StageRenderHTML:
		return models.IssueTemplateFailure
	case models.StagePrepareOutput, models.StageWriteOutput:
		return models.IssueOutputFailure
	case models.StageProcessAssets:
		return models.IssueAssetConversion
	case models.StageVerifyRefs:
		return models.IssueBrokenReference
	case models.StageGenerateQR:
		return models.IssueGenericStageError
	default:
		return models.IssueGenericStageError
	}
}
