package stages

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

// StagePrepareOutput wipes and recreates the output tree and copies the
// license file when present.
func StagePrepareOutput(ctx context.Context, bs *models.BuildState) error {
	layout := bs.Generator.Layout()
	cfg := bs.Generator.Config()

	if err := workspace.Reset(layout.OutputDir, cfg.Output.CSSDir); err != nil {
		return models.NewFatalStageError(models.StagePrepareOutput, err)
	}

	copied, err := workspace.CopyLicense(layout.License, layout.OutputDir)
	if err != nil {
		return models.NewFatalStageError(models.StagePrepareOutput, err)
	}
	bs.Report.LicenseCopied = copied
	if copied {
		observability.DebugContext(ctx, "License copied", logfields.Source(layout.License))
	}

	observability.InfoContext(ctx, "Output directory prepared", logfields.Path(layout.OutputDir))
	return nil
}
