package stages

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// StageWriteOutput persists the rendered page.
func StageWriteOutput(ctx context.Context, bs *models.BuildState) error {
	path := bs.Generator.Layout().IndexFile
	if err := render.WriteOutput(path, bs.Site.HTML); err != nil {
		return models.NewFatalStageError(models.StageWriteOutput, err)
	}
	bs.Report.OutputBytes = len(bs.Site.HTML)

	observability.InfoContext(ctx, "Page written", logfields.Path(path), logfields.Size(int64(len(bs.Site.HTML))))
	return nil
}
