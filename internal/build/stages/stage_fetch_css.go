package stages

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/fetch"
)

// StageFetchCSS downloads the stylesheet archive and writes the stylesheet
// and its gzip sibling into the css directory.
func StageFetchCSS(ctx context.Context, bs *models.BuildState) error {
	layout := bs.Generator.Layout()
	css := bs.Generator.Config().CSS

	res, err := bs.Generator.Fetcher().Fetch(ctx, fetch.Options{
		ArchiveURL: css.ArchiveURL,
		Member:     css.Member,
		DestDir:    layout.CSSDir,
		FileName:   css.FileName,
		Gzip:       css.GzipEnabled(),
		ScratchDir: layout.ScratchDir,
	})
	if err != nil {
		if ctx.Err() != nil {
			return models.NewCanceledStageError(models.StageFetchCSS, err)
		}
		return models.NewFatalStageError(models.StageFetchCSS, err)
	}

	bs.Report.ArchiveBytes = res.ArchiveBytes
	bs.Report.CSSBytes = res.Bytes
	bs.Report.CSSGzipBytes = res.GzipBytes
	return nil
}
