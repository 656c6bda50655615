package stages

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// StageProcessAssets mirrors the asset tree into the output tree, converting
// raster images to WebP. A missing tree and per-file failures are warnings.
func StageProcessAssets(ctx context.Context, bs *models.BuildState) error {
	layout := bs.Generator.Layout()

	res, err := bs.Generator.Transcoder().Process(ctx, layout.AssetsSrc, layout.AssetsDir)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return models.NewCanceledStageError(models.StageProcessAssets, err)
		}
		return models.NewFatalStageError(models.StageProcessAssets, err)
	}
	bs.Assets.Result = res

	if res.Missing {
		observability.WarnContext(ctx, "Asset directory not found, skipping", logfields.Path(layout.AssetsSrc))
		bs.Report.AddWarning(models.IssueAssetsMissing, models.StageProcessAssets,
			ferrors.NotFoundError("asset directory not found").
				Warning().
				WithContext("path", layout.AssetsSrc).
				Build())
		return nil
	}

	bs.Report.AssetsFound = res.Found()
	bs.Report.AssetsCopied = len(res.Copied)
	bs.Report.AssetsConverted = len(res.Converted)
	bs.Report.AssetsFailed = len(res.Failed)

	for _, w := range res.Warnings {
		code := models.IssueAssetConversion
		if ce, ok := ferrors.AsClassified(w); ok {
			if _, collision := ce.Context().Get("previous"); collision {
				code = models.IssueAssetCollision
			}
		}
		bs.Report.AddWarning(code, models.StageProcessAssets, w)
	}
	return nil
}
