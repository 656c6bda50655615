package stages

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// StageGenerateQR renders qr_code.url into the assets directory and records
// its relative path under images in the metadata. Without a URL it only
// records a warning.
func StageGenerateQR(ctx context.Context, bs *models.BuildState) error {
	layout := bs.Generator.Layout()

	url, ok := bs.Site.Details.QRURL()
	if !ok {
		observability.WarnContext(ctx, "No qr_code.url in metadata, skipping QR code")
		bs.Report.AddWarning(models.IssueQRURLMissing, models.StageGenerateQR,
			ferrors.NotFoundError("qr_code.url not set").
				Warning().
				WithContext("path", layout.MetadataFile).
				Build())
		return nil
	}

	if err := bs.Generator.QR().Generate(url, layout.QRFile); err != nil {
		return models.NewFatalStageError(models.StageGenerateQR, err)
	}

	bs.Site.Details.SetImage(bs.Generator.Config().QR.ImageKey, layout.QRRelative)
	bs.Site.QRPath = layout.QRRelative
	bs.Report.QRGenerated = true

	observability.InfoContext(ctx, "QR code generated", logfields.Path(layout.QRRelative), logfields.URL(url))
	return nil
}
