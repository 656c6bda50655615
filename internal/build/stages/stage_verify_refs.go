package stages

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// StageVerifyRefs checks that local src/href references of the written page
// exist in the output tree. Broken references are warnings; so is a page
// that cannot be parsed.
func StageVerifyRefs(ctx context.Context, bs *models.BuildState) error {
	layout := bs.Generator.Layout()

	res, err := linkverify.VerifyPage(layout.OutputDir, layout.IndexFile)
	if err != nil {
		return models.NewWarnStageError(models.StageVerifyRefs, err)
	}

	bs.Report.ReferencesChecked = res.Checked
	bs.Report.ReferencesBroken = len(res.Broken)
	for _, b := range res.Broken {
		observability.WarnContext(ctx, "Broken local reference",
			logfields.URL(b.Link.URL),
			logfields.Reason(b.Reason))
		bs.Report.AddWarning(models.IssueBrokenReference, models.StageVerifyRefs,
			ferrors.NotFoundError("broken local reference "+b.Link.URL).
				Warning().
				WithContext("url", b.Link.URL).
				WithContext("tag", b.Link.Tag).
				WithContext("reason", b.Reason).
				Build())
	}

	observability.DebugContext(ctx, "References verified", logfields.Count(res.Checked))
	return nil
}
