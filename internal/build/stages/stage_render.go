package stages

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// StageRenderHTML binds the metadata into the page template and minifies it.
func StageRenderHTML(ctx context.Context, bs *models.BuildState) error {
	layout := bs.Generator.Layout()
	r := bs.Generator.Renderer()

	doc, err := r.RenderFile(layout.TemplateFile, map[string]any(bs.Site.Details))
	if err != nil {
		return models.NewFatalStageError(models.StageRenderHTML, err)
	}

	minified, err := r.Minify(doc)
	if err != nil {
		return models.NewFatalStageError(models.StageRenderHTML, err)
	}
	bs.Site.HTML = minified

	observability.DebugContext(ctx, "Template rendered",
		logfields.File(layout.TemplateFile),
		logfields.Size(int64(len(minified))))
	return nil
}
