package stages

import (
	"context"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metadata"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// StageLoadMetadata parses the site details file. Any failure is fatal.
func StageLoadMetadata(ctx context.Context, bs *models.BuildState) error {
	path := bs.Generator.Layout().MetadataFile

	details, err := metadata.Load(path)
	if err != nil {
		return models.NewFatalStageError(models.StageLoadMetadata, err)
	}
	bs.Site.Details = details

	observability.DebugContext(ctx, "Metadata loaded", logfields.Path(path), logfields.Count(len(details)))
	return nil
}
