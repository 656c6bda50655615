package models

import (
	"path"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/fetch"
	"git.home.luguber.info/inful/sitebuilder/internal/metadata"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/qr"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// Generator defines what stages need from the site builder.
type Generator interface {
	Config() *config.Config
	Layout() Layout
	Recorder() metrics.Recorder
	Observer() BuildObserver
	Fetcher() *fetch.Fetcher
	Transcoder() *assets.Transcoder
	QR() *qr.Generator
	Renderer() *render.Renderer
}

// Layout holds the resolved input and output paths of one build.
type Layout struct {
	Root string // directory inputs are resolved against

	License      string
	AssetsSrc    string
	MetadataFile string
	TemplateFile string

	OutputDir  string
	CSSDir     string
	AssetsDir  string
	IndexFile  string
	QRFile     string
	QRRelative string // slash separated path injected into the metadata
	ScratchDir string // parent for temporary extraction directories, os.TempDir when empty
}

// NewLayout resolves cfg against root. A non-empty outputOverride replaces
// output.directory.
func NewLayout(cfg *config.Config, root, outputOverride string) Layout {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}

	out := cfg.Output.Directory
	if outputOverride != "" {
		out = outputOverride
	}
	outDir := resolve(out)
	assetsDir := filepath.Join(outDir, cfg.Output.AssetsDir)
	scratch := ""
	if cfg.CSS.ScratchDir != "" {
		scratch = resolve(cfg.CSS.ScratchDir)
	}

	return Layout{
		Root:         root,
		License:      resolve(cfg.Inputs.License),
		AssetsSrc:    resolve(cfg.Inputs.Assets),
		MetadataFile: resolve(cfg.Inputs.Metadata),
		TemplateFile: resolve(cfg.Inputs.Template),
		OutputDir:    outDir,
		CSSDir:       filepath.Join(outDir, cfg.Output.CSSDir),
		AssetsDir:    assetsDir,
		IndexFile:    filepath.Join(outDir, cfg.Output.IndexFile),
		QRFile:       filepath.Join(assetsDir, cfg.QR.FileName),
		QRRelative:   path.Join(filepath.ToSlash(cfg.Output.AssetsDir), cfg.QR.FileName),
		ScratchDir:   scratch,
	}
}

// SiteState carries the data flowing from metadata loading to the writer.
type SiteState struct {
	Details metadata.Details
	HTML    string
	QRPath  string
}

// AssetState records the transcoder result.
type AssetState struct {
	Result *assets.Result
}

// BuildState carries mutable state and metrics across stages.
type BuildState struct {
	Generator Generator
	Report    *BuildReport
	StartTime time.Time

	Assets AssetState
	Site   SiteState
}

// NewBuildState constructs a BuildState.
func NewBuildState(g Generator, report *BuildReport) *BuildState {
	return &BuildState{
		Generator: g,
		Report:    report,
		StartTime: time.Now(),
	}
}
