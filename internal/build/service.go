// Package build provides the canonical site build pipeline. The CLI build and
// watch commands both route through Service.Run.
package build

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/build/stages"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/fetch"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/qr"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
)

// Request contains the inputs of one build.
type Request struct {
	Config *config.Config
	// Root is the directory relative input paths are resolved against.
	Root string
	// OutputDir overrides output.directory when non-empty.
	OutputDir string
	// SkipVerify drops the verify_refs stage.
	SkipVerify bool
}

// Service runs site builds.
type Service struct {
	recorder   metrics.Recorder
	observer   models.BuildObserver
	httpClient *http.Client
}

// NewService creates a Service that records nothing.
func NewService() *Service {
	return &Service{
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithObserver adds an observer called alongside the metrics observer.
func (s *Service) WithObserver(o models.BuildObserver) *Service {
	s.observer = o
	return s
}

// WithHTTPClient overrides the client used for the archive download.
func (s *Service) WithHTTPClient(c *http.Client) *Service {
	s.httpClient = c
	return s
}

// Run executes the complete pipeline and returns the report. The report is
// returned even when the build fails.
func (s *Service) Run(ctx context.Context, req Request) (*models.BuildReport, error) {
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)
	report := models.NewBuildReport(buildID)

	if req.Config == nil {
		err := ferrors.ConfigError("config required").Build()
		report.AddIssue(models.IssueGenericStageError, "", models.SeverityError, err.Error(), err)
		report.Finish()
		report.DeriveOutcome()
		return report, err
	}

	gen := s.generator(req)
	bs := models.NewBuildState(gen, report)

	observability.InfoContext(ctx, "Starting build", logfields.Path(gen.layout.OutputDir))

	defs := models.NewPipeline().
		Add(models.StagePrepareOutput, stages.StagePrepareOutput).
		Add(models.StageFetchCSS, stages.StageFetchCSS).
		Add(models.StageProcessAssets, stages.StageProcessAssets).
		Add(models.StageLoadMetadata, stages.StageLoadMetadata).
		Add(models.StageGenerateQR, stages.StageGenerateQR).
		Add(models.StageRenderHTML, stages.StageRenderHTML).
		Add(models.StageWriteOutput, stages.StageWriteOutput).
		AddIf(!req.SkipVerify, models.StageVerifyRefs, stages.StageVerifyRefs).
		Build()

	err := stages.RunStages(ctx, bs, defs)

	report.Finish()
	report.DeriveOutcome()
	gen.observer.OnBuildComplete(report)

	if err != nil {
		observability.ErrorContext(ctx, "Build failed", logfields.Outcome(string(report.Outcome)), logfields.Error(err))
		return report, err
	}
	observability.InfoContext(ctx, "Build finished",
		logfields.Outcome(string(report.Outcome)),
		logfields.Duration(report.End.Sub(report.Start)),
		logfields.Count(len(report.Warnings)))
	return report, nil
}

func (s *Service) generator(req Request) *generator {
	cfg := req.Config
	observers := models.MultiObserver{models.RecorderObserver{Recorder: s.recorder}, models.LogObserver{}}
	if s.observer != nil {
		observers = append(observers, s.observer)
	}

	client := s.httpClient
	if client == nil {
		client = fetch.NewHTTPClient(cfg.CSS.Timeout)
	}

	return &generator{
		cfg:        cfg,
		layout:     models.NewLayout(cfg, req.Root, req.OutputDir),
		recorder:   s.recorder,
		observer:   observers,
		fetcher:    fetch.NewFetcher(client, cfg.CSS.MaxBytes, s.recorder),
		transcoder: assets.NewTranscoder(cfg.Images.Extensions, s.recorder),
		qr:         qr.NewGenerator(cfg.QR.Border, cfg.QR.ModuleSize),
		renderer:   render.NewRenderer(),
	}
}

// generator implements models.Generator for one build.
type generator struct {
	cfg        *config.Config
	layout     models.Layout
	recorder   metrics.Recorder
	observer   models.BuildObserver
	fetcher    *fetch.Fetcher
	transcoder *assets.Transcoder
	qr         *qr.Generator
	renderer   *render.Renderer
}

func (g *generator) Config() *config.Config         { return g.cfg }
func (g *generator) Layout() models.Layout          { return g.layout }
func (g *generator) Recorder() metrics.Recorder     { return g.recorder }
func (g *generator) Observer() models.BuildObserver { return g.observer }
func (g *generator) Fetcher() *fetch.Fetcher        { return g.fetcher }
func (g *generator) Transcoder() *assets.Transcoder { return g.transcoder }
func (g *generator) QR() *qr.Generator              { return g.qr }
func (g *generator) Renderer() *render.Renderer     { return g.renderer }
