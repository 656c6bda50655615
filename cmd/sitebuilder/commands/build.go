package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output     string `short:"o" help:"Output directory (overrides output.directory)"`
	Report     string `name:"report" help:"Write the JSON build report to this path"`
	SkipVerify bool   `name:"skip-verify" help:"Skip the reference check of the rendered page"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, err = RunBuild(ctx, cfg, BuildOptions{
		Root:       root.Root,
		Output:     b.Output,
		ReportPath: b.Report,
		SkipVerify: b.SkipVerify,
	})
	return err
}

// BuildOptions are the per-invocation inputs shared by build and watch.
type BuildOptions struct {
	Root       string
	Output     string
	ReportPath string
	SkipVerify bool
	Service    *build.Service
}

// RunBuild runs one build with a fresh Prometheus registry, then writes the
// optional report and metrics textfile. The report is returned even when the
// build fails.
func RunBuild(ctx context.Context, cfg *config.Config, opts BuildOptions) (*models.BuildReport, error) {
	reg := prom.NewRegistry()
	svc := opts.Service
	if svc == nil {
		svc = build.NewService()
	}
	svc = svc.WithRecorder(metrics.NewPrometheusRecorder(reg))

	report, buildErr := svc.Run(ctx, build.Request{
		Config:     cfg,
		Root:       opts.Root,
		OutputDir:  opts.Output,
		SkipVerify: opts.SkipVerify,
	})

	if report != nil {
		slog.Info("Build summary", slog.String("summary", report.Summary()))
		if opts.ReportPath != "" {
			if err := report.WriteJSON(opts.ReportPath); err != nil {
				slog.Error("Failed to write build report", logfields.Path(opts.ReportPath), logfields.Error(err))
				if buildErr == nil {
					buildErr = fmt.Errorf("write build report: %w", err)
				}
			}
		}
	}

	if cfg != nil && cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}

	if buildErr == nil {
		_, _ = fmt.Fprintf(os.Stdout, "Site written (%s)\n", report.Outcome)
	}
	return report, buildErr
}
