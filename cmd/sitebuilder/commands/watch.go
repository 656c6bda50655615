package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/sitebuilder/internal/build/models"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output     string `short:"o" help:"Output directory (overrides output.directory)"`
	SkipVerify bool   `name:"skip-verify" help:"Skip the reference check of the rendered page"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return RunWatch(ctx, cfg, BuildOptions{
		Root:       root.Root,
		Output:     w.Output,
		SkipVerify: w.SkipVerify,
	})
}

// RunWatch performs an initial build and then rebuilds on every settled
// change until ctx is canceled. Failed builds are logged, not returned.
func RunWatch(ctx context.Context, cfg *config.Config, opts BuildOptions) error {
	rebuild := func(ctx context.Context) error {
		_, err := RunBuild(ctx, cfg, opts)
		return err
	}

	if err := rebuild(ctx); err != nil {
		slog.Error("Initial build failed, waiting for changes", logfields.Error(err))
	}

	layout := models.NewLayout(cfg, opts.Root, opts.Output)
	w, err := watch.New(
		[]string{layout.MetadataFile, layout.TemplateFile, layout.License},
		[]string{layout.AssetsSrc},
		rebuild,
	)
	if err != nil {
		return err
	}

	err = w.Run(ctx)
	slog.Info("Watch stopped")
	return err
}
