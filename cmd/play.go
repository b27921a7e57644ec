package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"ai_chess/internal/bootstrap"
	"ai_chess/internal/delivery/console"
	domain "ai_chess/internal/domain/game"
	gameuc "ai_chess/internal/usecase/game"
)

type playOptions struct {
	white    string
	black    string
	maxPlies int
}

func newPlayCommand(cfgPath *string) *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one game in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *cfgPath, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.white, "white", "w", "", "provider for White (overrides WHITE_PROVIDER)")
	cmd.Flags().StringVarP(&opts.black, "black", "b", "", "provider for Black (overrides BLACK_PROVIDER)")
	cmd.Flags().IntVar(&opts.maxPlies, "max-plies", -1, "adjudicate a draw after this many plies (0 disables)")

	return cmd
}

func runPlay(parent context.Context, cfgPath string, opts *playOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, log, err := setup(cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go handleShutdown(cancel, log)

	dbs, stores, err := initDatabaseAdapters(ctx, log, playConfig(cfg))
	if err != nil {
		return err
	}
	defer dbs.Close(context.Background())

	settings := gameSettings(cfg)
	if opts.maxPlies >= 0 {
		settings.MaxPlies = opts.maxPlies
	}

	printer := console.NewPrinter(os.Stdout, isTerminal(os.Stdout))
	gameUC := gameuc.NewGameUseCase(log, settings, newLlmFactory(cfg, log), stores.states, stores.archive, printer)

	req := &domain.StartRequest{}
	if opts.white != "" {
		req.White = &domain.PlayerRequest{Provider: opts.white}
	}
	if opts.black != "" {
		req.Black = &domain.PlayerRequest{Provider: opts.black}
	}

	if _, err = gameUC.Start(ctx, req); err != nil {
		return err
	}
	gameUC.Wait(ctx)

	if ctx.Err() != nil {
		_, _ = gameUC.Pause(context.Background())
	}
	printer.Summary(gameUC.State())
	return nil
}

// playConfig keeps terminal games out of the redis snapshot the dashboard
// restores from. Finished games are still archived.
func playConfig(cfg *bootstrap.Config) *bootstrap.Config {
	c := *cfg
	c.RedisUrl = ""
	return &c
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
