package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ai_chess/internal/bootstrap"
	"ai_chess/internal/delivery/dashboard"
	gameDelivery "ai_chess/internal/delivery/game"
	"ai_chess/internal/delivery/health"
	"ai_chess/internal/delivery/stream"
	ownMiddleware "ai_chess/internal/middleware"
	gameuc "ai_chess/internal/usecase/game"
)

const healthRefresh = 10 * time.Second

type mainDeliveryHandler struct {
	game   *gameDelivery.GameHandler
	stream *stream.Hub
}

func newServeCommand(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *cfgPath)
		},
	}
}

func runServe(parent context.Context, cfgPath string) error {
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

	dbs, stores, err := initDatabaseAdapters(ctx, log, cfg)
	if err != nil {
		log.Errorw("Failed to initialize storage", "error", err)
		return err
	}
	defer dbs.Close(context.Background())

	hub := stream.NewHub(log)
	gameUC := gameuc.NewGameUseCase(log, gameSettings(cfg), newLlmFactory(cfg, log), stores.states, stores.archive, hub)
	if err = gameUC.Restore(ctx); err != nil {
		log.Warnw("Could not restore the last game", "error", err)
	}

	if cfg.GrpcPort != "" {
		healthServer := health.NewHealthServer(log, gameUC)
		lis, err := net.Listen("tcp", ":"+cfg.GrpcPort)
		if err != nil {
			return err
		}
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				log.Errorw("gRPC health server stopped", "error", err)
			}
		}()
		go healthServer.Watch(ctx, healthRefresh)
		defer healthServer.Stop()
	}

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, log, gameUC, hub)
	handlers.Router(r, cfg.IsLocalCors)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = gameUC.Pause(shutdownCtx)
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Infof("Server is running on port %s", cfg.ServerPort)
	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("Failed to start server", "error", err)
		return err
	}
	return nil
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Get("/", dashboard.Index)
	r.Get("/api/ws", h.stream.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.game.GetConfig)

		r.Get("/game/state", h.game.GetState)
		r.Get("/game/board.svg", h.game.GetBoardSVG)
		r.Get("/game/pgn", h.game.GetPGN)
		r.Post("/game/start", h.game.Start)
		r.Post("/game/pause", h.game.Pause)
		r.Post("/game/resume", h.game.Resume)
		r.Post("/game/reset", h.game.Reset)

		r.Get("/games", h.game.ListGames)
		r.Get("/games/{id}", h.game.GetArchivedGame)
	})
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	gameUC *gameuc.GameUseCase,
	hub *stream.Hub,
) *mainDeliveryHandler {
	return &mainDeliveryHandler{
		game:   gameDelivery.NewGameHandler(cfg, log, gameUC),
		stream: hub,
	}
}
