package game

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ai_chess/internal/bootstrap"
	"ai_chess/internal/domain/game"
	"ai_chess/internal/errors"
	"ai_chess/internal/httpresponse"
	gameuc "ai_chess/internal/usecase/game"
	"ai_chess/internal/utils"
)

type GameHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	return &GameHandler{
		cfg:    cfg,
		log:    log,
		gameUC: gameUC,
	}
}

func (g *GameHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, g.gameUC.Config())
}

func (g *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, g.gameUC.State())
}

func (g *GameHandler) GetBoardSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := g.gameUC.BoardSVG(&buf); err != nil {
		g.log.Errorw("render board", "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (g *GameHandler) GetPGN(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-chess-pgn")
	w.Header().Set("Content-Disposition", `attachment; filename="game.pgn"`)
	_, _ = w.Write([]byte(g.gameUC.PGN()))
}

func (g *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req game.StartRequest
	ok, err := utils.DecodeOptionalJSONRequest(r, &req)
	if err != nil {
		g.log.Warnw("start game: bad request", "error", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	var startReq *game.StartRequest
	if ok {
		startReq = &req
	}

	state, err := g.gameUC.Start(r.Context(), startReq)
	if err != nil {
		g.writeError(w, "start game", err, state)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) Pause(w http.ResponseWriter, r *http.Request) {
	state, err := g.gameUC.Pause(r.Context())
	if err != nil {
		g.writeError(w, "pause game", err, state)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) Resume(w http.ResponseWriter, r *http.Request) {
	state, err := g.gameUC.Resume(r.Context())
	if err != nil {
		g.writeError(w, "resume game", err, state)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := g.gameUC.Reset(r.Context())
	if err != nil {
		g.writeError(w, "reset game", err, state)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	limit := g.cfg.ArchiveLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, g.cfg.ArchiveLimit)
	}

	games, err := g.gameUC.Archive(r.Context(), limit)
	if err != nil {
		g.writeError(w, "list games", err, nil)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, games)
}

func (g *GameHandler) GetArchivedGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	archived, err := g.gameUC.ArchivedGame(r.Context(), id)
	if err != nil {
		g.writeError(w, "get archived game", err, nil)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, archived)
}

// writeError maps use case errors to statuses. State conflicts carry the
// current state so the dashboard can re-render.
func (g *GameHandler) writeError(w http.ResponseWriter, op string, err error, state any) {
	status := http.StatusInternalServerError
	switch {
	case stderrors.Is(err, errors.ErrNoAPIKey):
		status = http.StatusPreconditionFailed
	case stderrors.Is(err, errors.ErrUnknownProvider):
		status = http.StatusBadRequest
	case stderrors.Is(err, errors.ErrGameInProgress),
		stderrors.Is(err, errors.ErrGameNotStarted),
		stderrors.Is(err, errors.ErrGameNotPaused),
		stderrors.Is(err, errors.ErrGameOver):
		status = http.StatusConflict
	case stderrors.Is(err, errors.ErrGameNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		g.log.Errorw(op, "error", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}

	g.log.Infow(op+" rejected", "error", err, "status", status)
	description := err.Error()
	if s, ok := state.(game.GameState); ok && s.ConfigError != "" && status == http.StatusPreconditionFailed {
		description = s.ConfigError
	}
	httpresponse.WriteErrorResponse(w, status, description)
}
