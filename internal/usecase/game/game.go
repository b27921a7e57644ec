package game

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"go.uber.org/zap"

	domain "ai_chess/internal/domain/game"
	"ai_chess/internal/errors"
)

const (
	moveLimitMessage = "Game ended - move limit reached"
	storeTimeout     = 5 * time.Second
)

type StateStore interface {
	SaveState(ctx context.Context, state domain.GameState) error
	// LoadState returns nil when nothing was saved yet.
	LoadState(ctx context.Context) (*domain.GameState, error)
}

type ArchiveStore interface {
	ArchiveGame(ctx context.Context, game domain.ArchivedGame) error
	ListGames(ctx context.Context, limit int) ([]domain.ArchivedGame, error)
	GetGame(ctx context.Context, id string) (domain.ArchivedGame, error)
}

// Notifier receives every state change. Notify must not block.
type Notifier interface {
	Notify(state domain.GameState)
}

// LlmFactory binds a provider and model to a client and reports the model
// actually used.
type LlmFactory func(provider, model string) (LlmStore, string, error)

type Settings struct {
	White       domain.PlayerRequest
	Black       domain.PlayerRequest
	MaxAttempts int
	MoveTimeout time.Duration
	TurnDelay   time.Duration
	MaxPlies    int
	ClaimDraws  bool
}

type GameUseCase struct {
	mu sync.Mutex

	log      *zap.SugaredLogger
	settings Settings
	factory  LlmFactory
	states   StateStore
	archive  ArchiveStore
	notifier Notifier
	pick     func(n int) int
	now      func() time.Time

	board     *Board
	state     domain.GameState
	players   map[chess.Color]*Agent
	configErr error

	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewGameUseCase(log *zap.SugaredLogger, settings Settings, factory LlmFactory, states StateStore, archive ArchiveStore, notifier Notifier) *GameUseCase {
	g := &GameUseCase{
		log:      log,
		settings: settings,
		factory:  factory,
		states:   states,
		archive:  archive,
		notifier: notifier,
		pick:     rand.Intn,
		now:      time.Now,
		board:    NewBoard(settings.ClaimDraws),
		players:  make(map[chess.Color]*Agent, 2),
	}
	g.bindPlayers(settings.White, settings.Black)
	g.state = g.freshState()
	return g
}

func (g *GameUseCase) bindPlayers(white, black domain.PlayerRequest) {
	g.configErr = nil
	for _, side := range []struct {
		color chess.Color
		req   domain.PlayerRequest
	}{{chess.White, white}, {chess.Black, black}} {
		provider := strings.ToLower(side.req.Provider)
		info := domain.PlayerInfo{
			Name:     "Agent_" + side.color.Name(),
			Color:    side.color.Name(),
			Provider: provider,
			Model:    side.req.Model,
		}

		llm, model, err := g.factory(provider, side.req.Model)
		if err != nil {
			if g.configErr == nil {
				g.configErr = err
			}
			g.log.Warnw("player is not configured", "side", info.Color, "provider", provider, "error", err)
			delete(g.players, side.color)
			g.setPlayerInfo(side.color, info)
			continue
		}
		info.Model = model
		g.players[side.color] = NewAgent(info, llm, g.log, g.settings.MaxAttempts, g.settings.MoveTimeout, g.randomIndex)
		g.setPlayerInfo(side.color, info)
	}
	g.state.ConfigError = g.configErrorMessage()
}

func (g *GameUseCase) randomIndex(n int) int {
	return g.pick(n)
}

func (g *GameUseCase) setPlayerInfo(color chess.Color, info domain.PlayerInfo) {
	if color == chess.White {
		g.state.White = info
		return
	}
	g.state.Black = info
}

func (g *GameUseCase) configErrorMessage() string {
	if g.configErr == nil {
		return ""
	}
	if stderrors.Is(g.configErr, errors.ErrNoAPIKey) {
		provider := g.state.White.Provider
		if _, ok := g.players[chess.White]; ok {
			provider = g.state.Black.Provider
		}
		return fmt.Sprintf("%s API key not found. Please add it to your .env file.", strings.ToUpper(provider))
	}
	return g.configErr.Error()
}

func (g *GameUseCase) freshState() domain.GameState {
	return domain.GameState{
		Status:        domain.StatusNotStarted,
		StatusMessage: domain.MessageNotStarted,
		StartFEN:      g.board.StartFEN(),
		FEN:           g.board.FEN(),
		Turn:          g.board.Turn().Name(),
		Moves:         []domain.MoveRecord{},
		White:         g.state.White,
		Black:         g.state.Black,
		ConfigError:   g.state.ConfigError,
		UpdatedAt:     g.now(),
	}
}

func (g *GameUseCase) running() bool {
	return g.state.Status == domain.StatusInProgress || g.state.Status == domain.StatusPaused
}

// Start begins a new game. req may override the provider or model per side.
func (g *GameUseCase) Start(ctx context.Context, req *domain.StartRequest) (domain.GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running() {
		return g.snapshot(), errors.ErrGameInProgress
	}

	if req != nil && (req.White != nil || req.Black != nil) {
		white, black := g.settings.White, g.settings.Black
		if req.White != nil {
			white = mergeRequest(white, *req.White)
		}
		if req.Black != nil {
			black = mergeRequest(black, *req.Black)
		}
		g.bindPlayers(white, black)
	}
	if g.configErr != nil {
		g.notifyLocked(ctx)
		return g.snapshot(), g.configErr
	}

	g.board = NewBoard(g.settings.ClaimDraws)
	started := g.now()
	g.state = g.freshState()
	g.state.ID = uuid.NewString()
	g.state.Status = domain.StatusInProgress
	g.state.StatusMessage = domain.MessageInProgress
	g.state.StartedAt = &started

	g.log.Infow("game started", "game", g.state.ID,
		"white", g.state.White.Provider+"/"+g.state.White.Model,
		"black", g.state.Black.Provider+"/"+g.state.Black.Model)

	g.launch()
	g.notifyLocked(ctx)
	return g.snapshot(), nil
}

func mergeRequest(base, override domain.PlayerRequest) domain.PlayerRequest {
	if override.Provider != "" && !strings.EqualFold(override.Provider, base.Provider) {
		base.Provider = override.Provider
		base.Model = ""
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	return base
}

func (g *GameUseCase) Pause(ctx context.Context) (domain.GameState, error) {
	g.mu.Lock()
	switch g.state.Status {
	case domain.StatusPaused:
		g.mu.Unlock()
		return g.State(), nil
	case domain.StatusFinished:
		g.mu.Unlock()
		return g.State(), errors.ErrGameOver
	case domain.StatusNotStarted:
		g.mu.Unlock()
		return g.State(), errors.ErrGameNotStarted
	}

	done := g.stopLocked()
	g.state.Status = domain.StatusPaused
	g.state.StatusMessage = domain.MessagePaused
	g.log.Infow("game paused", "game", g.state.ID, "moves", len(g.state.Moves))
	g.notifyLocked(ctx)
	state := g.snapshot()
	g.mu.Unlock()

	wait(ctx, done)
	return state, nil
}

func (g *GameUseCase) Resume(ctx context.Context) (domain.GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Status != domain.StatusPaused {
		return g.snapshot(), errors.ErrGameNotPaused
	}
	if g.configErr != nil {
		return g.snapshot(), g.configErr
	}

	g.state.Status = domain.StatusInProgress
	g.state.StatusMessage = domain.MessageInProgress
	g.log.Infow("game resumed", "game", g.state.ID, "moves", len(g.state.Moves))

	g.launch()
	g.notifyLocked(ctx)
	return g.snapshot(), nil
}

// Reset stops any running game and returns to the initial position.
func (g *GameUseCase) Reset(ctx context.Context) (domain.GameState, error) {
	g.mu.Lock()
	done := g.stopLocked()
	g.board = NewBoard(g.settings.ClaimDraws)
	g.state = g.freshState()
	g.log.Infow("game reset")
	g.notifyLocked(ctx)
	state := g.snapshot()
	g.mu.Unlock()

	wait(ctx, done)
	return state, nil
}

func (g *GameUseCase) State() domain.GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *GameUseCase) Config() domain.ConfigResponse {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.ConfigResponse{
		White:       g.state.White,
		Black:       g.state.Black,
		ConfigError: g.state.ConfigError,
		MaxAttempts: g.settings.MaxAttempts,
		MoveTimeout: g.settings.MoveTimeout.String(),
	}
}

// Ready reports whether both sides have a working provider binding.
func (g *GameUseCase) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.configErr == nil
}

func (g *GameUseCase) BoardSVG(w io.Writer) error {
	g.mu.Lock()
	board := g.board.Clone()
	g.mu.Unlock()
	return board.SVG(w)
}

func (g *GameUseCase) PGN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pgnLocked()
}

func (g *GameUseCase) pgnLocked() string {
	tags := map[string]string{
		"Event": "AI Chess Game",
		"Site":  "ai_chess",
		"White": playerTag(g.state.White),
		"Black": playerTag(g.state.Black),
	}
	if g.state.StartedAt != nil {
		tags["Date"] = g.state.StartedAt.Format("2006.01.02")
	}
	return g.board.Clone().PGN(tags)
}

func playerTag(p domain.PlayerInfo) string {
	if p.Model == "" {
		return p.Name
	}
	return fmt.Sprintf("%s (%s/%s)", p.Name, p.Provider, p.Model)
}

func (g *GameUseCase) Archive(ctx context.Context, limit int) ([]domain.ArchivedGame, error) {
	games, err := g.archive.ListGames(ctx, limit)
	if err != nil {
		g.log.Errorw("list archived games", "error", err)
		return nil, err
	}
	return games, nil
}

func (g *GameUseCase) ArchivedGame(ctx context.Context, id string) (domain.ArchivedGame, error) {
	return g.archive.GetGame(ctx, id)
}

// Restore reloads the last saved snapshot. A game that was running comes
// back paused.
func (g *GameUseCase) Restore(ctx context.Context) error {
	saved, err := g.states.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if saved == nil {
		return nil
	}

	ucis := make([]string, 0, len(saved.Moves))
	for _, m := range saved.Moves {
		ucis = append(ucis, m.UCI)
	}
	board, err := NewBoardFromMoves(saved.StartFEN, ucis, g.settings.ClaimDraws)
	if err != nil {
		return fmt.Errorf("replay saved game %s: %w", saved.ID, err)
	}
	// Adjudication is not a move, so the replayed log cannot reproduce it.
	if saved.Status == domain.StatusFinished && saved.Method == chess.DrawOffer.String() {
		board.Adjudicate()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopLocked()
	g.board = board
	white, black := g.state.White, g.state.Black
	configErr := g.state.ConfigError
	g.state = *saved
	g.state.White, g.state.Black, g.state.ConfigError = white, black, configErr
	if g.state.Moves == nil {
		g.state.Moves = []domain.MoveRecord{}
	}
	if g.state.Status == domain.StatusInProgress {
		g.state.Status = domain.StatusPaused
		g.state.StatusMessage = domain.MessagePaused
	}
	g.log.Infow("game restored", "game", g.state.ID, "status", g.state.Status, "moves", len(g.state.Moves))
	g.notifyLocked(ctx)
	return nil
}

// Wait blocks until the current runner stops or ctx is done.
func (g *GameUseCase) Wait(ctx context.Context) {
	g.mu.Lock()
	done := g.done
	g.mu.Unlock()
	wait(ctx, done)
}

func (g *GameUseCase) launch() {
	g.gen++
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	g.cancel, g.done = cancel, done
	go g.run(ctx, g.gen, done)
}

// stopLocked invalidates the running generation so late replies are dropped.
func (g *GameUseCase) stopLocked() chan struct{} {
	g.gen++
	g.cancelLocked()
	return g.done
}

func (g *GameUseCase) run(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	for {
		g.mu.Lock()
		if gen != g.gen || g.board.IsOver() {
			g.mu.Unlock()
			return
		}
		agent := g.players[g.board.Turn()]
		board := g.board.Clone()
		g.mu.Unlock()

		if agent == nil {
			g.fail(ctx, gen, errors.ErrNoAPIKey)
			return
		}

		started := g.now()
		decision, err := agent.ChooseMove(ctx, board)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			g.fail(ctx, gen, fmt.Errorf("%s: %w", agent.Info().Name, err))
			return
		}

		finished, ok := g.play(ctx, gen, decision, g.now().Sub(started))
		if !ok || finished {
			return
		}

		if !sleep(ctx, g.settings.TurnDelay) {
			return
		}
	}
}

// play applies a decision if gen is still current.
func (g *GameUseCase) play(ctx context.Context, gen uint64, decision domain.Decision, took time.Duration) (finished bool, ok bool) {
	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return false, false
	}

	record, err := g.board.Apply(decision.UCI)
	if err != nil {
		g.mu.Unlock()
		g.fail(ctx, gen, err)
		return false, false
	}
	record.Ply = len(g.state.Moves) + 1
	record.Source = decision.Source
	record.Attempts = decision.Attempts
	record.Duration = took
	record.CreatedAt = g.now()

	g.log.Infow("move played", "game", g.state.ID, "move", record.Description,
		"source", record.Source, "attempts", record.Attempts, "duration", took.String())

	g.state.Moves = append(g.state.Moves, record)
	g.state.CurrentMove = &record
	g.state.FEN = g.board.FEN()
	g.state.Turn = g.board.Turn().Name()
	if record.Status != "" {
		g.state.StatusMessage = record.Status
	}

	finished = g.board.IsOver()
	if !finished && g.settings.MaxPlies > 0 && len(g.state.Moves) >= g.settings.MaxPlies {
		g.board.Adjudicate()
		finished = true
	}
	if finished {
		g.finishLocked()
	}
	g.notifyLocked(ctx)

	var archived domain.ArchivedGame
	if finished {
		archived = g.archivedLocked()
	}
	g.mu.Unlock()

	if finished {
		g.store(ctx, archived)
	}
	return finished, true
}

func (g *GameUseCase) finishLocked() {
	finishedAt := g.now()
	g.state.Status = domain.StatusFinished
	g.state.IsGameOver = true
	g.state.Outcome = g.board.Outcome()
	g.state.Method = g.board.Method()
	g.state.Winner = g.board.Winner()
	g.state.FinishedAt = &finishedAt
	if g.state.Method == chess.DrawOffer.String() {
		g.state.StatusMessage = moveLimitMessage
	} else {
		g.state.StatusMessage = g.board.StatusMessage()
	}
	g.cancelLocked()
	g.log.Infow("game finished", "game", g.state.ID, "result", g.state.StatusMessage, "moves", len(g.state.Moves))
}

func (g *GameUseCase) archivedLocked() domain.ArchivedGame {
	return domain.ArchivedGame{
		ID:            g.state.ID,
		White:         g.state.White,
		Black:         g.state.Black,
		Outcome:       g.state.Outcome,
		Method:        g.state.Method,
		StatusMessage: g.state.StatusMessage,
		PGN:           g.pgnLocked(),
		Moves:         slices.Clone(g.state.Moves),
		StartedAt:     derefTime(g.state.StartedAt),
		FinishedAt:    derefTime(g.state.FinishedAt),
	}
}

func (g *GameUseCase) store(ctx context.Context, game domain.ArchivedGame) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := g.archive.ArchiveGame(ctx, game); err != nil {
		g.log.Errorw("archive game", "game", game.ID, "error", err)
	}
}

func (g *GameUseCase) fail(ctx context.Context, gen uint64, cause error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return
	}
	g.log.Errorw("game stopped with error", "game", g.state.ID, "error", cause)
	g.gen++
	g.cancelLocked()
	g.state.Status = domain.StatusNotStarted
	g.state.StatusMessage = "Game error: " + cause.Error()
	g.notifyLocked(ctx)
}

// cancelLocked releases the runner context. Snapshot and archive writes
// detach from it, so it is safe to call before they run.
func (g *GameUseCase) cancelLocked() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// notifyLocked persists the current snapshot and hands it to the notifier.
// Both happen under the lock so subscribers see states in order.
func (g *GameUseCase) notifyLocked(ctx context.Context) {
	g.state.UpdatedAt = g.now()
	state := g.snapshot()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := g.states.SaveState(saveCtx, state); err != nil {
		g.log.Errorw("save game state", "game", state.ID, "error", err)
	}
	if g.notifier != nil {
		g.notifier.Notify(state)
	}
}

func (g *GameUseCase) snapshot() domain.GameState {
	state := g.state
	state.Moves = slices.Clone(g.state.Moves)
	if state.Moves == nil {
		state.Moves = []domain.MoveRecord{}
	}
	if g.state.CurrentMove != nil {
		current := *g.state.CurrentMove
		state.CurrentMove = &current
	}
	return state
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func wait(ctx context.Context, done chan struct{}) {
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
