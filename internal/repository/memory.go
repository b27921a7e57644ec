package repo

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"

	domain "ai_chess/internal/domain/game"
	"ai_chess/internal/errors"
)

// MemoryStateStorage is used when REDIS_URL is not set.
type MemoryStateStorage struct {
	mu    sync.RWMutex
	state *domain.GameState
}

func NewMemoryStateStorage() *MemoryStateStorage {
	return &MemoryStateStorage{}
}

func (m *MemoryStateStorage) SaveState(_ context.Context, state domain.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state.Moves = slices.Clone(state.Moves)
	m.state = &state
	return nil
}

func (m *MemoryStateStorage) LoadState(context.Context) (*domain.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return nil, nil
	}
	state := *m.state
	return &state, nil
}

// MemoryArchiveStorage is used when MONGO_URI is not set.
type MemoryArchiveStorage struct {
	mu    sync.RWMutex
	games map[string]domain.ArchivedGame
}

func NewMemoryArchiveStorage() *MemoryArchiveStorage {
	return &MemoryArchiveStorage{
		games: make(map[string]domain.ArchivedGame),
	}
}

func (m *MemoryArchiveStorage) ArchiveGame(_ context.Context, game domain.ArchivedGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = game
	return nil
}

func (m *MemoryArchiveStorage) ListGames(_ context.Context, limit int) ([]domain.ArchivedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	games := lo.Values(m.games)
	slices.SortFunc(games, func(a, b domain.ArchivedGame) int {
		return b.FinishedAt.Compare(a.FinishedAt)
	})
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return lo.Map(games, func(g domain.ArchivedGame, _ int) domain.ArchivedGame {
		g.Moves = nil
		return g
	}), nil
}

func (m *MemoryArchiveStorage) GetGame(_ context.Context, id string) (domain.ArchivedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	game, ok := m.games[id]
	if !ok {
		return domain.ArchivedGame{}, errors.ErrGameNotFound
	}
	return game, nil
}
