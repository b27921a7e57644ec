package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "ai_chess/internal/domain/game"
	"ai_chess/internal/errors"
)

func TestMemoryStateStorage(t *testing.T) {
	req := require.New(t)
	storage := NewMemoryStateStorage()
	ctx := context.Background()

	state, err := storage.LoadState(ctx)
	req.NoError(err)
	req.Nil(state)

	moves := []domain.MoveRecord{{Ply: 1, UCI: "e2e4"}}
	req.NoError(storage.SaveState(ctx, domain.GameState{ID: "game-1", Moves: moves}))
	moves[0].UCI = "d2d4"

	state, err = storage.LoadState(ctx)
	req.NoError(err)
	req.Equal("game-1", state.ID)
	req.Equal("e2e4", state.Moves[0].UCI)
}

func TestMemoryArchiveStorage(t *testing.T) {
	req := require.New(t)
	storage := NewMemoryArchiveStorage()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new", "middle"} {
		offset := map[string]time.Duration{"old": 0, "middle": time.Hour, "new": 2 * time.Hour}[id]
		req.NoError(storage.ArchiveGame(ctx, domain.ArchivedGame{
			ID:         id,
			FinishedAt: base.Add(offset),
			Moves:      make([]domain.MoveRecord, i+1),
		}))
	}

	games, err := storage.ListGames(ctx, 2)
	req.NoError(err)
	req.Len(games, 2)
	req.Equal("new", games[0].ID)
	req.Equal("middle", games[1].ID)
	req.Nil(games[0].Moves)

	game, err := storage.GetGame(ctx, "old")
	req.NoError(err)
	req.Len(game.Moves, 1)

	_, err = storage.GetGame(ctx, "missing")
	req.ErrorIs(err, errors.ErrGameNotFound)
}
