package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap/zaptest"

	domain "ai_chess/internal/domain/game"
	ownErrors "ai_chess/internal/errors"
)

func TestArchiveMongoStorage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	finished := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("archive game", func(mt *mtest.T) {
		storage := NewArchiveMongoStorage(mt.DB, zaptest.NewLogger(t).Sugar())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := storage.ArchiveGame(context.Background(), domain.ArchivedGame{ID: "game-1", PGN: "1. e4 *"})
		require.NoError(mt, err)
	})

	mt.Run("archive failure", func(mt *mtest.T) {
		storage := NewArchiveMongoStorage(mt.DB, zaptest.NewLogger(t).Sugar())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := storage.ArchiveGame(context.Background(), domain.ArchivedGame{ID: "game-1"})
		require.Error(mt, err)
	})

	mt.Run("list games", func(mt *mtest.T) {
		req := require.New(mt)
		storage := NewArchiveMongoStorage(mt.DB, zaptest.NewLogger(t).Sugar())
		ns := mt.Coll.Database().Name() + "." + gamesCollection

		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "game-2"},
			{Key: "status_message", Value: "Checkmate! Black wins!"},
			{Key: "finished_at", Value: finished},
		})
		second := mtest.CreateCursorResponse(1, ns, mtest.NextBatch, bson.D{
			{Key: "_id", Value: "game-1"},
			{Key: "status_message", Value: "Game ended in stalemate!"},
		})
		killCursors := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, second, killCursors)

		games, err := storage.ListGames(context.Background(), 10)
		req.NoError(err)
		req.Len(games, 2)
		req.Equal("game-2", games[0].ID)
		req.Equal("Checkmate! Black wins!", games[0].StatusMessage)
		req.True(finished.Equal(games[0].FinishedAt))
	})

	mt.Run("get game", func(mt *mtest.T) {
		req := require.New(mt)
		storage := NewArchiveMongoStorage(mt.DB, zaptest.NewLogger(t).Sugar())
		ns := mt.Coll.Database().Name() + "." + gamesCollection

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "game-1"},
			{Key: "pgn", Value: "1. f3 e5 2. g4 Qh4# 0-1"},
			{Key: "moves", Value: bson.A{bson.D{{Key: "ply", Value: 1}, {Key: "uci", Value: "f2f3"}}}},
		}))

		game, err := storage.GetGame(context.Background(), "game-1")
		req.NoError(err)
		req.Equal("1. f3 e5 2. g4 Qh4# 0-1", game.PGN)
		req.Len(game.Moves, 1)
		req.Equal("f2f3", game.Moves[0].UCI)
	})

	mt.Run("get missing game", func(mt *mtest.T) {
		storage := NewArchiveMongoStorage(mt.DB, zaptest.NewLogger(t).Sugar())
		ns := mt.Coll.Database().Name() + "." + gamesCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := storage.GetGame(context.Background(), "missing")
		require.ErrorIs(mt, err, ownErrors.ErrGameNotFound)
	})
}
