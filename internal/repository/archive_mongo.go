package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	domain "ai_chess/internal/domain/game"
	ownErrors "ai_chess/internal/errors"
)

const (
	gamesCollection = "games"
	mongoTimeout    = 5 * time.Second
)

type ArchiveMongoStorage struct {
	collection *mongo.Collection
	log        *zap.SugaredLogger
}

func NewArchiveMongoStorage(db *mongo.Database, log *zap.SugaredLogger) *ArchiveMongoStorage {
	return &ArchiveMongoStorage{
		collection: db.Collection(gamesCollection),
		log:        log,
	}
}

func (a *ArchiveMongoStorage) ArchiveGame(ctx context.Context, game domain.ArchivedGame) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if _, err := a.collection.InsertOne(ctx, game); err != nil {
		return fmt.Errorf("insert archived game %s: %w", game.ID, err)
	}
	a.log.Infof("game %s archived", game.ID)
	return nil
}

// ListGames returns the most recently finished games first.
func (a *ArchiveMongoStorage) ListGames(ctx context.Context, limit int) ([]domain.ArchivedGame, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "finished_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"moves": 0})

	cursor, err := a.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find archived games: %w", err)
	}
	defer cursor.Close(ctx)

	games := make([]domain.ArchivedGame, 0, limit)
	if err = cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decode archived games: %w", err)
	}
	return games, nil
}

func (a *ArchiveMongoStorage) GetGame(ctx context.Context, id string) (domain.ArchivedGame, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var game domain.ArchivedGame
	err := a.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ArchivedGame{}, ownErrors.ErrGameNotFound
	}
	if err != nil {
		return domain.ArchivedGame{}, fmt.Errorf("find archived game %s: %w", id, err)
	}
	return game, nil
}
