package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "ai_chess/internal/domain/game"
)

const StateKey = "ai_chess:state"

// StateRedisStorage keeps the latest dashboard snapshot under one key.
type StateRedisStorage struct {
	client *redis.Client
	log    *zap.SugaredLogger
	key    string
}

func NewStateRedisStorage(client *redis.Client, log *zap.SugaredLogger) *StateRedisStorage {
	return &StateRedisStorage{
		client: client,
		log:    log,
		key:    StateKey,
	}
}

func (s *StateRedisStorage) SaveState(ctx context.Context, state domain.GameState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *StateRedisStorage) LoadState(ctx context.Context) (*domain.GameState, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var state domain.GameState
	if err = json.Unmarshal(data, &state); err != nil {
		s.log.Warnw("dropping unreadable state snapshot", "key", s.key, "error", err)
		return nil, nil
	}
	return &state, nil
}
