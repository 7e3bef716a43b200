package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

type MoveLogRepository interface {
	Append(ctx context.Context, matchID string, moves []entity.MoveRecord) error
	List(ctx context.Context, matchID string) ([]entity.MoveRecord, error)
	Delete(ctx context.Context, matchID string) error
}

type dbMoveLog struct {
	client *redis.Client
}

func NewMoveLogRepository(client *redis.Client) MoveLogRepository {
	return &dbMoveLog{
		client: client,
	}
}

func (that *dbMoveLog) Append(ctx context.Context, matchID string, moves []entity.MoveRecord) error {
	if len(moves) == 0 {
		return nil
	}

	values := make([]any, 0, len(moves))
	for _, move := range moves {
		moveJSON, err := json.Marshal(move)
		if err != nil {
			return fmt.Errorf("could not marshal move: %w", err)
		}

		values = append(values, moveJSON)
	}

	if err := that.client.RPush(ctx, movesKey(matchID), values...).Err(); err != nil {
		return fmt.Errorf("failed to append moves: %w", err)
	}

	return nil
}

// List returns the moves in the order they were appended; an unknown match yields an empty log.
func (that *dbMoveLog) List(ctx context.Context, matchID string) ([]entity.MoveRecord, error) {
	response, err := that.client.LRange(ctx, movesKey(matchID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}

	moves := make([]entity.MoveRecord, 0, len(response))
	for _, raw := range response {
		var move entity.MoveRecord
		if err = json.Unmarshal([]byte(raw), &move); err != nil {
			return nil, fmt.Errorf("failed to unmarshal move: %w", err)
		}

		moves = append(moves, move)
	}

	return moves, nil
}

func (that *dbMoveLog) Delete(ctx context.Context, matchID string) error {
	if err := that.client.Del(ctx, movesKey(matchID)).Err(); err != nil {
		return fmt.Errorf("failed to delete moves: %w", err)
	}

	return nil
}

func movesKey(matchID string) string {
	return "moves:" + matchID
}
