package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

const (
	pointsKey = "leaderboard:points"
	gamesKey  = "leaderboard:games"
	winsKey   = "leaderboard:wins"
)

type LeaderboardRepository interface {
	Record(ctx context.Context, match *entity.MatchResult) error
	Top(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error)
}

type dbLeaderboard struct {
	client *redis.Client
}

func NewLeaderboardRepository(client *redis.Client) LeaderboardRepository {
	return &dbLeaderboard{
		client: client,
	}
}

// Record credits both players with the points they scored and counts the game for each of them.
func (that *dbLeaderboard) Record(ctx context.Context, match *entity.MatchResult) error {
	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZIncrBy(ctx, pointsKey, float64(match.StartingPoints), match.StartingKey)
		pipe.ZIncrBy(ctx, pointsKey, float64(match.SecondPoints), match.SecondKey)
		pipe.HIncrBy(ctx, gamesKey, match.StartingKey, 1)
		pipe.HIncrBy(ctx, gamesKey, match.SecondKey, 1)

		if !match.IsTie() && match.WinnerKey != "" {
			pipe.HIncrBy(ctx, winsKey, match.WinnerKey, 1)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}

	return nil
}

func (that *dbLeaderboard) Top(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	if limit <= 0 {
		return []entity.LeaderboardEntry{}, nil
	}

	ranked, err := that.client.ZRevRangeWithScores(ctx, pointsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if len(ranked) == 0 {
		return []entity.LeaderboardEntry{}, nil
	}

	keys := make([]string, 0, len(ranked))
	for _, member := range ranked {
		keys = append(keys, fmt.Sprint(member.Member))
	}

	games, err := that.client.HMGet(ctx, gamesKey, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get games count: %w", err)
	}

	wins, err := that.client.HMGet(ctx, winsKey, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get wins count: %w", err)
	}

	entries := make([]entity.LeaderboardEntry, 0, len(ranked))
	for i, member := range ranked {
		entries = append(entries, entity.LeaderboardEntry{
			Key:    keys[i],
			Points: int(member.Score),
			Games:  counter(games[i]),
			Wins:   counter(wins[i]),
		})
	}

	return entries, nil
}

// counter reads a HMGET field; missing fields come back as nil.
func counter(value any) int {
	raw, ok := value.(string)
	if !ok {
		return 0
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}

	return n
}
