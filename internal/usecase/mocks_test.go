package usecase

import (
	"context"
	"crypto/ed25519"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/referee"
)

type mockMatchRepo struct {
	mock.Mock
}

func (that *mockMatchRepo) Create(ctx context.Context, match *entity.MatchResult) error {
	args := that.Called(ctx, match)
	return args.Error(0)
}

func (that *mockMatchRepo) GetByID(ctx context.Context, id string) (*entity.MatchResult, error) {
	args := that.Called(ctx, id)
	match, _ := args.Get(0).(*entity.MatchResult)
	return match, args.Error(1)
}

func (that *mockMatchRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockMoveLogRepo struct {
	mock.Mock
}

func (that *mockMoveLogRepo) Append(ctx context.Context, matchID string, moves []entity.MoveRecord) error {
	args := that.Called(ctx, matchID, moves)
	return args.Error(0)
}

func (that *mockMoveLogRepo) List(ctx context.Context, matchID string) ([]entity.MoveRecord, error) {
	args := that.Called(ctx, matchID)
	moves, _ := args.Get(0).([]entity.MoveRecord)
	return moves, args.Error(1)
}

func (that *mockMoveLogRepo) Delete(ctx context.Context, matchID string) error {
	args := that.Called(ctx, matchID)
	return args.Error(0)
}

type mockLeaderboardRepo struct {
	mock.Mock
}

func (that *mockLeaderboardRepo) Record(ctx context.Context, match *entity.MatchResult) error {
	args := that.Called(ctx, match)
	return args.Error(0)
}

func (that *mockLeaderboardRepo) Top(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	args := that.Called(ctx, limit)
	entries, _ := args.Get(0).([]entity.LeaderboardEntry)
	return entries, args.Error(1)
}

type mockReferee struct {
	mock.Mock
}

func (that *mockReferee) Verify(
	ctx context.Context,
	setup entity.GameSetup,
	startingKey, secondKey ed25519.PublicKey,
	moves []entity.MoveRecord,
) (*referee.Verdict, error) {
	args := that.Called(ctx, setup, startingKey, secondKey, moves)
	verdict, _ := args.Get(0).(*referee.Verdict)
	return verdict, args.Error(1)
}
