package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/auth"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/referee"
	"github.com/rocketscienceinc/knucklebones-backend/internal/repository"
	"github.com/rocketscienceinc/knucklebones-backend/testing/suite"
)

var (
	errRedisDown  = errors.New("redis down")
	errDiskFull   = errors.New("disk is full")
	errNoEntropy  = errors.New("no entropy")
	fixedNow      = time.UnixMilli(1700000000000)
	defaultVerify = &referee.Verdict{Outcome: entity.Outcome{
		Finished: true, Winner: entity.WinnerOpponent, SelfTotal: 20, OpponentTotal: 44,
	}}
)

type fixture struct {
	manager     *MatchManager
	server      *auth.KeySigner
	referee     *mockReferee
	matches     *mockMatchRepo
	moveLog     *mockMoveLogRepo
	leaderboard *mockLeaderboardRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server, err := auth.GenerateKeySigner()
	require.NoError(t, err)

	f := &fixture{
		server:      server,
		referee:     &mockReferee{},
		matches:     &mockMatchRepo{},
		moveLog:     &mockMoveLogRepo{},
		leaderboard: &mockLeaderboardRepo{},
	}

	f.manager = NewMatchManager(slog.New(slog.DiscardHandler), server, f.referee, f.matches, f.moveLog, f.leaderboard)
	f.manager.now = func() time.Time { return fixedNow }
	f.manager.seed = func() (uint64, error) { return 42, nil }

	t.Cleanup(func() {
		f.referee.AssertExpectations(t)
		f.matches.AssertExpectations(t)
		f.moveLog.AssertExpectations(t)
		f.leaderboard.AssertExpectations(t)
	})

	return f
}

func newSubmission(t *testing.T) *entity.GameSubmission {
	t.Helper()

	starting, err := auth.GenerateKeySigner()
	require.NoError(t, err)
	second, err := auth.GenerateKeySigner()
	require.NoError(t, err)

	return &entity.GameSubmission{
		Seed:             42,
		IssuedAt:         1000,
		StartingPlayerID: 1,
		StartingKey:      auth.EncodeKey(starting.Public()),
		SecondKey:        auth.EncodeKey(second.Public()),
		SetupSignature:   make([]byte, 64),
		Moves:            []entity.MoveRecord{{Sequence: 1}, {Sequence: 2}},
	}
}

func TestMatchManager_IssueSetup(t *testing.T) {
	ctx := context.Background()

	starting, err := auth.GenerateKeySigner()
	require.NoError(t, err)
	second, err := auth.GenerateKeySigner()
	require.NoError(t, err)

	startingKey := auth.EncodeKey(starting.Public())
	secondKey := auth.EncodeKey(second.Public())

	t.Run("Issues a setup signed for both players", func(t *testing.T) {
		// Given: a manager with a fixed seed and clock
		f := newFixture(t)

		// When: a setup is issued
		setup, err := f.manager.IssueSetup(ctx, 7, startingKey, secondKey)

		// Then: it carries the seed, the issue time, the keys and a valid signature
		require.NoError(t, err)
		assert.Equal(t, uint64(42), setup.SharedSeed)
		assert.Equal(t, uint64(fixedNow.UnixMilli()), setup.IssuedAt)
		assert.Equal(t, 7, setup.StartingPlayerID)
		require.NoError(t, auth.VerifySetupFor(setup, f.server.Public(), starting.Public(), second.Public()))
	})

	t.Run("Rejects a malformed key", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.manager.IssueSetup(ctx, 1, startingKey, "short")

		require.ErrorIs(t, err, apperror.ErrInvalidSetup)
	})

	t.Run("Rejects the same key twice", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.manager.IssueSetup(ctx, 1, startingKey, startingKey)

		require.ErrorIs(t, err, apperror.ErrSameKeys)
	})

	t.Run("Fails when no seed can be drawn", func(t *testing.T) {
		f := newFixture(t)
		f.manager.seed = func() (uint64, error) { return 0, errNoEntropy }

		_, err := f.manager.IssueSetup(ctx, 1, startingKey, secondKey)

		require.ErrorIs(t, err, errNoEntropy)
	})
}

func TestMatchManager_SubmitGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Archives a verified game", func(t *testing.T) {
		// Given: a referee accepting the game with the second player ahead
		f := newFixture(t)
		submission := newSubmission(t)

		f.referee.On("Verify", ctx, mock.AnythingOfType("entity.GameSetup"), mock.Anything, mock.Anything, submission.Moves).
			Return(defaultVerify, nil).Once()
		f.matches.On("Create", ctx, mock.AnythingOfType("*entity.MatchResult")).Return(nil).Once()
		f.moveLog.On("Append", ctx, mock.AnythingOfType("string"), submission.Moves).Return(nil).Once()
		f.leaderboard.On("Record", ctx, mock.AnythingOfType("*entity.MatchResult")).Return(nil).Once()

		// When: the game is submitted
		match, err := f.manager.SubmitGame(ctx, submission)

		// Then: the second player is recorded as the winner
		require.NoError(t, err)
		assert.NotEmpty(t, match.ID)
		assert.Equal(t, entity.ResultWin, match.Result)
		assert.Equal(t, submission.SecondKey, match.WinnerKey)
		assert.Equal(t, 20, match.StartingPoints)
		assert.Equal(t, 44, match.SecondPoints)
		assert.Equal(t, 2, match.Moves)
		assert.Equal(t, fixedNow.UTC(), match.CreatedAt)
	})

	t.Run("Records a tie without a winner", func(t *testing.T) {
		f := newFixture(t)
		submission := newSubmission(t)
		tie := &referee.Verdict{Outcome: entity.Outcome{Finished: true, Winner: entity.WinnerTie, SelfTotal: 30, OpponentTotal: 30}}

		f.referee.On("Verify", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tie, nil).Once()
		f.matches.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.moveLog.On("Append", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.leaderboard.On("Record", ctx, mock.Anything).Return(nil).Once()

		match, err := f.manager.SubmitGame(ctx, submission)

		require.NoError(t, err)
		assert.True(t, match.IsTie())
		assert.Empty(t, match.WinnerKey)
	})

	t.Run("Rejects a malformed key before refereeing", func(t *testing.T) {
		f := newFixture(t)
		submission := newSubmission(t)
		submission.SecondKey = "not base64!"

		_, err := f.manager.SubmitGame(ctx, submission)

		require.ErrorIs(t, err, apperror.ErrInvalidSetup)
	})

	t.Run("Propagates the referee rejection", func(t *testing.T) {
		f := newFixture(t)
		submission := newSubmission(t)

		f.referee.On("Verify", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperror.ErrAuthentication).Once()

		_, err := f.manager.SubmitGame(ctx, submission)

		require.ErrorIs(t, err, apperror.ErrAuthentication)
	})

	t.Run("Reports a duplicate game", func(t *testing.T) {
		f := newFixture(t)
		submission := newSubmission(t)

		f.referee.On("Verify", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(defaultVerify, nil).Once()
		f.matches.On("Create", ctx, mock.Anything).Return(apperror.ErrMatchAlreadyExists).Once()

		_, err := f.manager.SubmitGame(ctx, submission)

		require.ErrorIs(t, err, apperror.ErrMatchAlreadyExists)
	})

	t.Run("Fails when the leaderboard is unavailable", func(t *testing.T) {
		f := newFixture(t)
		submission := newSubmission(t)

		f.referee.On("Verify", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(defaultVerify, nil).Once()
		f.matches.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.moveLog.On("Append", ctx, mock.Anything, mock.Anything).Return(nil).Once()
		f.leaderboard.On("Record", ctx, mock.Anything).Return(errRedisDown).Once()
		f.moveLog.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()
		f.matches.On("DeleteByID", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

		_, err := f.manager.SubmitGame(ctx, submission)

		require.ErrorIs(t, err, errRedisDown)
	})

	t.Run("Passes the setup with both keys to the referee", func(t *testing.T) {
		f := newFixture(t)
		submission := newSubmission(t)

		f.referee.On("Verify", ctx, mock.MatchedBy(func(setup entity.GameSetup) bool {
			return auth.EncodeKey(setup.StartingKey) == submission.StartingKey &&
				auth.EncodeKey(setup.SecondKey) == submission.SecondKey &&
				len(setup.SetupSignature) == 64
		}), mock.Anything, mock.Anything, mock.Anything).Return(nil, apperror.ErrInvalidSetup).Once()

		_, err := f.manager.SubmitGame(ctx, submission)

		require.ErrorIs(t, err, apperror.ErrInvalidSetup)
	})
}

func TestMatchManager_Leaderboard(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses the default limit", func(t *testing.T) {
		f := newFixture(t)
		entries := []entity.LeaderboardEntry{{Key: "k", Points: 10, Games: 1, Wins: 1}}
		f.leaderboard.On("Top", ctx, DefaultLeaderboardLimit).Return(entries, nil).Once()

		top, err := f.manager.Leaderboard(ctx, 0)

		require.NoError(t, err)
		assert.Equal(t, entries, top)
	})

	t.Run("Wraps storage errors", func(t *testing.T) {
		f := newFixture(t)
		f.leaderboard.On("Top", ctx, 3).Return(nil, errRedisDown).Once()

		_, err := f.manager.Leaderboard(ctx, 3)

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestMatchManager_Match(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the match with its moves", func(t *testing.T) {
		f := newFixture(t)
		stored := &entity.MatchResult{ID: "m1", Result: entity.ResultTie}
		moves := []entity.MoveRecord{{Sequence: 1}}
		f.matches.On("GetByID", ctx, "m1").Return(stored, nil).Once()
		f.moveLog.On("List", ctx, "m1").Return(moves, nil).Once()

		details, err := f.manager.Match(ctx, "m1")

		require.NoError(t, err)
		assert.Equal(t, "m1", details.ID)
		assert.Equal(t, moves, details.History)
	})

	t.Run("Not found", func(t *testing.T) {
		f := newFixture(t)
		f.matches.On("GetByID", ctx, "nope").Return(nil, apperror.ErrMatchNotFound).Once()

		_, err := f.manager.Match(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})

	t.Run("Move log failure", func(t *testing.T) {
		f := newFixture(t)
		f.matches.On("GetByID", ctx, "m2").Return(&entity.MatchResult{ID: "m2"}, nil).Once()
		f.moveLog.On("List", ctx, "m2").Return(nil, errDiskFull).Once()

		_, err := f.manager.Match(ctx, "m2")

		require.ErrorIs(t, err, errDiskFull)
	})
}

func TestMatchManager_SubmitGame_Retry(t *testing.T) {
	t.Run("A failed move log write leaves the game resubmittable", func(t *testing.T) {
		// Given: a real sqlite archive and a move log that fails once
		ctx, archive := suite.NewArchive(t)
		f := newFixture(t)
		f.manager.matchRepo = repository.NewMatchRepository(archive.Connection)
		submission := newSubmission(t)

		f.referee.On("Verify", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(defaultVerify, nil).Twice()
		f.moveLog.On("Append", ctx, mock.Anything, submission.Moves).Return(errRedisDown).Once()
		f.moveLog.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()
		f.moveLog.On("Append", ctx, mock.Anything, submission.Moves).Return(nil).Once()
		f.leaderboard.On("Record", ctx, mock.AnythingOfType("*entity.MatchResult")).Return(nil).Once()

		// When: the game is submitted, fails, and is submitted again
		_, err := f.manager.SubmitGame(ctx, submission)
		require.ErrorIs(t, err, errRedisDown)

		match, err := f.manager.SubmitGame(ctx, submission)

		// Then: the retry is archived and counted instead of being refused as a duplicate
		require.NoError(t, err)

		stored, err := f.manager.matchRepo.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, submission.SecondKey, stored.WinnerKey)
	})

	t.Run("A duplicate is still refused after a success", func(t *testing.T) {
		ctx, archive := suite.NewArchive(t)
		f := newFixture(t)
		f.manager.matchRepo = repository.NewMatchRepository(archive.Connection)
		submission := newSubmission(t)

		f.referee.On("Verify", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(defaultVerify, nil).Twice()
		f.moveLog.On("Append", ctx, mock.Anything, submission.Moves).Return(nil).Once()
		f.leaderboard.On("Record", ctx, mock.Anything).Return(nil).Once()

		_, err := f.manager.SubmitGame(ctx, submission)
		require.NoError(t, err)

		_, err = f.manager.SubmitGame(ctx, submission)

		require.ErrorIs(t, err, apperror.ErrMatchAlreadyExists)
	})
}
