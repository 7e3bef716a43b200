package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/testing/suite"
)

func newMatchRepo(t *testing.T) (context.Context, MatchRepository) {
	t.Helper()

	ctx, archive := suite.NewArchive(t)

	return ctx, NewMatchRepository(archive.Connection)
}

func sampleMatch(id string) *entity.MatchResult {
	return &entity.MatchResult{
		ID:             id,
		Seed:           18446744073709551557,
		IssuedAt:       1700000000123,
		StartingKey:    "starting",
		SecondKey:      "second",
		WinnerKey:      "starting",
		Result:         entity.ResultWin,
		StartingPoints: 64,
		SecondPoints:   31,
		Moves:          17,
		CreatedAt:      time.UnixMilli(1700000005000).UTC(),
	}
}

func TestMatchRepository_Create(t *testing.T) {
	t.Run("Stores and reads back a match", func(t *testing.T) {
		ctx, repo := newMatchRepo(t)

		// Given: a match result with a seed above the int64 range
		match := sampleMatch("0192b1c4-0000-7000-8000-000000000001")

		// When: it is created and read back
		err := repo.Create(ctx, match)
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, match.ID)

		// Then: every field survives the round trip
		require.NoError(t, err)
		assert.Equal(t, match, stored)
	})

	t.Run("Rejects a second match with the same setup", func(t *testing.T) {
		ctx, repo := newMatchRepo(t)

		// Given: an archived match
		require.NoError(t, repo.Create(ctx, sampleMatch("first")))

		// When: another match with the same seed and issue time is created
		err := repo.Create(ctx, sampleMatch("second"))

		// Then: it is reported as a duplicate
		require.ErrorIs(t, err, apperror.ErrMatchAlreadyExists)
	})

	t.Run("Rejects a duplicate id", func(t *testing.T) {
		ctx, repo := newMatchRepo(t)

		match := sampleMatch("same")
		require.NoError(t, repo.Create(ctx, match))

		other := sampleMatch("same")
		other.Seed = 1
		err := repo.Create(ctx, other)

		require.ErrorIs(t, err, apperror.ErrMatchAlreadyExists)
	})
}

func TestMatchRepository_GetByID(t *testing.T) {
	ctx, repo := newMatchRepo(t)

	// Given: an empty archive
	// When: a match is looked up
	match, err := repo.GetByID(ctx, "missing")

	// Then: ErrMatchNotFound is returned
	require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	assert.Nil(t, match)
}

func TestMatchRepository_DeleteByID(t *testing.T) {
	ctx, repo := newMatchRepo(t)

	// Given: an archived match
	match := sampleMatch("doomed")
	require.NoError(t, repo.Create(ctx, match))

	// When: it is deleted
	require.NoError(t, repo.DeleteByID(ctx, match.ID))

	// Then: it is gone and its setup can be archived again
	_, err := repo.GetByID(ctx, match.ID)
	require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	require.NoError(t, repo.Create(ctx, sampleMatch("again")))
}
