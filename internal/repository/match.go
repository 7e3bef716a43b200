package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

type MatchRepository interface {
	Create(ctx context.Context, match *entity.MatchResult) error
	GetByID(ctx context.Context, id string) (*entity.MatchResult, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbMatch struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) MatchRepository {
	return &dbMatch{
		db: db,
	}
}

func (that *dbMatch) Create(ctx context.Context, match *entity.MatchResult) error {
	query := `INSERT INTO matches (
		id, seed, issued_at, starting_key, second_key, winner_key, result,
		starting_points, second_points, moves, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// seeds use the full uint64 range, which database/sql cannot bind as an integer.
	_, err := that.db.ExecContext(ctx, query,
		match.ID,
		strconv.FormatUint(match.Seed, 10),
		int64(match.IssuedAt), //nolint:gosec // unix milliseconds
		match.StartingKey,
		match.SecondKey,
		match.WinnerKey,
		match.Result,
		match.StartingPoints,
		match.SecondPoints,
		match.Moves,
		match.CreatedAt.UnixMilli(),
	)
	if isConstraintViolation(err) {
		return apperror.ErrMatchAlreadyExists
	}

	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.MatchResult, error) {
	query := `SELECT
		id, seed, issued_at, starting_key, second_key, winner_key, result,
		starting_points, second_points, moves, created_at
	FROM matches WHERE id = ?`

	var (
		match     entity.MatchResult
		seed      string
		issuedAt  int64
		createdAt int64
	)

	err := that.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&seed,
		&issuedAt,
		&match.StartingKey,
		&match.SecondKey,
		&match.WinnerKey,
		&match.Result,
		&match.StartingPoints,
		&match.SecondPoints,
		&match.Moves,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	if match.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("failed to parse stored seed: %w", err)
	}

	match.IssuedAt = uint64(issuedAt) //nolint:gosec // written from a uint64
	match.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &match, nil
}

func (that *dbMatch) DeleteByID(ctx context.Context, id string) error {
	if _, err := that.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete match by id: %w", err)
	}

	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	return false
}
