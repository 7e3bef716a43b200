package usecase

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/auth"
	"github.com/rocketscienceinc/knucklebones-backend/internal/dice"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/referee"
)

const DefaultLeaderboardLimit = 10

type matchRepo interface {
	Create(ctx context.Context, match *entity.MatchResult) error
	GetByID(ctx context.Context, id string) (*entity.MatchResult, error)
	DeleteByID(ctx context.Context, id string) error
}

type moveLogRepo interface {
	Append(ctx context.Context, matchID string, moves []entity.MoveRecord) error
	List(ctx context.Context, matchID string) ([]entity.MoveRecord, error)
	Delete(ctx context.Context, matchID string) error
}

type leaderboardRepo interface {
	Record(ctx context.Context, match *entity.MatchResult) error
	Top(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error)
}

type gameReferee interface {
	Verify(
		ctx context.Context,
		setup entity.GameSetup,
		startingKey, secondKey ed25519.PublicKey,
		moves []entity.MoveRecord,
	) (*referee.Verdict, error)
}

// MatchDetails is an archived match together with its move log.
type MatchDetails struct {
	entity.MatchResult
	History []entity.MoveRecord `json:"history"`
}

type MatchManager struct {
	logger *slog.Logger
	now    func() time.Time
	seed   func() (uint64, error)

	signer          auth.Signer
	referee         gameReferee
	matchRepo       matchRepo
	moveLogRepo     moveLogRepo
	leaderboardRepo leaderboardRepo
}

func NewMatchManager(
	logger *slog.Logger,
	signer auth.Signer,
	ref gameReferee,
	matchRepo matchRepo,
	moveLogRepo moveLogRepo,
	leaderboardRepo leaderboardRepo,
) *MatchManager {
	return &MatchManager{
		logger: logger.With("component", "match_manager"),
		now:    time.Now,
		seed:   dice.NewSeed,

		signer:          signer,
		referee:         ref,
		matchRepo:       matchRepo,
		moveLogRepo:     moveLogRepo,
		leaderboardRepo: leaderboardRepo,
	}
}

// IssueSetup produces a fresh setup signed for exactly these two players; startingKey opens.
func (that *MatchManager) IssueSetup(ctx context.Context, startingPlayerID int, startingKey, secondKey string) (entity.GameSetup, error) {
	starting, second, err := parseKeys(startingKey, secondKey)
	if err != nil {
		return entity.GameSetup{}, err
	}

	seed, err := that.seed()
	if err != nil {
		return entity.GameSetup{}, fmt.Errorf("failed to generate seed: %w", err)
	}

	setup, err := auth.SignSetup(ctx, that.signer, entity.GameSetup{
		SharedSeed:       seed,
		StartingPlayerID: startingPlayerID,
		IssuedAt:         uint64(that.now().UnixMilli()), //nolint:gosec // wall clock is positive
		StartingKey:      entity.Binary(starting),
		SecondKey:        entity.Binary(second),
	})
	if err != nil {
		return entity.GameSetup{}, err
	}

	that.logger.Debug("setup issued", "method", "IssueSetup", "seed", setup.SharedSeed)

	return setup, nil
}

// SubmitGame verifies a finished game and archives its result. The sqlite row claims the setup;
// when a later write fails it is released again so the game can be resubmitted.
func (that *MatchManager) SubmitGame(ctx context.Context, submission *entity.GameSubmission) (*entity.MatchResult, error) {
	log := that.logger.With("method", "SubmitGame", "seed", submission.Seed)

	startingKey, secondKey, err := parseKeys(submission.StartingKey, submission.SecondKey)
	if err != nil {
		return nil, err
	}

	setup := submission.Setup(startingKey, secondKey)

	verdict, err := that.referee.Verify(ctx, setup, startingKey, secondKey, submission.Moves)
	if err != nil {
		log.Info("game rejected", "error", err)
		return nil, fmt.Errorf("failed to verify game: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate match id: %w", err)
	}

	match := newMatchResult(id.String(), submission, verdict.Outcome, that.now())

	if err = that.matchRepo.Create(ctx, match); err != nil {
		if errors.Is(err, apperror.ErrMatchAlreadyExists) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to archive match: %w", err)
	}

	if err = that.moveLogRepo.Append(ctx, match.ID, submission.Moves); err != nil {
		that.release(ctx, log, match.ID)
		return nil, fmt.Errorf("failed to store moves: %w", err)
	}

	if err = that.leaderboardRepo.Record(ctx, match); err != nil {
		that.release(ctx, log, match.ID)
		return nil, fmt.Errorf("failed to update leaderboard: %w", err)
	}

	log.Info("match archived", "id", match.ID, "result", match.Result, "moves", match.Moves)

	return match, nil
}

// release undoes a partial submission: the move log first, then the archive row.
func (that *MatchManager) release(ctx context.Context, log *slog.Logger, matchID string) {
	ctx = context.WithoutCancel(ctx)

	if err := that.moveLogRepo.Delete(ctx, matchID); err != nil {
		log.Error("failed to drop moves of a failed submission", "id", matchID, "error", err)
	}

	if err := that.matchRepo.DeleteByID(ctx, matchID); err != nil {
		log.Error("failed to release archived match", "id", matchID, "error", err)
	}
}

func (that *MatchManager) Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	entries, err := that.leaderboardRepo.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}

func (that *MatchManager) Match(ctx context.Context, id string) (*MatchDetails, error) {
	match, err := that.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w by id", err)
	}

	history, err := that.moveLogRepo.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}

	return &MatchDetails{MatchResult: *match, History: history}, nil
}

func parseKeys(startingKey, secondKey string) (ed25519.PublicKey, ed25519.PublicKey, error) {
	starting, err := auth.ParsePublicKey(startingKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: starting key: %w", apperror.ErrInvalidSetup, err)
	}

	second, err := auth.ParsePublicKey(secondKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: second key: %w", apperror.ErrInvalidSetup, err)
	}

	return starting, second, nil
}

// newMatchResult maps an outcome, which the referee reports from the starting player's side.
func newMatchResult(id string, submission *entity.GameSubmission, outcome entity.Outcome, now time.Time) *entity.MatchResult {
	match := &entity.MatchResult{
		ID:             id,
		Seed:           submission.Seed,
		IssuedAt:       submission.IssuedAt,
		StartingKey:    submission.StartingKey,
		SecondKey:      submission.SecondKey,
		Result:         entity.ResultWin,
		StartingPoints: outcome.SelfTotal,
		SecondPoints:   outcome.OpponentTotal,
		Moves:          len(submission.Moves),
		CreatedAt:      now.UTC(),
	}

	switch outcome.Winner {
	case entity.WinnerSelf:
		match.WinnerKey = submission.StartingKey
	case entity.WinnerOpponent:
		match.WinnerKey = submission.SecondKey
	default:
		match.Result = entity.ResultTie
	}

	return match
}
