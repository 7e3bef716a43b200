// Package replica holds one party's copy of a knucklebones game.
//
// A Replica is built from the GameSetup both parties received and changes only through
// OriginateMove, for the local party's moves, and IngestMove, for the signed moves the remote
// party sends. Every check runs before any state is touched, so a rejected move leaves the
// replica exactly as it was. Two replicas fed the same move stream end with the same grids,
// scores and history, mirrored between "self" and "opponent".
package replica

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/auth"
	"github.com/rocketscienceinc/knucklebones-backend/internal/board"
	"github.com/rocketscienceinc/knucklebones-backend/internal/dice"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

var ErrVerifyOnly = errors.New("replica holds no signing key")

type Replica struct {
	// mu serializes moves; it is held while a Signer is awaited.
	mu sync.Mutex

	logger *slog.Logger
	now    func() time.Time
	rules  Rules

	setup           entity.GameSetup
	setupKey        ed25519.PublicKey
	startingIsLocal bool

	signer    auth.Signer
	localKey  ed25519.PublicKey
	remoteKey ed25519.PublicKey

	self     *board.Grid
	opponent *board.Grid
	sequence uint32
	history  []entity.MoveRecord
	dice     *dice.Schedule
}

// New builds the replica of the party identified by localID, signing with signer and
// verifying the remote party with remoteKey.
func New(setup entity.GameSetup, localID int, signer auth.Signer, remoteKey ed25519.PublicKey, opts ...Option) (*Replica, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: signer is required", apperror.ErrInvalidSetup)
	}

	return build(setup, setup.StartingPlayerID == localID, signer, signer.Public(), remoteKey, opts)
}

// NewVerifier builds a replica that holds no private key and can only Replay moves. It sees the
// game from the starting player's side.
func NewVerifier(setup entity.GameSetup, startingKey, secondKey ed25519.PublicKey, opts ...Option) (*Replica, error) {
	return build(setup, true, nil, startingKey, secondKey, opts)
}

func build(
	setup entity.GameSetup,
	startingIsLocal bool,
	signer auth.Signer,
	localKey, remoteKey ed25519.PublicKey,
	opts []Option,
) (*Replica, error) {
	that := &Replica{
		logger:          slog.New(slog.DiscardHandler),
		now:             time.Now,
		rules:           DefaultRules(),
		setup:           setup,
		startingIsLocal: startingIsLocal,
		signer:          signer,
		localKey:        localKey,
		remoteKey:       remoteKey,
	}

	for _, opt := range opts {
		opt(that)
	}

	if err := that.validate(); err != nil {
		return nil, err
	}

	that.logger = that.logger.With("component", "replica", "seed", setup.SharedSeed)
	that.self = board.NewGrid(that.rules.Width, that.rules.Height)
	that.opponent = board.NewGrid(that.rules.Width, that.rules.Height)
	that.dice = dice.New(setup.SharedSeed)

	return that, nil
}

func (that *Replica) validate() error {
	if that.rules.Width <= 0 || that.rules.Height <= 0 || that.rules.Width > math.MaxUint8+1 {
		return fmt.Errorf("%w: board %dx%d", apperror.ErrInvalidSetup, that.rules.Width, that.rules.Height)
	}

	if _, err := board.ParseDisplacement(string(that.rules.Displacement)); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidSetup, err)
	}

	if len(that.localKey) != ed25519.PublicKeySize || len(that.remoteKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: bad player key", apperror.ErrInvalidSetup)
	}

	if that.setupKey != nil {
		startingKey, secondKey := that.localKey, that.remoteKey
		if !that.startingIsLocal {
			startingKey, secondKey = secondKey, startingKey
		}

		if err := auth.VerifySetupFor(that.setup, that.setupKey, startingKey, secondKey); err != nil {
			return err
		}
	}

	return nil
}

// OriginateMove plays the pending die into column of the local grid and returns the signed
// record to send to the remote party.
func (that *Replica) OriginateMove(ctx context.Context, column int) (entity.MoveRecord, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "OriginateMove", "column", column)

	if that.signer == nil {
		return entity.MoveRecord{}, ErrVerifyOnly
	}

	if that.isFinished() {
		return entity.MoveRecord{}, apperror.ErrGameFinished
	}

	sequence := that.sequence + 1
	if !auth.LocalSigns(sequence, that.startingIsLocal) {
		return entity.MoveRecord{}, fmt.Errorf("%w: move %d belongs to the opponent", apperror.ErrNotYourTurn, sequence)
	}

	if _, err := that.self.LandingRow(column); err != nil {
		return entity.MoveRecord{}, err
	}

	timestamp := uint64(that.now().UnixMilli())
	signature, err := auth.SignMove(ctx, that.signer, uint8(column), sequence, timestamp)
	if err != nil {
		return entity.MoveRecord{}, err
	}

	record := entity.MoveRecord{
		Sequence:  sequence,
		Timestamp: timestamp,
		Column:    uint8(column),
		Signature: signature,
	}

	if err = that.apply(record, that.self, that.opponent); err != nil {
		return entity.MoveRecord{}, err
	}

	log.Debug("move originated", "sequence", sequence)

	return cloneRecord(record), nil
}

// IngestMove applies a move signed by the remote party.
func (that *Replica) IngestMove(ctx context.Context, record entity.MoveRecord) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.accept(ctx, record, false); err != nil {
		that.logger.Warn("move rejected", "method", "IngestMove", "sequence", record.Sequence, "error", err)
		return err
	}

	return nil
}

// Replay applies a move signed by whichever party owns its turn. It is how a verifier
// re-validates a finished game.
func (that *Replica) Replay(ctx context.Context, record entity.MoveRecord) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.accept(ctx, record, true)
}

func (that *Replica) accept(ctx context.Context, record entity.MoveRecord, anySigner bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if that.isFinished() {
		return apperror.ErrGameFinished
	}

	if record.Sequence != that.sequence+1 {
		return fmt.Errorf("%w: got %d, want %d", apperror.ErrOutOfOrder, record.Sequence, that.sequence+1)
	}

	key, mover, other := that.remoteKey, that.opponent, that.self
	if auth.LocalSigns(record.Sequence, that.startingIsLocal) {
		if !anySigner {
			return fmt.Errorf("%w: move %d belongs to the local player", apperror.ErrNotYourTurn, record.Sequence)
		}
		key, mover, other = that.localKey, that.self, that.opponent
	}

	if err := auth.VerifyMove(record, key); err != nil {
		return err
	}

	if err := that.apply(record, mover, other); err != nil {
		return err
	}

	that.logger.Debug("move accepted", "sequence", record.Sequence, "column", record.Column)

	return nil
}

// apply is the only place a move mutates state and the only place history grows.
func (that *Replica) apply(record entity.MoveRecord, mover, other *board.Grid) error {
	value := that.dice.Peek()
	column := int(record.Column)

	if _, err := mover.PlaceAt(column, value); err != nil {
		return fmt.Errorf("move %d: %w", record.Sequence, err)
	}

	other.RemoveMatching(column, value, that.rules.Displacement)
	that.dice.Next()

	that.sequence = record.Sequence
	that.history = append(that.history, cloneRecord(record))

	return nil
}

// Snapshot returns a copy of the current state.
func (that *Replica) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	history := make([]entity.MoveRecord, len(that.history))
	for i, record := range that.history {
		history[i] = cloneRecord(record)
	}

	finished := that.isFinished()

	return entity.Snapshot{
		SelfGrid:      that.self.Cells(),
		OpponentGrid:  that.opponent.Cells(),
		SelfScore:     that.self.ScoreColumns(),
		OpponentScore: that.opponent.ScoreColumns(),
		History:       history,
		Sequence:      that.sequence,
		NextDiceValue: that.dice.Peek(),
		YourTurn:      !finished && auth.LocalSigns(that.sequence+1, that.startingIsLocal),
		Outcome:       that.outcome(finished),
	}
}

// Finished reports whether either grid is full.
func (that *Replica) Finished() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.isFinished()
}

func (that *Replica) isFinished() bool {
	return that.self.IsFull() || that.opponent.IsFull()
}

func (that *Replica) outcome(finished bool) entity.Outcome {
	outcome := entity.Outcome{
		Finished:      finished,
		SelfTotal:     that.self.Total(),
		OpponentTotal: that.opponent.Total(),
	}

	if !finished {
		return outcome
	}

	switch {
	case outcome.SelfTotal > outcome.OpponentTotal:
		outcome.Winner = entity.WinnerSelf
	case outcome.SelfTotal < outcome.OpponentTotal:
		outcome.Winner = entity.WinnerOpponent
	default:
		outcome.Winner = entity.WinnerTie
	}

	return outcome
}

func cloneRecord(record entity.MoveRecord) entity.MoveRecord {
	record.Signature = append([]byte(nil), record.Signature...)
	return record
}
