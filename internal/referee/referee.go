// Package referee re-validates a finished game from its signed move list, holding only the
// players' public keys.
package referee

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/replica"
)

// Verdict is the final state of a replayed game, seen from the starting player.
type Verdict struct {
	Snapshot entity.Snapshot
	Outcome  entity.Outcome
}

type Referee struct {
	logger   *slog.Logger
	rules    replica.Rules
	setupKey ed25519.PublicKey
}

// New returns a referee that trusts setups signed by setupKey.
func New(logger *slog.Logger, rules replica.Rules, setupKey ed25519.PublicKey) *Referee {
	return &Referee{
		logger:   logger.With("component", "referee"),
		rules:    rules,
		setupKey: setupKey,
	}
}

// Verify replays moves in order and stops at the first one that does not hold.
func (that *Referee) Verify(
	ctx context.Context,
	setup entity.GameSetup,
	startingKey, secondKey ed25519.PublicKey,
	moves []entity.MoveRecord,
) (*Verdict, error) {
	log := that.logger.With("method", "Verify", "seed", setup.SharedSeed)

	if bytes.Equal(startingKey, secondKey) {
		return nil, apperror.ErrSameKeys
	}

	verifier, err := replica.NewVerifier(setup, startingKey, secondKey,
		replica.WithRules(that.rules),
		replica.WithSetupKey(that.setupKey),
		replica.WithLogger(that.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build verifier: %w", err)
	}

	for i, record := range moves {
		if err = verifier.Replay(ctx, record); err != nil {
			log.Warn("move rejected", "index", i, "error", err)
			return nil, fmt.Errorf("invalid move at index %d: %w", i, err)
		}
	}

	snapshot := verifier.Snapshot()
	if !snapshot.Outcome.Finished {
		return nil, fmt.Errorf("%w: %d moves played", apperror.ErrGameNotFinished, len(moves))
	}

	log.Info("game verified", "moves", len(moves), "winner", snapshot.Outcome.Winner)

	return &Verdict{Snapshot: snapshot, Outcome: snapshot.Outcome}, nil
}
