package replica

import (
	"crypto/ed25519"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/knucklebones-backend/internal/board"
)

// Rules are the game parameters both replicas must agree on.
type Rules struct {
	Width        int
	Height       int
	Displacement board.Displacement
}

func DefaultRules() Rules {
	return Rules{
		Width:        board.DefaultWidth,
		Height:       board.DefaultHeight,
		Displacement: board.DisplaceAll,
	}
}

type Option func(*Replica)

func WithLogger(logger *slog.Logger) Option {
	return func(that *Replica) {
		that.logger = logger
	}
}

// WithClock replaces the clock used to timestamp originated moves.
func WithClock(now func() time.Time) Option {
	return func(that *Replica) {
		that.now = now
	}
}

func WithRules(rules Rules) Option {
	return func(that *Replica) {
		that.rules = rules
	}
}

// WithSetupKey makes New reject a setup not signed by key.
func WithSetupKey(key ed25519.PublicKey) Option {
	return func(that *Replica) {
		that.setupKey = key
	}
}
