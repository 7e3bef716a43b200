package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/knucklebones-backend/internal/board"
	"github.com/rocketscienceinc/knucklebones-backend/internal/replica"
)

func TestMatch_PlaysToTheEnd(t *testing.T) {
	for _, displacement := range []board.Displacement{board.DisplaceAll, board.DisplaceOne} {
		t.Run(string(displacement), func(t *testing.T) {
			// Given: a self-play match
			rules := replica.DefaultRules()
			rules.Displacement = displacement

			m, err := newMatch(42, rules)
			require.NoError(t, err)

			// When: turns are played until the game ends
			for i := 0; i < 1000 && !m.finished(); i++ {
				_, err = m.turn(context.Background())
				require.NoError(t, err)
			}

			// Then: both replicas agree on the mirrored final state
			require.True(t, m.finished())

			a := m.players[0].replica.Snapshot()
			b := m.players[1].replica.Snapshot()
			assert.Equal(t, a.SelfGrid, b.OpponentGrid)
			assert.Equal(t, a.OpponentGrid, b.SelfGrid)
			assert.Equal(t, a.History, b.History)
			assert.Equal(t, a.History, m.log)
		})
	}
}
