package main

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/knucklebones-backend/internal/auth"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/replica"
	"github.com/rocketscienceinc/knucklebones-backend/internal/service"
)

const (
	startingID = 1
	secondID   = 2
)

type player struct {
	name    string
	signer  *auth.KeySigner
	replica *replica.Replica
	bot     service.BotService
}

// match wires two replicas together; records go straight from one to the other.
type match struct {
	server  *auth.KeySigner
	setup   entity.GameSetup
	players [2]*player
	log     []entity.MoveRecord
}

func newMatch(seed uint64, rules replica.Rules) (*match, error) {
	ctx := context.Background()

	server, err := auth.GenerateKeySigner()
	if err != nil {
		return nil, err
	}

	signers := [2]*auth.KeySigner{}
	for i := range signers {
		if signers[i], err = auth.GenerateKeySigner(); err != nil {
			return nil, err
		}
	}

	setup, err := auth.SignSetup(ctx, server, entity.GameSetup{
		SharedSeed:       seed,
		StartingPlayerID: startingID,
		StartingKey:      entity.Binary(signers[0].Public()),
		SecondKey:        entity.Binary(signers[1].Public()),
	})
	if err != nil {
		return nil, err
	}

	m := &match{server: server, setup: setup}

	for i, id := range []int{startingID, secondID} {
		r, err := replica.New(setup, id, signers[i], signers[1-i].Public(),
			replica.WithRules(rules),
			replica.WithSetupKey(server.Public()),
		)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", id, err)
		}

		m.players[i] = &player{
			name:    fmt.Sprintf("Player %d", id),
			signer:  signers[i],
			replica: r,
			bot:     service.NewBotService(int64(seed) + int64(id)), //nolint:gosec // bot randomness only
		}
	}

	return m, nil
}

func (that *match) finished() bool {
	return that.players[0].replica.Finished()
}

// turn lets the player holding the turn originate a move and delivers it to the other one.
func (that *match) turn(ctx context.Context) (*player, error) {
	mover, receiver := that.players[0], that.players[1]
	if !mover.replica.Snapshot().YourTurn {
		mover, receiver = receiver, mover
	}

	column, err := mover.bot.ChooseColumn(mover.replica.Snapshot())
	if err != nil {
		return nil, err
	}

	record, err := mover.replica.OriginateMove(ctx, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mover.name, err)
	}

	if err = receiver.replica.IngestMove(ctx, record); err != nil {
		return nil, fmt.Errorf("%s rejected move %d: %w", receiver.name, record.Sequence, err)
	}

	that.log = append(that.log, record)

	return mover, nil
}
