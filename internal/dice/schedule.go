// Package dice provides the seeded dice schedule shared by both replicas of a game.
//
// The schedule is a pure function of the seed and the number of rolls: the seed feeds a
// BLAKE2Xb extendable-output function and every die is taken from the next four bytes of
// its output, so two schedules built from the same seed agree on every platform.
package dice

import (
	"encoding/binary"
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/xof/blake2xb"
)

const (
	Faces = 6

	// draws at or above this bound are discarded so every face is equally likely.
	drawLimit = (1 << 32) / Faces * Faces
)

// Schedule keeps exactly one value drawn ahead of the move that will consume it.
type Schedule struct {
	stream kyber.XOF
	next   int
}

// New seeds a schedule and draws the value the first move will use.
func New(seed uint64) *Schedule {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)

	schedule := &Schedule{stream: blake2xb.New(buf[:])}
	schedule.next = schedule.draw()

	return schedule
}

// Next returns the pending value and draws the following one.
func (that *Schedule) Next() int {
	value := that.next
	that.next = that.draw()

	return value
}

// Peek returns the value the next move will use without consuming it.
func (that *Schedule) Peek() int {
	return that.next
}

func (that *Schedule) draw() int {
	var buf [4]byte
	for {
		// the stream only errors past 2^32 output blocks, far beyond any game.
		if _, err := that.stream.Read(buf[:]); err != nil {
			panic(fmt.Errorf("dice stream exhausted: %w", err))
		}

		value := binary.LittleEndian.Uint32(buf[:])
		if uint64(value) < drawLimit {
			return int(value%Faces) + 1
		}
	}
}
