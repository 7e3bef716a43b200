package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid_ScoreColumns(t *testing.T) {
	place := func(t *testing.T, grid *Grid, column int, values ...int) {
		t.Helper()
		for _, value := range values {
			_, err := grid.PlaceAt(column, value)
			require.NoError(t, err)
		}
	}

	t.Run("Pair of fours", func(t *testing.T) {
		// Given: column 0 holding two fours
		grid := NewGrid(3, 3)
		place(t, grid, 0, 4, 4)

		// When: scoring the grid
		scores := grid.ScoreColumns()

		// Then: 4*4*2
		assert.Equal(t, []int{32, 0, 0}, scores)
	})

	t.Run("Three sixes", func(t *testing.T) {
		grid := NewGrid(3, 3)
		place(t, grid, 1, 6, 6, 6)

		assert.Equal(t, []int{0, 108, 0}, grid.ScoreColumns())
	})

	t.Run("Empty grid", func(t *testing.T) {
		grid := NewGrid(3, 3)

		assert.Equal(t, []int{0, 0, 0}, grid.ScoreColumns())
		assert.Zero(t, grid.Total())
	})

	t.Run("Mixed faces add up per face", func(t *testing.T) {
		// Given: column 2 holding 3, 5, 3
		grid := NewGrid(3, 3)
		place(t, grid, 2, 3, 5, 3)

		// Then: 3*3*2 + 5*5*1
		assert.Equal(t, []int{0, 0, 43}, grid.ScoreColumns())
		assert.Equal(t, 43, grid.Total())
	})
}
