// Package board implements one player's knucklebones grid: column placement, the
// displacement rule applied to the opposing grid, and column scoring.
package board

import (
	"fmt"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
)

const (
	EmptyCell = 0

	DefaultWidth  = 3
	DefaultHeight = 3

	MinFace = 1
	MaxFace = 6
)

// Displacement selects how many matching dice a placement knocks out of the opposing column.
type Displacement string

const (
	DisplaceAll Displacement = "all"
	DisplaceOne Displacement = "one"
)

// Grid is width × height cells stored row by row; row 0 is filled first.
type Grid struct {
	width  int
	height int
	cells  []int
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
	}
}

// At returns the value in (column, row).
func (that *Grid) At(column, row int) int {
	return that.cells[row*that.width+column]
}

// LandingRow returns the row a die placed in column would land on.
func (that *Grid) LandingRow(column int) (int, error) {
	if column < 0 || column >= that.width {
		return 0, fmt.Errorf("%w: column %d", apperror.ErrInvalidColumn, column)
	}

	for row := 0; row < that.height; row++ {
		if that.At(column, row) == EmptyCell {
			return row, nil
		}
	}

	return 0, fmt.Errorf("%w: column %d", apperror.ErrBoardFull, column)
}

// PlaceAt writes value into the first empty cell of column and returns its row.
// A full column is rejected, nothing is overwritten.
func (that *Grid) PlaceAt(column, value int) (int, error) {
	if value < MinFace || value > MaxFace {
		return 0, fmt.Errorf("%w: %d", apperror.ErrInvalidDie, value)
	}

	row, err := that.LandingRow(column)
	if err != nil {
		return 0, err
	}

	that.cells[row*that.width+column] = value

	return row, nil
}

// RemoveMatching clears dice equal to value from column and returns how many were removed.
func (that *Grid) RemoveMatching(column, value int, rule Displacement) int {
	if column < 0 || column >= that.width || value == EmptyCell {
		return 0
	}

	removed := 0
	for row := 0; row < that.height; row++ {
		idx := row*that.width + column
		if that.cells[idx] != value {
			continue
		}

		that.cells[idx] = EmptyCell
		removed++

		if rule == DisplaceOne {
			break
		}
	}

	return removed
}

// IsFull reports whether no empty cell is left.
func (that *Grid) IsFull() bool {
	for _, cell := range that.cells {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Cells returns a copy indexed [row][column].
func (that *Grid) Cells() [][]int {
	rows := make([][]int, that.height)
	for row := range rows {
		rows[row] = make([]int, that.width)
		copy(rows[row], that.cells[row*that.width:(row+1)*that.width])
	}

	return rows
}

// ParseDisplacement maps a config value onto a rule.
func ParseDisplacement(value string) (Displacement, error) {
	switch Displacement(value) {
	case DisplaceAll, "":
		return DisplaceAll, nil
	case DisplaceOne:
		return DisplaceOne, nil
	default:
		return "", fmt.Errorf("unknown displacement rule %q", value)
	}
}
