package service

import (
	"errors"
	"math/rand"

	"github.com/rocketscienceinc/knucklebones-backend/internal/board"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

type BotService interface {
	ChooseColumn(snapshot entity.Snapshot) (int, error)
}

type botService struct {
	rng *rand.Rand
}

// NewBotService returns a bot that plays a uniformly random column with room left.
func NewBotService(seed int64) BotService {
	return &botService{
		rng: rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
	}
}

func (that *botService) ChooseColumn(snapshot entity.Snapshot) (int, error) {
	availableColumns := FreeColumns(snapshot.SelfGrid)
	if len(availableColumns) == 0 {
		return 0, ErrNoAvailableMoves
	}

	return availableColumns[that.rng.Intn(len(availableColumns))], nil
}

// FreeColumns lists the columns of a [row][column] grid that still have an empty cell.
func FreeColumns(grid [][]int) []int {
	if len(grid) == 0 {
		return nil
	}

	columns := make([]int, 0, len(grid[0]))
	for column := range grid[0] {
		for row := range grid {
			if grid[row][column] == board.EmptyCell {
				columns = append(columns, column)
				break
			}
		}
	}

	return columns
}
