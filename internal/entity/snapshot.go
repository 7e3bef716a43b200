package entity

const (
	WinnerSelf     = "self"
	WinnerOpponent = "opponent"
	WinnerTie      = "-"
)

// Snapshot is a read-only copy of a replica's state.
// Grids are indexed [row][column], row 0 being the first row filled.
type Snapshot struct {
	SelfGrid      [][]int      `json:"self_grid"`
	OpponentGrid  [][]int      `json:"opponent_grid"`
	SelfScore     []int        `json:"self_score"`
	OpponentScore []int        `json:"opponent_score"`
	History       []MoveRecord `json:"history"`
	Sequence      uint32       `json:"sequence"`
	NextDiceValue int          `json:"next_dice_value"`
	YourTurn      bool         `json:"your_turn"`
	Outcome       Outcome      `json:"outcome"`
}

type Outcome struct {
	Finished      bool   `json:"finished"`
	Winner        string `json:"winner,omitempty"`
	SelfTotal     int    `json:"self_total"`
	OpponentTotal int    `json:"opponent_total"`
}

func (that Outcome) IsTie() bool {
	return that.Winner == WinnerTie
}
