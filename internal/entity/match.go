package entity

import "time"

const (
	ResultWin = "win"
	ResultTie = "tie"
)

// GameSubmission is a finished game sent by one of the players for archiving.
// Keys stay in their base64 form, they name the players in the archive and the leaderboard.
type GameSubmission struct {
	Seed             uint64       `json:"seed"`
	IssuedAt         uint64       `json:"issued_at"`
	StartingPlayerID int          `json:"starting_player_id"`
	StartingKey      string       `json:"starting_key"`
	SecondKey        string       `json:"second_key"`
	SetupSignature   Binary       `json:"setup_signature"`
	Moves            []MoveRecord `json:"moves"`
}

// Setup returns the GameSetup the submission claims to have been played with.
func (that *GameSubmission) Setup(startingKey, secondKey []byte) GameSetup {
	return GameSetup{
		SharedSeed:       that.Seed,
		StartingPlayerID: that.StartingPlayerID,
		IssuedAt:         that.IssuedAt,
		StartingKey:      startingKey,
		SecondKey:        secondKey,
		SetupSignature:   that.SetupSignature,
	}
}

type MatchResult struct {
	ID             string    `json:"id"`
	Seed           uint64    `json:"seed"`
	IssuedAt       uint64    `json:"issued_at"`
	StartingKey    string    `json:"starting_key"`
	SecondKey      string    `json:"second_key"`
	WinnerKey      string    `json:"winner_key,omitempty"`
	Result         string    `json:"result"`
	StartingPoints int       `json:"starting_points"`
	SecondPoints   int       `json:"second_points"`
	Moves          int       `json:"moves"`
	CreatedAt      time.Time `json:"created_at"`
}

func (that *MatchResult) IsTie() bool {
	return that.Result == ResultTie
}

type LeaderboardEntry struct {
	Key    string `json:"key"`
	Points int    `json:"points"`
	Games  int    `json:"games"`
	Wins   int    `json:"wins"`
}
