package entity

// MoveRecord is one signed dice placement as it travels between replicas.
// Signature covers "sequence:timestamp:column".
type MoveRecord struct {
	Sequence  uint32 `json:"sequence"`
	Timestamp uint64 `json:"timestamp"`
	Column    uint8  `json:"column"`
	Signature Binary `json:"signature"`
}

// GameSetup is issued once per game by the setup service and consumed verbatim by both replicas.
// The signature binds the seed and issue time to the two players' keys, starting player first.
type GameSetup struct {
	SharedSeed       uint64 `json:"shared_seed"`
	StartingPlayerID int    `json:"starting_player_id"`
	IssuedAt         uint64 `json:"issued_at"`
	StartingKey      Binary `json:"starting_key"`
	SecondKey        Binary `json:"second_key"`
	SetupSignature   Binary `json:"setup_signature"`
}
