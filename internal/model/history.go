package model

import "time"

// GameRecord is an append-only per-player history entry written when a
// game reaches its end.
type GameRecord struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	GameID      string    `json:"gameId" bson:"gameId"`
	RoomCode    string    `json:"roomCode" bson:"roomCode"`
	PlayerID    string    `json:"playerId" bson:"playerId"`
	Roster      []string  `json:"roster" bson:"roster"`
	WinnerID    string    `json:"winnerId" bson:"winnerId"`
	FinalScore  int       `json:"finalScore" bson:"finalScore"`
	LastDare    string    `json:"lastDare,omitempty" bson:"lastDare,omitempty"`
	DareOutcome string    `json:"dareOutcome,omitempty" bson:"dareOutcome,omitempty"`
	PlayedAt    time.Time `json:"playedAt" bson:"playedAt"`
}
