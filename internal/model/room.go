package model

import "time"

type RoomStatus string

const (
	RoomStatusLobby  RoomStatus = "lobby"
	RoomStatusActive RoomStatus = "active"
	RoomStatusEnded  RoomStatus = "ended"
)

// RoomSettings are chosen by the host at room creation
type RoomSettings struct {
	DareMode   DareMode `json:"dareMode" bson:"dareMode"`
	MaxRounds  int      `json:"maxRounds" bson:"maxRounds"`
	TeamMode   bool     `json:"teamMode" bson:"teamMode"`
	MaxPlayers int      `json:"maxPlayers" bson:"maxPlayers"`

	// PhaseTimeoutsSec overrides per-phase deadlines; absent phases keep
	// their defaults.
	PhaseTimeoutsSec map[Phase]int `json:"phaseTimeoutsSec,omitempty" bson:"phaseTimeoutsSec,omitempty"`
}

// Room is the persistent record of a game room
type Room struct {
	Code      string       `json:"code" bson:"code"`
	HostID    string       `json:"hostId" bson:"hostId"`
	Status    RoomStatus   `json:"status" bson:"status"`
	Settings  RoomSettings `json:"settings" bson:"settings"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	StartedAt *time.Time   `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt   *time.Time   `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// RoomMeta is the Redis-cached view of a room
type RoomMeta struct {
	HostID    string       `json:"hostId"`
	Status    RoomStatus   `json:"status"`
	Settings  RoomSettings `json:"settings"`
	CreatedAt time.Time    `json:"createdAt"`
}
