package model

import "github.com/golang-jwt/jwt/v5"

// HostClaims are JWT claims for a logged-in host
type HostClaims struct {
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

// PlayerClaims are room-scoped JWT claims for a joined player
type PlayerClaims struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	jwt.RegisteredClaims
}

// LoginRequest is the host login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned from host login
type LoginResponse struct {
	Token  string `json:"token"`
	HostID string `json:"hostId"`
}

// JoinResponse is returned when a player joins a room
type JoinResponse struct {
	PlayerID string    `json:"playerId"`
	Token    string    `json:"token"`
	RoomMeta *RoomMeta `json:"roomMeta"`
}
