package model

import "time"

// Customization holds a profile's cosmetic choices
type Customization struct {
	AvatarID string `json:"avatarId" bson:"avatarId"`
	FrameID  string `json:"frameId" bson:"frameId"`
	TitleID  string `json:"titleId,omitempty" bson:"titleId,omitempty"`
}

// PlayerStats are cumulative, persistent counters
type PlayerStats struct {
	GamesPlayed    int `json:"gamesPlayed" bson:"gamesPlayed"`
	Wins           int `json:"wins" bson:"wins"`
	DaresCompleted int `json:"daresCompleted" bson:"daresCompleted"`
	DaresFailed    int `json:"daresFailed" bson:"daresFailed"`
	ReplayVotes    int `json:"replayVotes" bson:"replayVotes"`
}

// PlayerProfile is the persistent identity of a player. It outlives any
// single room and is only mutated through progression at round/game
// boundaries.
type PlayerProfile struct {
	ID            string         `json:"id" bson:"_id,omitempty"`
	DisplayName   string         `json:"displayName" bson:"displayName"`
	Customization Customization  `json:"customization" bson:"customization"`
	Stats         PlayerStats    `json:"stats" bson:"stats"`
	TotalXP       int            `json:"totalXp" bson:"totalXp"`
	Unlocks       []string       `json:"unlocks" bson:"unlocks"`
	BadgeTiers    map[string]int `json:"badgeTiers" bson:"badgeTiers"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
}

// HasUnlock reports whether the profile already owns an unlock id.
func (p *PlayerProfile) HasUnlock(id string) bool {
	for _, u := range p.Unlocks {
		if u == id {
			return true
		}
	}
	return false
}

// Team labels for team mode. At most two teams per session.
type Team string

const (
	TeamNone   Team = ""
	TeamBlue   Team = "blue"
	TeamOrange Team = "orange"
)

// SessionPlayer is a profile's transient, room-scoped state. Score resets
// to zero on every new game; power-ups are a multiset keyed by type.
type SessionPlayer struct {
	Profile  *PlayerProfile      `json:"profile"`
	Score    int                 `json:"score"`
	PowerUps map[PowerUpType]int `json:"powerUps"`
	Team     Team                `json:"team,omitempty"`
	Category string              `json:"category,omitempty"`
	IsHost   bool                `json:"isHost"`

	// ScoreRound is the round number at which the current score was first
	// reached, used for end-of-game tie-breaking.
	ScoreRound int `json:"-"`
}
