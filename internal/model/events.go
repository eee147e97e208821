package model

// EventType labels an engine output event consumed by the transport layer
type EventType string

const (
	EventPhaseChanged   EventType = "phase_changed"
	EventScoreUpdate    EventType = "score_update"
	EventXPGained       EventType = "xp_gained"
	EventUnlockGranted  EventType = "unlock_granted"
	EventNotification   EventType = "notification"
	EventDareAssigned   EventType = "dare_assigned"
	EventDareResolved   EventType = "dare_resolved"
	EventTimerExtended  EventType = "timer_extended"
	EventGameOver       EventType = "game_over"
	EventCategoryReopen EventType = "category_reopened"
)

// Event is a side effect emitted by the engine. PlayerID targets a single
// player; empty means the whole room.
type Event struct {
	Type     EventType   `json:"type"`
	PlayerID string      `json:"playerId,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}

// PhaseChangedPayload accompanies EventPhaseChanged
type PhaseChangedPayload struct {
	Phase    Phase      `json:"phase"`
	Round    int        `json:"round"`
	Deadline int        `json:"deadlineSec,omitempty"`
	Dare     *Dare      `json:"dare,omitempty"`
	Chall    *Challenge `json:"challenge,omitempty"`

	// RoundXP accompanies the LEADERBOARD phase: XP earned this round
	// per player, for the end-of-round summary.
	RoundXP map[string]int `json:"roundXp,omitempty"`
}

// ScoreUpdatePayload accompanies EventScoreUpdate
type ScoreUpdatePayload struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// XPGainedPayload accompanies EventXPGained
type XPGainedPayload struct {
	PlayerID string   `json:"playerId"`
	Amount   int      `json:"amount"`
	Reason   XPReason `json:"reason"`
}

// UnlockGrantedPayload accompanies EventUnlockGranted
type UnlockGrantedPayload struct {
	PlayerID string `json:"playerId"`
	ItemID   string `json:"itemId"`
}

// NotificationPayload accompanies EventNotification
type NotificationPayload struct {
	Message string `json:"message"`
}

// GameOverPayload accompanies EventGameOver
type GameOverPayload struct {
	WinnerID string         `json:"winnerId"`
	Scores   map[string]int `json:"scores"`
}

// TimerExtendedPayload accompanies EventTimerExtended
type TimerExtendedPayload struct {
	Seconds int `json:"seconds"`
}
