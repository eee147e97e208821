package model

import "time"

// DareMode selects how dares are produced, fixed per session by the host
type DareMode string

const (
	DareModeAI        DareMode = "AI"
	DareModeCommunity DareMode = "COMMUNITY"
)

// DareStatus is the lifecycle state of a dare
type DareStatus string

const (
	DareStatusPending   DareStatus = "pending"
	DareStatusCompleted DareStatus = "completed"
	DareStatusFailed    DareStatus = "failed"
)

// Dare is the obligation assigned to a round's loser. It always has
// exactly one assignee, drawn from the computed loser set.
type Dare struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	AssigneeID  string     `json:"assigneeId"`
	Status      DareStatus `json:"status"`
	SubmitterID string     `json:"submitterId,omitempty"`
	PassVotes   int        `json:"passVotes"`
	FailVotes   int        `json:"failVotes"`
	ProofRef    string     `json:"proofRef,omitempty"`
	ReplayRef   string     `json:"replayRef,omitempty"`
}

// DareSubmission is a community-mode dare proposal. At most one per
// submitter per round; the first submission wins, later ones are dropped.
type DareSubmission struct {
	ID          string `json:"id"`
	SubmitterID string `json:"submitterId"`
	Text        string `json:"text"`
	Votes       int    `json:"votes"`
}

// ReplayEntry is an archived completed dare with a replay reference,
// listed most-recent-first.
type ReplayEntry struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	RoomCode   string    `json:"roomCode" bson:"roomCode"`
	DareID     string    `json:"dareId" bson:"dareId"`
	DareText   string    `json:"dareText" bson:"dareText"`
	AssigneeID string    `json:"assigneeId" bson:"assigneeId"`
	ReplayRef  string    `json:"replayRef" bson:"replayRef"`
	Votes      int       `json:"votes" bson:"votes"`
	ArchivedAt time.Time `json:"archivedAt" bson:"archivedAt"`
}
