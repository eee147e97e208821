package model

// ChallengeType identifies a mini-game. Each type carries its own payload
// variant and scoring polarity.
type ChallengeType string

const (
	ChallengeQuiz        ChallengeType = "QUIZ"
	ChallengeTapRace     ChallengeType = "TAP_RACE"
	ChallengeMemoryMatch ChallengeType = "MEMORY_MATCH"
)

// HigherIsBetter returns the scoring polarity for a challenge type.
// MEMORY_MATCH scores are moves used, so lower wins.
func (t ChallengeType) HigherIsBetter() bool {
	return t != ChallengeMemoryMatch
}

// QuizPayload is the content of a QUIZ challenge
type QuizPayload struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
}

// TapRacePayload is the content of a TAP_RACE challenge
type TapRacePayload struct {
	DurationSec int `json:"durationSec"`
}

// MemoryMatchPayload is the content of a MEMORY_MATCH challenge
type MemoryMatchPayload struct {
	Pairs int `json:"pairs"`
}

// Challenge is a tagged union: exactly one payload pointer matching Type
// is populated.
type Challenge struct {
	Type        ChallengeType       `json:"type"`
	Quiz        *QuizPayload        `json:"quiz,omitempty"`
	TapRace     *TapRacePayload     `json:"tapRace,omitempty"`
	MemoryMatch *MemoryMatchPayload `json:"memoryMatch,omitempty"`
}

// Round is the session's current round. Exactly one round is current at
// any time; superseded by the next round or by game end.
type Round struct {
	Number     int       `json:"number"`
	Challenge  Challenge `json:"challenge"`
	Losers     []string  `json:"losers,omitempty"`
	LosingTeam Team      `json:"losingTeam,omitempty"`
	Dare       *Dare     `json:"dare,omitempty"`
}
