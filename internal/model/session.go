package model

// Phase is the session state machine's current state
type Phase string

const (
	PhaseLobby          Phase = "LOBBY"
	PhaseMinigame       Phase = "MINIGAME"
	PhaseSuddenDeath    Phase = "SUDDEN_DEATH"
	PhaseTeamVote       Phase = "TEAM_VOTE"
	PhaseDareSubmission Phase = "DARE_SUBMISSION"
	PhaseDareVoting     Phase = "DARE_VOTING"
	PhaseDareProof      Phase = "DARE_PROOF"
	PhaseProofVoting    Phase = "PROOF_VOTING"
	PhaseLeaderboard    Phase = "LEADERBOARD"
	PhaseGameEnd        Phase = "GAME_END"
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// XPReason labels why XP was granted
type XPReason string

const (
	XPRoundPlayed   XPReason = "round_played"
	XPDareCompleted XPReason = "dare_completed"
	XPGameWon       XPReason = "game_won"
	XPReplayVoted   XPReason = "replay_voted"
)

// Fixed XP amounts per reason
const (
	XPAmountRoundPlayed   = 25
	XPAmountDareCompleted = 75
	XPAmountGameWon       = 150
	XPAmountReplayVoted   = 10
)
