package game

import "errors"

// Engine rejections are local and non-fatal: the session stays in its
// current phase and the offending intent is dropped with one of these.
var (
	ErrInvalidPhase        = errors.New("intent not valid in current phase")
	ErrDuplicateSubmission = errors.New("already submitted or voted this phase")
	ErrUnknownPlayer       = errors.New("player not in session")
	ErrUnknownPowerUp      = errors.New("power-up not held")
	ErrUnknownDare         = errors.New("dare submission not found")
	ErrNotHost             = errors.New("only the host may do this")
	ErrNotAssignee         = errors.New("only the dare assignee may do this")
	ErrNotEnoughPlayers    = errors.New("at least two players required")
	ErrTeamsUnassigned     = errors.New("team mode requires every player on a team")
)
