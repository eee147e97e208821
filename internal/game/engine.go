package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"dareroom/internal/dare"
	"dareroom/internal/model"
)

// Default per-phase deadlines. Absent responses at the deadline are
// abstentions, not failures.
var defaultTimeouts = map[model.Phase]time.Duration{
	model.PhaseMinigame:       30 * time.Second,
	model.PhaseSuddenDeath:    10 * time.Second,
	model.PhaseTeamVote:       15 * time.Second,
	model.PhaseDareSubmission: 45 * time.Second,
	model.PhaseDareVoting:     20 * time.Second,
	model.PhaseDareProof:      60 * time.Second,
	model.PhaseProofVoting:    20 * time.Second,
	model.PhaseLeaderboard:    15 * time.Second,
}

const (
	proofPassBonus  = 10
	dareFailPenalty = 5
	extraTimeBonus  = 5 * time.Second
	defaultRounds   = 5
)

// Config fixes a session's rules at creation
type Config struct {
	RoomCode  string
	MaxRounds int
	DareMode  model.DareMode
	TeamMode  bool
	Timeouts  map[model.Phase]time.Duration
}

// Engine is the rules engine for one room: the phase state machine,
// round scoring, dare lifecycle, power-ups, and progression. It is not
// safe for concurrent use; the owning session actor serializes all calls.
type Engine struct {
	cfg      Config
	rng      *rand.Rand
	provider dare.TextProvider

	phase    model.Phase
	gameID   string
	players  map[string]*model.SessionPlayer
	order    []string
	roundNum int
	round    *model.Round
	events   []model.Event

	results     map[string]int
	suddenSet   map[string]bool
	teamVotes   map[string]string
	subs        []*model.DareSubmission
	submitted   map[string]bool
	dareVotes   map[string]string
	proofVotes  map[string]bool
	swapPending map[string]bool
	xpLedger    map[string]int
	winnerID    string
}

// NewEngine creates an engine in the LOBBY phase. The rng drives every
// uniform tie-break, so a fixed seed makes whole games reproducible.
func NewEngine(cfg Config, provider dare.TextProvider, rng *rand.Rand) *Engine {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaultRounds
	}
	if cfg.DareMode == "" {
		cfg.DareMode = model.DareModeAI
	}
	return &Engine{
		cfg:      cfg,
		rng:      rng,
		provider: provider,
		phase:    model.PhaseLobby,
		gameID:   uuid.New().String(),
		players:  make(map[string]*model.SessionPlayer),
	}
}

// Phase returns the current phase.
func (e *Engine) Phase() model.Phase { return e.phase }

// RoundNumber returns the current round, zero before the first game.
func (e *Engine) RoundNumber() int { return e.roundNum }

// GameID identifies the current game; "play again" starts a new one.
func (e *Engine) GameID() string { return e.gameID }

// WinnerID is set once the session reaches GAME_END.
func (e *Engine) WinnerID() string { return e.winnerID }

// CurrentDare returns the active dare, if any.
func (e *Engine) CurrentDare() *model.Dare {
	if e.round == nil {
		return nil
	}
	return e.round.Dare
}

// Player returns a session player by id.
func (e *Engine) Player(id string) (*model.SessionPlayer, bool) {
	p, ok := e.players[id]
	return p, ok
}

// Roster returns player ids in join order.
func (e *Engine) Roster() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Scores returns a snapshot of session scores.
func (e *Engine) Scores() map[string]int {
	scores := make(map[string]int, len(e.players))
	for id, p := range e.players {
		scores[id] = p.Score
	}
	return scores
}

// PhaseTimeout returns the deadline for a phase, or zero for untimed
// phases (LOBBY, GAME_END).
func (e *Engine) PhaseTimeout(phase model.Phase) time.Duration {
	if d, ok := e.cfg.Timeouts[phase]; ok {
		return d
	}
	return defaultTimeouts[phase]
}

// Drain returns and clears the events accumulated since the last drain.
func (e *Engine) Drain() []model.Event {
	out := e.events
	e.events = nil
	return out
}

func (e *Engine) emit(t model.EventType, playerID string, payload interface{}) {
	e.events = append(e.events, model.Event{Type: t, PlayerID: playerID, Payload: payload})
}

func (e *Engine) setPhase(phase model.Phase) {
	e.phase = phase
	payload := &model.PhaseChangedPayload{
		Phase:    phase,
		Round:    e.roundNum,
		Deadline: int(e.PhaseTimeout(phase) / time.Second),
	}
	if e.round != nil {
		payload.Dare = e.round.Dare
		if phase == model.PhaseMinigame || phase == model.PhaseSuddenDeath {
			payload.Chall = &e.round.Challenge
		}
		if phase == model.PhaseLeaderboard {
			payload.RoundXP = e.xpLedger
		}
	}
	e.emit(model.EventPhaseChanged, "", payload)
}

// AddPlayer seats a profile in the lobby. The first player added becomes
// the host unless isHost says otherwise.
func (e *Engine) AddPlayer(profile *model.PlayerProfile, isHost bool) error {
	if e.phase != model.PhaseLobby {
		return ErrInvalidPhase
	}
	if _, ok := e.players[profile.ID]; ok {
		return ErrDuplicateSubmission
	}
	e.players[profile.ID] = &model.SessionPlayer{
		Profile:  profile,
		PowerUps: make(map[model.PowerUpType]int),
		IsHost:   isHost,
	}
	e.order = append(e.order, profile.ID)
	return nil
}

// RemovePlayer drops a player mid-session. Outstanding responses from
// them become abstentions; an abandoned fan-in may complete early.
func (e *Engine) RemovePlayer(ctx context.Context, id string) error {
	if _, ok := e.players[id]; !ok {
		return ErrUnknownPlayer
	}
	delete(e.players, id)
	for i, pid := range e.order {
		if pid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.checkFanIn(ctx)
	return nil
}

// SelectCategory records a player's category pick. Valid in the lobby,
// or on the leaderboard for a player who just used SWAP_CATEGORY.
func (e *Engine) SelectCategory(playerID, category string) error {
	p, ok := e.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	switch e.phase {
	case model.PhaseLobby:
	case model.PhaseLeaderboard:
		if !e.swapPending[playerID] {
			return ErrInvalidPhase
		}
		delete(e.swapPending, playerID)
	default:
		return ErrInvalidPhase
	}
	p.Category = category
	return nil
}

// SaveCustomization updates a player's cosmetics before the game starts.
func (e *Engine) SaveCustomization(playerID string, c model.Customization) error {
	if e.phase != model.PhaseLobby {
		return ErrInvalidPhase
	}
	p, ok := e.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Profile.Customization = c
	return nil
}

// AssignTeam puts a player on a team. Host-only, lobby-only.
func (e *Engine) AssignTeam(hostID, playerID string, team model.Team) error {
	if e.phase != model.PhaseLobby {
		return ErrInvalidPhase
	}
	host, ok := e.players[hostID]
	if !ok || !host.IsHost {
		return ErrNotHost
	}
	p, ok := e.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Team = team
	return nil
}

// GrantPowerUp adds one held instance of a power-up type.
func (e *Engine) GrantPowerUp(playerID string, t model.PowerUpType) error {
	if !model.KnownPowerUp(t) {
		return ErrUnknownPowerUp
	}
	p, ok := e.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	p.PowerUps[t]++
	return nil
}

// StartGame begins round one. Host-only; requires at least two players,
// and full team assignment in team mode. Every player is dealt one
// random power-up for the game.
func (e *Engine) StartGame(hostID string) error {
	if e.phase != model.PhaseLobby {
		return ErrInvalidPhase
	}
	host, ok := e.players[hostID]
	if !ok || !host.IsHost {
		return ErrNotHost
	}
	if len(e.players) < 2 {
		return ErrNotEnoughPlayers
	}
	if e.cfg.TeamMode {
		for _, p := range e.players {
			if p.Team == model.TeamNone {
				return ErrTeamsUnassigned
			}
		}
	}

	deals := []model.PowerUpType{model.PowerUpSkipDare, model.PowerUpExtraTime, model.PowerUpSwapCategory}
	for _, id := range e.order {
		e.players[id].PowerUps[deals[e.rng.Intn(len(deals))]]++
	}

	e.startRound(1)
	return nil
}

func (e *Engine) startRound(n int) {
	e.roundNum = n
	e.round = &model.Round{Number: n, Challenge: newChallenge(e.rng)}
	e.results = make(map[string]int)
	e.suddenSet = nil
	e.teamVotes = nil
	e.subs = nil
	e.submitted = nil
	e.dareVotes = nil
	e.proofVotes = nil
	e.xpLedger = make(map[string]int)
	e.setPhase(model.PhaseMinigame)
}

// SubmitMiniGameResult records a player's raw score for the active
// mini-game (or sudden-death micro-contest). First submission wins; the
// phase closes once every expected player has reported.
func (e *Engine) SubmitMiniGameResult(ctx context.Context, playerID string, score int) error {
	if e.phase != model.PhaseMinigame && e.phase != model.PhaseSuddenDeath {
		return ErrInvalidPhase
	}
	if _, ok := e.players[playerID]; !ok {
		return ErrUnknownPlayer
	}
	if e.phase == model.PhaseSuddenDeath && !e.suddenSet[playerID] {
		return ErrInvalidPhase
	}
	if _, ok := e.results[playerID]; ok {
		return ErrDuplicateSubmission
	}
	e.results[playerID] = score
	e.checkFanIn(ctx)
	return nil
}

// VoteTeammate records a losing-team member's assignee vote.
func (e *Engine) VoteTeammate(ctx context.Context, voterID, targetID string) error {
	if e.phase != model.PhaseTeamVote {
		return ErrInvalidPhase
	}
	voter, ok := e.players[voterID]
	if !ok {
		return ErrUnknownPlayer
	}
	target, ok := e.players[targetID]
	if !ok {
		return ErrUnknownPlayer
	}
	if voter.Team != e.round.LosingTeam || target.Team != e.round.LosingTeam {
		return ErrInvalidPhase
	}
	if _, ok := e.teamVotes[voterID]; ok {
		return ErrDuplicateSubmission
	}
	e.teamVotes[voterID] = targetID
	e.checkFanIn(ctx)
	return nil
}

// SubmitDare records a community-mode dare proposal. At most one per
// player; only the first is kept.
func (e *Engine) SubmitDare(playerID, text string) error {
	if e.phase != model.PhaseDareSubmission {
		return ErrInvalidPhase
	}
	if _, ok := e.players[playerID]; !ok {
		return ErrUnknownPlayer
	}
	if playerID == e.round.Dare.AssigneeID {
		return ErrInvalidPhase
	}
	if e.submitted[playerID] {
		return ErrDuplicateSubmission
	}
	e.submitted[playerID] = true
	e.subs = append(e.subs, &model.DareSubmission{
		ID:          uuid.New().String(),
		SubmitterID: playerID,
		Text:        text,
	})
	if e.allSubmittersIn() {
		e.openDareVoting()
	}
	return nil
}

// VoteDare records a vote for a submitted dare. Voting one's own
// submission is allowed.
func (e *Engine) VoteDare(voterID, dareID string) error {
	if e.phase != model.PhaseDareVoting {
		return ErrInvalidPhase
	}
	if _, ok := e.players[voterID]; !ok {
		return ErrUnknownPlayer
	}
	if voterID == e.round.Dare.AssigneeID {
		return ErrInvalidPhase
	}
	if _, ok := e.dareVotes[voterID]; ok {
		return ErrDuplicateSubmission
	}
	found := false
	for _, sub := range e.subs {
		if sub.ID == dareID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownDare
	}
	e.dareVotes[voterID] = dareID
	if e.allDareVotesIn() {
		e.closeDareVoting()
	}
	return nil
}

// SubmitProof attaches the assignee's proof reference and opens the
// pass/fail vote.
func (e *Engine) SubmitProof(assigneeID, proofRef string) error {
	if e.phase != model.PhaseDareProof {
		return ErrInvalidPhase
	}
	if assigneeID != e.round.Dare.AssigneeID {
		return ErrNotAssignee
	}
	e.round.Dare.ProofRef = proofRef
	e.round.Dare.ReplayRef = proofRef
	e.proofVotes = make(map[string]bool)
	e.setPhase(model.PhaseProofVoting)
	return nil
}

// VoteProof records a non-assignee's pass/fail verdict on the dare.
func (e *Engine) VoteProof(voterID string, passed bool) error {
	if e.phase != model.PhaseProofVoting {
		return ErrInvalidPhase
	}
	if _, ok := e.players[voterID]; !ok {
		return ErrUnknownPlayer
	}
	if voterID == e.round.Dare.AssigneeID {
		return ErrInvalidPhase
	}
	if _, ok := e.proofVotes[voterID]; ok {
		return ErrDuplicateSubmission
	}
	e.proofVotes[voterID] = passed
	if len(e.proofVotes) >= e.nonAssigneeCount() {
		e.resolveDare()
	}
	return nil
}

// NextRound advances from the leaderboard to the next round or, past
// maxRounds, to game end. Host-only; the phase timeout does the same.
func (e *Engine) NextRound(hostID string) error {
	if e.phase != model.PhaseLeaderboard {
		return ErrInvalidPhase
	}
	host, ok := e.players[hostID]
	if !ok || !host.IsHost {
		return ErrNotHost
	}
	e.advanceFromLeaderboard()
	return nil
}

// PlayAgain resets the ended session back to the lobby with scores
// zeroed. Profiles and progression carry over.
func (e *Engine) PlayAgain(hostID string) error {
	if e.phase != model.PhaseGameEnd {
		return ErrInvalidPhase
	}
	host, ok := e.players[hostID]
	if !ok || !host.IsHost {
		return ErrNotHost
	}
	for _, p := range e.players {
		p.Score = 0
		p.ScoreRound = 0
		p.PowerUps = make(map[model.PowerUpType]int)
	}
	e.gameID = uuid.New().String()
	e.roundNum = 0
	e.round = nil
	e.winnerID = ""
	e.swapPending = nil
	e.setPhase(model.PhaseLobby)
	return nil
}

// Timeout closes the given phase with whatever responses arrived. A
// stale phase token (the timer raced a transition) is a no-op.
func (e *Engine) Timeout(ctx context.Context, phase model.Phase) error {
	if phase != e.phase {
		return nil
	}
	switch phase {
	case model.PhaseMinigame:
		e.closeMinigame(ctx)
	case model.PhaseSuddenDeath:
		e.closeSuddenDeath(ctx)
	case model.PhaseTeamVote:
		e.closeTeamVote(ctx)
	case model.PhaseDareSubmission:
		if len(e.subs) == 0 {
			// Nobody proposed anything; the assignee still owes a dare.
			e.round.Dare.Text = dare.Fallback(e.rng)
			e.setPhase(model.PhaseDareProof)
			e.emit(model.EventDareAssigned, "", e.round.Dare)
			return nil
		}
		e.openDareVoting()
	case model.PhaseDareVoting:
		e.closeDareVoting()
	case model.PhaseDareProof:
		e.proofVotes = make(map[string]bool)
		e.setPhase(model.PhaseProofVoting)
	case model.PhaseProofVoting:
		e.resolveDare()
	case model.PhaseLeaderboard:
		e.advanceFromLeaderboard()
	}
	return nil
}

// checkFanIn completes any fan-in phase whose expected set is satisfied,
// which can happen on submission or when a laggard leaves the room.
func (e *Engine) checkFanIn(ctx context.Context) {
	switch e.phase {
	case model.PhaseMinigame:
		if e.allResultsIn() {
			e.closeMinigame(ctx)
		}
	case model.PhaseSuddenDeath:
		if e.allSuddenResultsIn() {
			e.closeSuddenDeath(ctx)
		}
	case model.PhaseTeamVote:
		if e.allTeamVotesIn() {
			e.closeTeamVote(ctx)
		}
	case model.PhaseDareSubmission:
		if e.allSubmittersIn() {
			e.openDareVoting()
		}
	case model.PhaseDareVoting:
		if e.allDareVotesIn() {
			e.closeDareVoting()
		}
	case model.PhaseProofVoting:
		if e.round != nil && e.round.Dare != nil && len(e.proofVotes) >= e.nonAssigneeCount() {
			e.resolveDare()
		}
	}
}

func (e *Engine) allResultsIn() bool {
	for id := range e.players {
		if _, ok := e.results[id]; !ok {
			return false
		}
	}
	return true
}

func (e *Engine) allSuddenResultsIn() bool {
	for id := range e.suddenSet {
		if _, in := e.players[id]; !in {
			continue
		}
		if _, ok := e.results[id]; !ok {
			return false
		}
	}
	return true
}

func (e *Engine) allTeamVotesIn() bool {
	for id, p := range e.players {
		if p.Team != e.round.LosingTeam {
			continue
		}
		if _, ok := e.teamVotes[id]; !ok {
			return false
		}
	}
	return true
}

func (e *Engine) allSubmittersIn() bool {
	return len(e.submitted) >= e.nonAssigneeCount()
}

func (e *Engine) allDareVotesIn() bool {
	return len(e.dareVotes) >= e.nonAssigneeCount()
}

func (e *Engine) nonAssigneeCount() int {
	n := len(e.players)
	if e.round != nil && e.round.Dare != nil {
		if _, ok := e.players[e.round.Dare.AssigneeID]; ok {
			n--
		}
	}
	return n
}

// closeMinigame banks session points, then routes to the dare workflow,
// sudden death, team vote, or straight to the leaderboard. Raw scores
// bank directly when higher is better; otherwise each player banks
// their distance from the worst submission, so fewer moves still means
// more points.
func (e *Engine) closeMinigame(ctx context.Context) {
	higher := e.round.Challenge.Type.HigherIsBetter()
	if higher {
		for id, score := range e.results {
			e.addScore(id, score)
		}
	} else {
		worst := 0
		for _, score := range e.results {
			if score > worst {
				worst = score
			}
		}
		for id, score := range e.results {
			e.addScore(id, worst-score)
		}
	}

	if e.cfg.TeamMode {
		teamScores := make(map[model.Team][]int)
		for id, score := range e.results {
			p := e.players[id]
			teamScores[p.Team] = append(teamScores[p.Team], score)
		}
		losing := losingTeam(teamScores, higher, e.rng)
		if losing == model.TeamNone {
			e.enterLeaderboard()
			return
		}
		e.round.LosingTeam = losing
		for _, id := range e.order {
			if e.players[id].Team == losing {
				e.round.Losers = append(e.round.Losers, id)
			}
		}
		e.teamVotes = make(map[string]string)
		e.setPhase(model.PhaseTeamVote)
		return
	}

	losers := worstScorers(e.results, higher)
	switch len(losers) {
	case 0:
		// Everyone abstained; nothing to dare this round.
		e.enterLeaderboard()
	case 1:
		e.round.Losers = losers
		e.beginDare(ctx, losers[0])
	default:
		e.round.Losers = losers
		e.suddenSet = make(map[string]bool, len(losers))
		for _, id := range losers {
			e.suddenSet[id] = true
		}
		e.results = make(map[string]int)
		e.round.Challenge = suddenDeathChallenge()
		e.setPhase(model.PhaseSuddenDeath)
	}
}

// closeSuddenDeath must end with exactly one loser: a single
// micro-contest, then a uniform random pick among any remaining tie.
func (e *Engine) closeSuddenDeath(ctx context.Context) {
	contenders := make(map[string]int)
	for id, score := range e.results {
		if e.suddenSet[id] {
			contenders[id] = score
		}
	}

	var tied []string
	if len(contenders) > 0 {
		tied = worstScorers(contenders, e.round.Challenge.Type.HigherIsBetter())
	} else {
		for _, id := range e.order {
			if e.suddenSet[id] {
				tied = append(tied, id)
			}
		}
	}
	if len(tied) == 0 {
		e.enterLeaderboard()
		return
	}

	loser := tied[0]
	if len(tied) > 1 {
		loser = pickOne(tied, e.rng)
	}
	e.round.Losers = []string{loser}
	e.beginDare(ctx, loser)
}

func (e *Engine) closeTeamVote(ctx context.Context) {
	top := topVoted(e.teamVotes)
	if len(top) == 0 {
		// Whole team abstained; draw the assignee from the roster.
		top = e.round.Losers
	}
	assignee := top[0]
	if len(top) > 1 {
		assignee = pickOne(top, e.rng)
	}
	e.beginDare(ctx, assignee)
}

// beginDare creates the pending dare for the assignee and enters the
// mode-specific sub-flow.
func (e *Engine) beginDare(ctx context.Context, assigneeID string) {
	e.round.Dare = &model.Dare{
		ID:         uuid.New().String(),
		AssigneeID: assigneeID,
		Status:     model.DareStatusPending,
	}

	if e.cfg.DareMode == model.DareModeCommunity {
		e.submitted = make(map[string]bool)
		e.dareVotes = make(map[string]string)
		e.setPhase(model.PhaseDareSubmission)
		return
	}

	name := assigneeID
	if p, ok := e.players[assigneeID]; ok {
		name = p.Profile.DisplayName
	}
	text, err := e.provider.Generate(ctx, name, e.roomCategories())
	if err != nil {
		// Provider failure is recovered locally, never surfaced.
		text = dare.Fallback(e.rng)
	}
	e.round.Dare.Text = text
	e.setPhase(model.PhaseDareProof)
	e.emit(model.EventDareAssigned, "", e.round.Dare)
}

func (e *Engine) openDareVoting() {
	e.setPhase(model.PhaseDareVoting)
}

func (e *Engine) closeDareVoting() {
	tally := make(map[string]int)
	for _, dareID := range e.dareVotes {
		tally[dareID]++
	}

	best := -1
	var top []*model.DareSubmission
	for _, sub := range e.subs {
		sub.Votes = tally[sub.ID]
		if sub.Votes > best {
			best = sub.Votes
			top = []*model.DareSubmission{sub}
		} else if sub.Votes == best {
			top = append(top, sub)
		}
	}

	winner := top[0]
	if len(top) > 1 {
		winner = top[e.rng.Intn(len(top))]
	}

	e.round.Dare.Text = winner.Text
	e.round.Dare.SubmitterID = winner.SubmitterID
	e.subs = nil
	e.setPhase(model.PhaseDareProof)
	e.emit(model.EventDareAssigned, "", e.round.Dare)
}

// resolveDare settles the pass/fail vote. Simple majority of cast votes;
// an exact tie (including zero votes) fails, never passes.
func (e *Engine) resolveDare() {
	d := e.round.Dare
	pass, fail := 0, 0
	for _, v := range e.proofVotes {
		if v {
			pass++
		} else {
			fail++
		}
	}
	d.PassVotes = pass
	d.FailVotes = fail

	assignee, present := e.players[d.AssigneeID]
	if pass > fail {
		d.Status = model.DareStatusCompleted
		if present {
			e.grantXP(d.AssigneeID, model.XPAmountDareCompleted, model.XPDareCompleted)
			assignee.Profile.Stats.DaresCompleted++
			if unlock := refreshBadge(assignee.Profile, "dare_survivor", assignee.Profile.Stats.DaresCompleted); unlock != "" {
				e.emit(model.EventUnlockGranted, d.AssigneeID, &model.UnlockGrantedPayload{PlayerID: d.AssigneeID, ItemID: unlock})
			}
		}
		for voterID := range e.proofVotes {
			if _, ok := e.players[voterID]; ok {
				e.addScore(voterID, proofPassBonus)
			}
		}
		if d.ReplayRef != "" {
			e.emit(model.EventDareResolved, "", d)
		}
	} else {
		d.Status = model.DareStatusFailed
		if present {
			if assignee.Score < dareFailPenalty {
				e.addScore(d.AssigneeID, -assignee.Score)
			} else {
				e.addScore(d.AssigneeID, -dareFailPenalty)
			}
			assignee.Profile.Stats.DaresFailed++
		}
	}

	e.enterLeaderboard()
}

// enterLeaderboard grants the per-round participation XP and shows the
// intermission.
func (e *Engine) enterLeaderboard() {
	for _, id := range e.order {
		e.grantXP(id, model.XPAmountRoundPlayed, model.XPRoundPlayed)
	}
	e.setPhase(model.PhaseLeaderboard)
}

func (e *Engine) advanceFromLeaderboard() {
	e.swapPending = nil
	if e.roundNum >= e.cfg.MaxRounds {
		e.endGame()
		return
	}
	e.startRound(e.roundNum + 1)
}

// endGame computes the winner (max score; earliest-reached wins ties;
// uniform random if truly simultaneous) and applies game-won progression.
func (e *Engine) endGame() {
	best := -1
	bestRound := 0
	var tied []string
	for _, id := range e.order {
		p := e.players[id]
		switch {
		case p.Score > best, p.Score == best && p.ScoreRound < bestRound:
			best = p.Score
			bestRound = p.ScoreRound
			tied = []string{id}
		case p.Score == best && p.ScoreRound == bestRound:
			tied = append(tied, id)
		}
	}

	if len(tied) > 0 {
		e.winnerID = tied[0]
		if len(tied) > 1 {
			e.winnerID = pickOne(tied, e.rng)
		}
	}

	for _, id := range e.order {
		p := e.players[id]
		p.Profile.Stats.GamesPlayed++
		if id == e.winnerID {
			e.grantXP(id, model.XPAmountGameWon, model.XPGameWon)
			p.Profile.Stats.Wins++
			if unlock := refreshBadge(p.Profile, "champion", p.Profile.Stats.Wins); unlock != "" {
				e.emit(model.EventUnlockGranted, id, &model.UnlockGrantedPayload{PlayerID: id, ItemID: unlock})
			}
		}
	}

	e.setPhase(model.PhaseGameEnd)
	e.emit(model.EventGameOver, "", &model.GameOverPayload{WinnerID: e.winnerID, Scores: e.Scores()})
}

// UsePowerUp validates and applies a power-up. One held instance is
// consumed before the effect applies; a rejected use consumes nothing.
func (e *Engine) UsePowerUp(playerID string, t model.PowerUpType) error {
	p, ok := e.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if !model.KnownPowerUp(t) || p.PowerUps[t] == 0 {
		return ErrUnknownPowerUp
	}

	switch t {
	case model.PowerUpSkipDare:
		if e.phase != model.PhaseDareProof || e.round.Dare == nil || e.round.Dare.AssigneeID != playerID {
			return ErrInvalidPhase
		}
		e.consume(p, t)
		// Neither pass nor fail: no score change, straight to intermission.
		e.emit(model.EventNotification, "", &model.NotificationPayload{
			Message: fmt.Sprintf("%s skipped the dare", p.Profile.DisplayName),
		})
		e.enterLeaderboard()

	case model.PowerUpExtraTime:
		// Sudden death is still a timed contest, so the extension
		// applies there too.
		if e.phase != model.PhaseMinigame && e.phase != model.PhaseSuddenDeath {
			return ErrInvalidPhase
		}
		e.consume(p, t)
		e.emit(model.EventTimerExtended, "", &model.TimerExtendedPayload{Seconds: int(extraTimeBonus / time.Second)})

	case model.PowerUpSwapCategory:
		if e.phase != model.PhaseLeaderboard {
			return ErrInvalidPhase
		}
		e.consume(p, t)
		if e.swapPending == nil {
			e.swapPending = make(map[string]bool)
		}
		e.swapPending[playerID] = true
		p.Category = ""
		e.emit(model.EventCategoryReopen, playerID, nil)
	}
	return nil
}

func (e *Engine) consume(p *model.SessionPlayer, t model.PowerUpType) {
	p.PowerUps[t]--
	if p.PowerUps[t] == 0 {
		delete(p.PowerUps, t)
	}
}

// addScore adjusts a session score and records the round the new value
// was reached, for end-of-game tie-breaking. Scores never go negative.
func (e *Engine) addScore(id string, delta int) {
	p, ok := e.players[id]
	if !ok {
		return
	}
	p.Score += delta
	if p.Score < 0 {
		p.Score = 0
	}
	p.ScoreRound = e.roundNum
	e.emit(model.EventScoreUpdate, "", &model.ScoreUpdatePayload{PlayerID: id, Score: p.Score})
}

func (e *Engine) grantXP(id string, amount int, reason model.XPReason) {
	p, ok := e.players[id]
	if !ok {
		return
	}
	e.xpLedger[id] += amount
	_, _, granted := ApplyXP(p.Profile, amount)
	e.emit(model.EventXPGained, "", &model.XPGainedPayload{PlayerID: id, Amount: amount, Reason: reason})
	for _, item := range granted {
		e.emit(model.EventUnlockGranted, id, &model.UnlockGrantedPayload{PlayerID: id, ItemID: item})
	}
}

// roomCategories collects the distinct categories players picked, used
// to steer AI dare generation.
func (e *Engine) roomCategories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, id := range e.order {
		c := e.players[id].Category
		if c != "" && !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats
}
