package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"dareroom/internal/model"
)

type stubProvider struct {
	text string
	err  error
}

func (s stubProvider) Generate(ctx context.Context, loserName string, categories []string) (string, error) {
	return s.text, s.err
}

func newTestEngine(t *testing.T, cfg Config, seed int64, playerIDs ...string) *Engine {
	t.Helper()
	cfg.RoomCode = "TEST42"
	eng := NewEngine(cfg, stubProvider{text: "do a cartwheel"}, rand.New(rand.NewSource(seed)))
	for i, id := range playerIDs {
		profile := &model.PlayerProfile{ID: id, DisplayName: "Player " + id, BadgeTiers: map[string]int{}}
		if err := eng.AddPlayer(profile, i == 0); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	return eng
}

func setChallenge(eng *Engine, c model.Challenge) {
	eng.round.Challenge = c
}

func tapRace() model.Challenge {
	return model.Challenge{Type: model.ChallengeTapRace, TapRace: &model.TapRacePayload{DurationSec: 10}}
}

func memoryMatch() model.Challenge {
	return model.Challenge{Type: model.ChallengeMemoryMatch, MemoryMatch: &model.MemoryMatchPayload{Pairs: 8}}
}

func drainTypes(eng *Engine) map[model.EventType]int {
	counts := make(map[model.EventType]int)
	for _, ev := range eng.Drain() {
		counts[ev.Type]++
	}
	return counts
}

// TestCommunityModeFullRound runs the canonical individual-mode scenario:
// unique loser, community submissions, dare vote, proof vote with one
// abstention, and the resulting scores.
func TestCommunityModeFullRound(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5, DareMode: model.DareModeCommunity}, 1, "A", "B", "C", "D")

	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())

	for id, score := range map[string]int{"A": 10, "B": 10, "C": 3, "D": 7} {
		if err := eng.SubmitMiniGameResult(ctx, id, score); err != nil {
			t.Fatalf("SubmitMiniGameResult(%s): %v", id, err)
		}
	}

	if eng.Phase() != model.PhaseDareSubmission {
		t.Fatalf("phase = %s, want DARE_SUBMISSION", eng.Phase())
	}
	d := eng.CurrentDare()
	if d == nil || d.AssigneeID != "C" {
		t.Fatalf("dare assignee = %+v, want C", d)
	}

	if err := eng.SubmitDare("C", "nope"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("assignee submission error = %v, want ErrInvalidPhase", err)
	}
	if err := eng.SubmitDare("A", "sing a song"); err != nil {
		t.Fatalf("SubmitDare(A): %v", err)
	}
	if err := eng.SubmitDare("A", "second try"); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("duplicate submission error = %v, want ErrDuplicateSubmission", err)
	}
	if err := eng.SubmitDare("B", "dance"); err != nil {
		t.Fatalf("SubmitDare(B): %v", err)
	}
	if err := eng.SubmitDare("D", "handstand"); err != nil {
		t.Fatalf("SubmitDare(D): %v", err)
	}

	if eng.Phase() != model.PhaseDareVoting {
		t.Fatalf("phase = %s, want DARE_VOTING", eng.Phase())
	}

	var aSub, bSub string
	for _, sub := range eng.subs {
		switch sub.SubmitterID {
		case "A":
			aSub = sub.ID
		case "B":
			bSub = sub.ID
		}
	}
	// Two votes for A's dare, one for B's.
	if err := eng.VoteDare("B", aSub); err != nil {
		t.Fatalf("VoteDare(B): %v", err)
	}
	if err := eng.VoteDare("D", aSub); err != nil {
		t.Fatalf("VoteDare(D): %v", err)
	}
	if err := eng.VoteDare("A", bSub); err != nil {
		t.Fatalf("VoteDare(A): %v", err)
	}

	if eng.Phase() != model.PhaseDareProof {
		t.Fatalf("phase = %s, want DARE_PROOF", eng.Phase())
	}
	if got := eng.CurrentDare(); got.Text != "sing a song" || got.SubmitterID != "A" {
		t.Fatalf("winning dare = %+v, want A's submission", got)
	}

	if err := eng.SubmitProof("C", "replay://r1"); err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	if err := eng.VoteProof("B", true); err != nil {
		t.Fatalf("VoteProof(B): %v", err)
	}
	if err := eng.VoteProof("D", true); err != nil {
		t.Fatalf("VoteProof(D): %v", err)
	}
	// A abstained; close the vote by deadline.
	if err := eng.Timeout(ctx, model.PhaseProofVoting); err != nil {
		t.Fatalf("Timeout: %v", err)
	}

	if eng.CurrentDare().Status != model.DareStatusCompleted {
		t.Fatalf("dare status = %s, want completed", eng.CurrentDare().Status)
	}
	want := map[string]int{"A": 10, "B": 20, "C": 3, "D": 17}
	for id, score := range eng.Scores() {
		if score != want[id] {
			t.Fatalf("score[%s] = %d, want %d", id, score, want[id])
		}
	}

	p, _ := eng.Player("C")
	if p.Profile.Stats.DaresCompleted != 1 {
		t.Fatalf("C daresCompleted = %d, want 1", p.Profile.Stats.DaresCompleted)
	}
	if p.Profile.BadgeTiers["dare_survivor"] != 1 {
		t.Fatalf("C dare_survivor tier = %d, want 1", p.Profile.BadgeTiers["dare_survivor"])
	}

	if eng.Phase() != model.PhaseLeaderboard {
		t.Fatalf("phase = %s, want LEADERBOARD", eng.Phase())
	}
	if err := eng.NextRound("A"); err != nil {
		t.Fatalf("NextRound: %v", err)
	}
	if eng.Phase() != model.PhaseMinigame || eng.RoundNumber() != 2 {
		t.Fatalf("phase=%s round=%d, want MINIGAME round 2", eng.Phase(), eng.RoundNumber())
	}
}

// TestProofVoteTieFails ensures an exact pass/fail tie resolves to
// failed, never completed.
func TestProofVoteTieFails(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B", "C", "D")
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())
	for id, score := range map[string]int{"A": 9, "B": 8, "C": 3, "D": 7} {
		if err := eng.SubmitMiniGameResult(ctx, id, score); err != nil {
			t.Fatalf("SubmitMiniGameResult(%s): %v", id, err)
		}
	}

	if eng.Phase() != model.PhaseDareProof {
		t.Fatalf("phase = %s, want DARE_PROOF (AI mode)", eng.Phase())
	}
	if err := eng.SubmitProof("C", ""); err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	if err := eng.VoteProof("A", true); err != nil {
		t.Fatalf("VoteProof(A): %v", err)
	}
	if err := eng.VoteProof("B", false); err != nil {
		t.Fatalf("VoteProof(B): %v", err)
	}
	if err := eng.Timeout(ctx, model.PhaseProofVoting); err != nil {
		t.Fatalf("Timeout: %v", err)
	}

	d := eng.CurrentDare()
	if d.Status != model.DareStatusFailed {
		t.Fatalf("tied vote resolved to %s, want failed", d.Status)
	}
	p, _ := eng.Player("C")
	if p.Score != 0 {
		t.Fatalf("C score after failed dare = %d, want max(0, 3-5) = 0", p.Score)
	}
}

// TestMemoryMatchBanksInvertedPoints ensures a lower-is-better round
// banks each player's distance from the worst submission, so fewer
// moves still earns more points and the highest mover loses the round.
func TestMemoryMatchBanksInvertedPoints(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B", "C")
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, memoryMatch())
	for id, moves := range map[string]int{"A": 5, "B": 12, "C": 8} {
		if err := eng.SubmitMiniGameResult(ctx, id, moves); err != nil {
			t.Fatalf("SubmitMiniGameResult(%s): %v", id, err)
		}
	}

	scores := eng.Scores()
	for id, want := range map[string]int{"A": 7, "B": 0, "C": 4} {
		if scores[id] != want {
			t.Fatalf("%s banked %d points, want %d", id, scores[id], want)
		}
	}
	d := eng.CurrentDare()
	if d == nil || d.AssigneeID != "B" {
		t.Fatalf("dare assignee = %+v, want B (most moves)", d)
	}
}

// TestSuddenDeathResolvesTiedLosers ensures tied losers enter sudden
// death and the micro-contest yields exactly one loser from the tied set.
func TestSuddenDeathResolvesTiedLosers(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B", "C")
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())
	for id, score := range map[string]int{"A": 9, "B": 2, "C": 2} {
		if err := eng.SubmitMiniGameResult(ctx, id, score); err != nil {
			t.Fatalf("SubmitMiniGameResult(%s): %v", id, err)
		}
	}

	if eng.Phase() != model.PhaseSuddenDeath {
		t.Fatalf("phase = %s, want SUDDEN_DEATH", eng.Phase())
	}
	if err := eng.SubmitMiniGameResult(ctx, "A", 10); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("non-tied player joined sudden death: err = %v", err)
	}

	if err := eng.SubmitMiniGameResult(ctx, "B", 5); err != nil {
		t.Fatalf("sudden death B: %v", err)
	}
	if err := eng.SubmitMiniGameResult(ctx, "C", 7); err != nil {
		t.Fatalf("sudden death C: %v", err)
	}

	d := eng.CurrentDare()
	if d == nil || d.AssigneeID != "B" {
		t.Fatalf("sudden death loser = %+v, want B", d)
	}
}

// TestSuddenDeathDoubleTieUsesRandomPick ensures a still-tied
// micro-contest falls back to a uniform pick from the tied set, and that
// the pick is stable under a fixed seed.
func TestSuddenDeathDoubleTieUsesRandomPick(t *testing.T) {
	ctx := context.Background()

	run := func(seed int64) string {
		eng := newTestEngine(t, Config{MaxRounds: 5}, seed, "A", "B", "C")
		if err := eng.StartGame("A"); err != nil {
			t.Fatalf("StartGame: %v", err)
		}
		setChallenge(eng, tapRace())
		for id, score := range map[string]int{"A": 9, "B": 2, "C": 2} {
			if err := eng.SubmitMiniGameResult(ctx, id, score); err != nil {
				t.Fatalf("SubmitMiniGameResult(%s): %v", id, err)
			}
		}
		for _, id := range []string{"B", "C"} {
			if err := eng.SubmitMiniGameResult(ctx, id, 4); err != nil {
				t.Fatalf("sudden death %s: %v", id, err)
			}
		}
		return eng.CurrentDare().AssigneeID
	}

	first := run(99)
	second := run(99)
	if first != second {
		t.Fatalf("same seed picked different losers: %s vs %s", first, second)
	}
	if first != "B" && first != "C" {
		t.Fatalf("loser %s not drawn from the tied set", first)
	}
}

// TestTeamModeRound runs the team-mode scenario: worse mean loses, the
// losing team votes its assignee.
func TestTeamModeRound(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5, TeamMode: true}, 1, "p1", "p2", "p3")
	for id, team := range map[string]model.Team{"p1": model.TeamBlue, "p2": model.TeamBlue, "p3": model.TeamOrange} {
		if err := eng.AssignTeam("p1", id, team); err != nil {
			t.Fatalf("AssignTeam(%s): %v", id, err)
		}
	}
	if err := eng.StartGame("p1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())

	for id, score := range map[string]int{"p1": 5, "p2": 7, "p3": 9} {
		if err := eng.SubmitMiniGameResult(ctx, id, score); err != nil {
			t.Fatalf("SubmitMiniGameResult(%s): %v", id, err)
		}
	}

	if eng.Phase() != model.PhaseTeamVote {
		t.Fatalf("phase = %s, want TEAM_VOTE", eng.Phase())
	}
	if err := eng.VoteTeammate(ctx, "p3", "p1"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("winning-team vote error = %v, want ErrInvalidPhase", err)
	}
	if err := eng.VoteTeammate(ctx, "p1", "p2"); err != nil {
		t.Fatalf("VoteTeammate(p1): %v", err)
	}
	if err := eng.VoteTeammate(ctx, "p2", "p2"); err != nil {
		t.Fatalf("VoteTeammate(p2): %v", err)
	}

	d := eng.CurrentDare()
	if d == nil || d.AssigneeID != "p2" {
		t.Fatalf("assignee = %+v, want p2", d)
	}
}

// TestProviderFailureFallsBack ensures AI-mode generation recovers
// locally and never leaves the assignee without a dare.
func TestProviderFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B")
	eng.provider = stubProvider{err: errors.New("network down")}
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())
	if err := eng.SubmitMiniGameResult(ctx, "A", 5); err != nil {
		t.Fatalf("SubmitMiniGameResult(A): %v", err)
	}
	if err := eng.SubmitMiniGameResult(ctx, "B", 2); err != nil {
		t.Fatalf("SubmitMiniGameResult(B): %v", err)
	}

	d := eng.CurrentDare()
	if d == nil || d.Text == "" {
		t.Fatalf("no fallback dare after provider failure: %+v", d)
	}
}

// TestIntentsRejectedOutsidePhase ensures out-of-phase intents are
// dropped with an explicit error and leave state untouched.
func TestIntentsRejectedOutsidePhase(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B")

	if err := eng.SubmitMiniGameResult(ctx, "A", 5); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("minigame result in lobby: err = %v, want ErrInvalidPhase", err)
	}
	if err := eng.VoteProof("A", true); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("proof vote in lobby: err = %v, want ErrInvalidPhase", err)
	}
	if err := eng.StartGame("B"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("non-host start: err = %v, want ErrNotHost", err)
	}
	if err := eng.SubmitMiniGameResult(ctx, "Z", 5); !errors.Is(err, ErrInvalidPhase) {
		// Phase check fires first in the lobby; unknown player is checked in-phase.
		t.Fatalf("unknown player: err = %v", err)
	}
	if eng.Phase() != model.PhaseLobby {
		t.Fatalf("rejections moved the phase to %s", eng.Phase())
	}
}

// TestGameEndAndPlayAgain drives a one-round game to GAME_END, checks
// winner progression, then resets via play-again.
func TestGameEndAndPlayAgain(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 1}, 1, "A", "B")
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())
	if err := eng.SubmitMiniGameResult(ctx, "A", 8); err != nil {
		t.Fatalf("SubmitMiniGameResult(A): %v", err)
	}
	if err := eng.SubmitMiniGameResult(ctx, "B", 3); err != nil {
		t.Fatalf("SubmitMiniGameResult(B): %v", err)
	}
	// B owes a dare; nobody votes, deadline passes, tie-at-zero fails.
	if err := eng.Timeout(ctx, model.PhaseDareProof); err != nil {
		t.Fatalf("Timeout(proof): %v", err)
	}
	if err := eng.Timeout(ctx, model.PhaseProofVoting); err != nil {
		t.Fatalf("Timeout(proof voting): %v", err)
	}
	if err := eng.Timeout(ctx, model.PhaseLeaderboard); err != nil {
		t.Fatalf("Timeout(leaderboard): %v", err)
	}

	if eng.Phase() != model.PhaseGameEnd {
		t.Fatalf("phase = %s, want GAME_END", eng.Phase())
	}
	if eng.WinnerID() != "A" {
		t.Fatalf("winner = %s, want A", eng.WinnerID())
	}
	a, _ := eng.Player("A")
	if a.Profile.Stats.Wins != 1 {
		t.Fatalf("A wins = %d, want 1", a.Profile.Stats.Wins)
	}
	if a.Profile.BadgeTiers["champion"] != 1 {
		t.Fatalf("A champion tier = %d, want 1", a.Profile.BadgeTiers["champion"])
	}

	oldGame := eng.GameID()
	if err := eng.PlayAgain("A"); err != nil {
		t.Fatalf("PlayAgain: %v", err)
	}
	if eng.Phase() != model.PhaseLobby {
		t.Fatalf("phase after play again = %s, want LOBBY", eng.Phase())
	}
	if eng.GameID() == oldGame {
		t.Fatal("play again kept the old game id")
	}
	for id, score := range eng.Scores() {
		if score != 0 {
			t.Fatalf("score[%s] = %d after reset, want 0", id, score)
		}
	}
	if a.Profile.Stats.Wins != 1 {
		t.Fatal("play again erased persistent stats")
	}
}

// bot is a scripted participant: it plays the same intent surface as a
// real player with a fixed strategy.
type bot struct {
	id    string
	score int
}

func (b bot) act(t *testing.T, ctx context.Context, eng *Engine) {
	t.Helper()
	var err error
	switch eng.Phase() {
	case model.PhaseMinigame, model.PhaseSuddenDeath:
		err = eng.SubmitMiniGameResult(ctx, b.id, b.score)
	case model.PhaseDareProof:
		if d := eng.CurrentDare(); d != nil && d.AssigneeID == b.id {
			err = eng.SubmitProof(b.id, "replay://"+b.id)
		}
	case model.PhaseProofVoting:
		if d := eng.CurrentDare(); d != nil && d.AssigneeID != b.id {
			err = eng.VoteProof(b.id, true)
		}
	}
	if err != nil && !errors.Is(err, ErrInvalidPhase) && !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("bot %s in %s: %v", b.id, eng.Phase(), err)
	}
}

// TestScriptedBotsPlayFullGame drives a whole five-round AI-mode game
// with scripted participants and checks the terminal state.
func TestScriptedBotsPlayFullGame(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 7, "A", "B", "C")
	bots := []bot{{"A", 9}, {"B", 6}, {"C", 4}}

	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	for i := 0; i < 200 && eng.Phase() != model.PhaseGameEnd; i++ {
		phase := eng.Phase()
		for _, b := range bots {
			b.act(t, ctx, eng)
		}
		if eng.Phase() == phase {
			// Nobody could act (e.g. leaderboard); the deadline moves it.
			if err := eng.Timeout(ctx, phase); err != nil {
				t.Fatalf("Timeout(%s): %v", phase, err)
			}
		}
		if eng.Phase() == phase && phase != model.PhaseGameEnd {
			t.Fatalf("game stuck in %s at iteration %d", phase, i)
		}
	}

	if eng.Phase() != model.PhaseGameEnd {
		t.Fatalf("game never ended, phase = %s", eng.Phase())
	}
	if eng.WinnerID() == "" {
		t.Fatal("no winner computed")
	}
	for id, score := range eng.Scores() {
		if score < 0 {
			t.Fatalf("score[%s] = %d, scores must never go negative", id, score)
		}
	}
	for _, id := range eng.Roster() {
		p, _ := eng.Player(id)
		if p.Profile.Stats.GamesPlayed != 1 {
			t.Fatalf("%s gamesPlayed = %d, want 1", id, p.Profile.Stats.GamesPlayed)
		}
	}
}
