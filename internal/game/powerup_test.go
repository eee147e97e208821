package game

import (
	"context"
	"errors"
	"testing"

	"dareroom/internal/model"
)

// TestPowerUpRejectedWhenNotHeld ensures use without a held instance is
// rejected and nothing is consumed.
func TestPowerUpRejectedWhenNotHeld(t *testing.T) {
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B")
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	p, _ := eng.Player("A")
	p.PowerUps = map[model.PowerUpType]int{}

	if err := eng.UsePowerUp("A", model.PowerUpExtraTime); !errors.Is(err, ErrUnknownPowerUp) {
		t.Fatalf("err = %v, want ErrUnknownPowerUp", err)
	}
	if err := eng.UsePowerUp("A", model.PowerUpType("FLY")); !errors.Is(err, ErrUnknownPowerUp) {
		t.Fatalf("undefined type err = %v, want ErrUnknownPowerUp", err)
	}
	if err := eng.UsePowerUp("Z", model.PowerUpExtraTime); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("unknown player err = %v, want ErrUnknownPlayer", err)
	}
}

// TestExtraTimeConsumedAtomically ensures EXTRA_TIME fires once in the
// mini-game phase and a second use of the spent instance is rejected.
func TestExtraTimeConsumedAtomically(t *testing.T) {
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B")
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	p, _ := eng.Player("A")
	p.PowerUps = map[model.PowerUpType]int{model.PowerUpExtraTime: 1}
	eng.Drain()

	if err := eng.UsePowerUp("A", model.PowerUpExtraTime); err != nil {
		t.Fatalf("UsePowerUp: %v", err)
	}
	if n := p.PowerUps[model.PowerUpExtraTime]; n != 0 {
		t.Fatalf("held instances after use = %d, want 0", n)
	}
	if counts := drainTypes(eng); counts[model.EventTimerExtended] != 1 {
		t.Fatalf("timer_extended events = %d, want 1", counts[model.EventTimerExtended])
	}

	if err := eng.UsePowerUp("A", model.PowerUpExtraTime); !errors.Is(err, ErrUnknownPowerUp) {
		t.Fatalf("double spend err = %v, want ErrUnknownPowerUp", err)
	}
}

// TestExtraTimeRejectedOutsideMinigame ensures phase mismatch rejects
// the use without consuming the instance.
func TestExtraTimeRejectedOutsideMinigame(t *testing.T) {
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B")
	p, _ := eng.Player("A")
	p.PowerUps = map[model.PowerUpType]int{model.PowerUpExtraTime: 1}

	if err := eng.UsePowerUp("A", model.PowerUpExtraTime); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("lobby use err = %v, want ErrInvalidPhase", err)
	}
	if n := p.PowerUps[model.PowerUpExtraTime]; n != 1 {
		t.Fatalf("rejected use consumed the instance: held = %d", n)
	}
}

// TestExtraTimeAppliesInSuddenDeath ensures the timed micro-contest
// accepts EXTRA_TIME the same way the mini-game does.
func TestExtraTimeAppliesInSuddenDeath(t *testing.T) {
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

	b, _ := eng.Player("B")
	b.PowerUps = map[model.PowerUpType]int{model.PowerUpExtraTime: 1}
	eng.Drain()

	if err := eng.UsePowerUp("B", model.PowerUpExtraTime); err != nil {
		t.Fatalf("UsePowerUp(extra time): %v", err)
	}
	if counts := drainTypes(eng); counts[model.EventTimerExtended] != 1 {
		t.Fatalf("timer_extended events = %d, want 1", counts[model.EventTimerExtended])
	}
	if n := b.PowerUps[model.PowerUpExtraTime]; n != 0 {
		t.Fatalf("held instances after use = %d, want 0", n)
	}
}

// TestSkipDareAdvancesWithoutScoreChange ensures SKIP_DARE by the
// assignee skips straight to the leaderboard with no score delta.
func TestSkipDareAdvancesWithoutScoreChange(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B", "C")
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())
	for id, score := range map[string]int{"A": 9, "B": 7, "C": 2} {
		if err := eng.SubmitMiniGameResult(ctx, id, score); err != nil {
			t.Fatalf("SubmitMiniGameResult(%s): %v", id, err)
		}
	}
	if eng.Phase() != model.PhaseDareProof {
		t.Fatalf("phase = %s, want DARE_PROOF", eng.Phase())
	}

	b, _ := eng.Player("B")
	b.PowerUps = map[model.PowerUpType]int{}
	c, _ := eng.Player("C")
	c.PowerUps[model.PowerUpSkipDare] = 1

	if err := eng.UsePowerUp("B", model.PowerUpSkipDare); !errors.Is(err, ErrUnknownPowerUp) {
		t.Fatalf("non-holder skip err = %v, want ErrUnknownPowerUp", err)
	}
	if err := eng.UsePowerUp("C", model.PowerUpSkipDare); err != nil {
		t.Fatalf("UsePowerUp(skip): %v", err)
	}

	if eng.Phase() != model.PhaseLeaderboard {
		t.Fatalf("phase = %s, want LEADERBOARD", eng.Phase())
	}
	if c.Score != 2 {
		t.Fatalf("C score = %d, want unchanged 2", c.Score)
	}
	if d := eng.CurrentDare(); d.Status != model.DareStatusPending {
		t.Fatalf("skipped dare status = %s, want pending", d.Status)
	}
}

// TestSwapCategoryReopensSelection ensures SWAP_CATEGORY re-opens
// category choice for the holder only, exactly once.
func TestSwapCategoryReopensSelection(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t, Config{MaxRounds: 5}, 1, "A", "B")
	if err := eng.SelectCategory("A", "movies"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	if err := eng.StartGame("A"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	setChallenge(eng, tapRace())
	if err := eng.SubmitMiniGameResult(ctx, "A", 5); err != nil {
		t.Fatalf("SubmitMiniGameResult(A): %v", err)
	}
	if err := eng.SubmitMiniGameResult(ctx, "B", 1); err != nil {
		t.Fatalf("SubmitMiniGameResult(B): %v", err)
	}
	if err := eng.Timeout(ctx, model.PhaseDareProof); err != nil {
		t.Fatalf("Timeout(proof): %v", err)
	}
	if err := eng.Timeout(ctx, model.PhaseProofVoting); err != nil {
		t.Fatalf("Timeout(proof voting): %v", err)
	}
	if eng.Phase() != model.PhaseLeaderboard {
		t.Fatalf("phase = %s, want LEADERBOARD", eng.Phase())
	}

	a, _ := eng.Player("A")
	a.PowerUps[model.PowerUpSwapCategory] = 1

	// Without the swap, leaderboard category picks are rejected.
	if err := eng.SelectCategory("B", "sports"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("non-swapped pick err = %v, want ErrInvalidPhase", err)
	}

	if err := eng.UsePowerUp("A", model.PowerUpSwapCategory); err != nil {
		t.Fatalf("UsePowerUp(swap): %v", err)
	}
	if a.Category != "" {
		t.Fatalf("category not cleared: %q", a.Category)
	}
	if err := eng.SelectCategory("A", "music"); err != nil {
		t.Fatalf("post-swap SelectCategory: %v", err)
	}
	if err := eng.SelectCategory("A", "again"); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("second post-swap pick err = %v, want ErrInvalidPhase", err)
	}
	if a.Category != "music" {
		t.Fatalf("category = %q, want music", a.Category)
	}
}
