package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dareroom/internal/cache"
	"dareroom/internal/dare"
	"dareroom/internal/game"
	"dareroom/internal/model"
	"dareroom/internal/repository"
)

// ActorDeps are the side-effect sinks a session actor drives from
// engine events.
type ActorDeps struct {
	Broadcaster Broadcaster
	RoomCache   cache.RoomCache
	Leaderboard cache.LeaderboardCache
	Profiles    repository.ProfileRepo
	Replays     repository.ReplayRepo
	History     repository.HistoryRepo
	Clock       game.Clock
	// Rand drives every engine draw; nil seeds from the wall clock.
	Rand   *rand.Rand
	Logger zerolog.Logger
}

// Actor owns one room's engine. All engine calls are serialized through
// the command channel, so the engine itself stays lock-free.
type Actor struct {
	roomCode string
	eng      *game.Engine
	deps     ActorDeps

	commands chan actorCmd
	done     chan struct{}
	stopOnce sync.Once

	// timer state, touched only by the run loop
	timerC     <-chan time.Time
	timerPhase model.Phase
	deadline   time.Time
}

type actorCmd struct {
	fn    func(ctx context.Context) error
	reply chan error
}

// NewActor creates and starts the actor goroutine for a room.
func NewActor(cfg game.Config, provider dare.TextProvider, deps ActorDeps) *Actor {
	if deps.Clock == nil {
		deps.Clock = game.RealClock()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	a := &Actor{
		roomCode: cfg.RoomCode,
		eng:      game.NewEngine(cfg, provider, deps.Rand),
		deps:     deps,
		commands: make(chan actorCmd),
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

// Stop tears the actor down. Pending commands after Stop fail with
// context.Canceled.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
}

func (a *Actor) run() {
	ctx := context.Background()
	for {
		select {
		case cmd := <-a.commands:
			err := cmd.fn(ctx)
			a.dispatch(ctx, a.eng.Drain())
			cmd.reply <- err
		case <-a.timerC:
			a.timerC = nil
			if err := a.eng.Timeout(ctx, a.timerPhase); err != nil {
				a.deps.Logger.Warn().Err(err).Str("room", a.roomCode).Msg("phase timeout rejected")
			}
			a.dispatch(ctx, a.eng.Drain())
		case <-a.done:
			a.deps.Broadcaster.DisconnectRoom(a.roomCode)
			return
		}
	}
}

// do runs fn on the actor goroutine and waits for its result.
func (a *Actor) do(fn func(ctx context.Context) error) error {
	cmd := actorCmd{fn: fn, reply: make(chan error, 1)}
	select {
	case a.commands <- cmd:
		return <-cmd.reply
	case <-a.done:
		return context.Canceled
	}
}

// dispatch fans engine events out to the broadcaster and the storage
// sinks. Sink failures are logged, never surfaced to the caller; the
// engine state has already moved on.
func (a *Actor) dispatch(ctx context.Context, events []model.Event) {
	for _, ev := range events {
		if ev.PlayerID != "" {
			a.deps.Broadcaster.BroadcastToPlayer(a.roomCode, ev.PlayerID, string(ev.Type), ev.Payload)
		} else {
			a.deps.Broadcaster.BroadcastToRoom(a.roomCode, string(ev.Type), ev.Payload)
		}

		switch ev.Type {
		case model.EventPhaseChanged:
			a.onPhaseChanged(ctx, ev)
		case model.EventScoreUpdate:
			a.onScoreUpdate(ctx, ev)
		case model.EventTimerExtended:
			a.onTimerExtended(ev)
		case model.EventDareResolved:
			a.onDareResolved(ctx, ev)
		case model.EventGameOver:
			a.onGameOver(ctx, ev)
		}
	}
}

func (a *Actor) onPhaseChanged(ctx context.Context, ev model.Event) {
	p, ok := ev.Payload.(*model.PhaseChangedPayload)
	if !ok {
		return
	}
	if err := a.deps.RoomCache.SetPhase(ctx, a.roomCode, p.Phase); err != nil {
		a.deps.Logger.Warn().Err(err).Str("room", a.roomCode).Msg("failed to cache phase")
	}
	if p.Deadline > 0 {
		a.armTimer(p.Phase, time.Duration(p.Deadline)*time.Second)
	} else {
		a.timerC = nil
	}
	if p.Phase == model.PhaseMinigame && p.Round == 1 {
		if err := a.deps.Leaderboard.Reset(ctx, a.roomCode); err != nil {
			a.deps.Logger.Warn().Err(err).Str("room", a.roomCode).Msg("failed to reset leaderboard")
		}
	}
}

func (a *Actor) onScoreUpdate(ctx context.Context, ev model.Event) {
	p, ok := ev.Payload.(*model.ScoreUpdatePayload)
	if !ok {
		return
	}
	if err := a.deps.Leaderboard.UpdateScore(ctx, a.roomCode, p.PlayerID, p.Score); err != nil {
		a.deps.Logger.Warn().Err(err).Str("room", a.roomCode).Msg("failed to update leaderboard")
		return
	}
	if entries, err := a.deps.Leaderboard.GetTop(ctx, a.roomCode, 20); err == nil {
		a.deps.Broadcaster.BroadcastToRoom(a.roomCode, "leaderboard_update", map[string]interface{}{
			"leaderboard": entries,
		})
	}
}

func (a *Actor) onTimerExtended(ev model.Event) {
	p, ok := ev.Payload.(*model.TimerExtendedPayload)
	if !ok || a.timerC == nil {
		return
	}
	a.deadline = a.deadline.Add(time.Duration(p.Seconds) * time.Second)
	a.timerC = a.deps.Clock.After(a.deadline.Sub(a.deps.Clock.Now()))
}

func (a *Actor) onDareResolved(ctx context.Context, ev model.Event) {
	d, ok := ev.Payload.(*model.Dare)
	if !ok {
		return
	}
	entry := &model.ReplayEntry{
		ID:         uuid.New().String(),
		RoomCode:   a.roomCode,
		DareID:     d.ID,
		DareText:   d.Text,
		AssigneeID: d.AssigneeID,
		ReplayRef:  d.ReplayRef,
		ArchivedAt: a.deps.Clock.Now(),
	}
	if err := a.deps.Replays.Append(ctx, entry); err != nil {
		a.deps.Logger.Error().Err(err).Str("room", a.roomCode).Msg("failed to archive replay")
	}
}

func (a *Actor) onGameOver(ctx context.Context, ev model.Event) {
	p, ok := ev.Payload.(*model.GameOverPayload)
	if !ok {
		return
	}

	roster := a.eng.Roster()
	now := a.deps.Clock.Now()
	var lastDare, lastOutcome, lastAssignee string
	if d := a.eng.CurrentDare(); d != nil {
		lastDare = d.Text
		lastOutcome = string(d.Status)
		lastAssignee = d.AssigneeID
	}

	records := make([]model.GameRecord, 0, len(roster))
	for _, id := range roster {
		sp, ok := a.eng.Player(id)
		if !ok {
			continue
		}
		if err := a.deps.Profiles.Update(ctx, sp.Profile); err != nil {
			a.deps.Logger.Error().Err(err).Str("player", id).Msg("failed to persist profile")
		}
		rec := model.GameRecord{
			ID:         uuid.New().String(),
			GameID:     a.eng.GameID(),
			RoomCode:   a.roomCode,
			PlayerID:   id,
			Roster:     roster,
			WinnerID:   p.WinnerID,
			FinalScore: sp.Score,
			PlayedAt:   now,
		}
		if id == lastAssignee {
			rec.LastDare = lastDare
			rec.DareOutcome = lastOutcome
		}
		records = append(records, rec)
	}
	if err := a.deps.History.Append(ctx, records); err != nil {
		a.deps.Logger.Error().Err(err).Str("room", a.roomCode).Msg("failed to persist game history")
	}
}

func (a *Actor) armTimer(phase model.Phase, d time.Duration) {
	a.timerPhase = phase
	a.deadline = a.deps.Clock.Now().Add(d)
	a.timerC = a.deps.Clock.After(d)
}

// Snapshot is a read-only view of the session used for resync.
type Snapshot struct {
	Phase    model.Phase    `json:"phase"`
	Round    int            `json:"round"`
	Scores   map[string]int `json:"scores"`
	Roster   []string       `json:"roster"`
	Dare     *model.Dare    `json:"dare,omitempty"`
	WinnerID string         `json:"winnerId,omitempty"`
}

// Snapshot returns the current session view.
func (a *Actor) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := a.do(func(ctx context.Context) error {
		s = Snapshot{
			Phase:    a.eng.Phase(),
			Round:    a.eng.RoundNumber(),
			Scores:   a.eng.Scores(),
			Roster:   a.eng.Roster(),
			Dare:     a.eng.CurrentDare(),
			WinnerID: a.eng.WinnerID(),
		}
		return nil
	})
	return s, err
}

// AddPlayer seats a profile in the lobby.
func (a *Actor) AddPlayer(profile *model.PlayerProfile, isHost bool) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.AddPlayer(profile, isHost)
	})
}

// RemovePlayer drops a player; mid-phase departures re-check fan-in.
func (a *Actor) RemovePlayer(playerID string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.RemovePlayer(ctx, playerID)
	})
}

// SelectCategory records a player's dare category preference.
func (a *Actor) SelectCategory(playerID, category string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.SelectCategory(playerID, category)
	})
}

// SaveCustomization applies a cosmetic loadout.
func (a *Actor) SaveCustomization(playerID string, c model.Customization) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.SaveCustomization(playerID, c)
	})
}

// AssignTeam places a player on a team, host only.
func (a *Actor) AssignTeam(hostID, playerID string, team model.Team) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.AssignTeam(hostID, playerID, team)
	})
}

// StartGame begins round one, host only.
func (a *Actor) StartGame(hostID string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.StartGame(hostID)
	})
}

// SubmitMiniGameResult records a player's mini-game score.
func (a *Actor) SubmitMiniGameResult(playerID string, score int) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.SubmitMiniGameResult(ctx, playerID, score)
	})
}

// VoteTeammate casts a losing-team dare vote.
func (a *Actor) VoteTeammate(voterID, targetID string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.VoteTeammate(ctx, voterID, targetID)
	})
}

// SubmitDare proposes a community-mode dare.
func (a *Actor) SubmitDare(playerID, text string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.SubmitDare(playerID, text)
	})
}

// VoteDare votes for a proposed dare.
func (a *Actor) VoteDare(voterID, dareID string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.VoteDare(voterID, dareID)
	})
}

// SubmitProof attaches proof and opens proof voting.
func (a *Actor) SubmitProof(assigneeID, proofRef string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.SubmitProof(assigneeID, proofRef)
	})
}

// VoteProof casts a pass or fail verdict on the proof.
func (a *Actor) VoteProof(voterID string, passed bool) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.VoteProof(voterID, passed)
	})
}

// UsePowerUp consumes and applies a held power-up.
func (a *Actor) UsePowerUp(playerID string, t model.PowerUpType) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.UsePowerUp(playerID, t)
	})
}

// NextRound leaves the leaderboard early, host only.
func (a *Actor) NextRound(hostID string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.NextRound(hostID)
	})
}

// PlayAgain resets the finished session back to the lobby, host only.
func (a *Actor) PlayAgain(hostID string) error {
	return a.do(func(ctx context.Context) error {
		return a.eng.PlayAgain(hostID)
	})
}
