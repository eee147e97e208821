package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"dareroom/internal/game"
	"dareroom/internal/model"
	"dareroom/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrReplayNotFound  = errors.New("replay not found")
)

// ProfileSummary is the profile read model with derived level data.
type ProfileSummary struct {
	Profile   *model.PlayerProfile `json:"profile"`
	Level     int                  `json:"level"`
	XPInLevel int                  `json:"xpInLevel"`
	XPToNext  int                  `json:"xpToNext"`
}

// ProfileService serves persistent player data: profiles, game history,
// and the replay archive.
type ProfileService struct {
	profileRepo repository.ProfileRepo
	historyRepo repository.HistoryRepo
	replayRepo  repository.ReplayRepo
	logger      zerolog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repository.ProfileRepo,
	historyRepo repository.HistoryRepo,
	replayRepo repository.ReplayRepo,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		historyRepo: historyRepo,
		replayRepo:  replayRepo,
		logger:      logger,
	}
}

// GetProfile returns a profile with its derived level breakdown.
func (s *ProfileService) GetProfile(ctx context.Context, playerID string) (*ProfileSummary, error) {
	profile, err := s.profileRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	level, inLevel, toNext := game.LevelInfo(profile.TotalXP)
	return &ProfileSummary{
		Profile:   profile,
		Level:     level,
		XPInLevel: inLevel,
		XPToNext:  toNext,
	}, nil
}

// UpdateCustomization applies a cosmetic loadout to the persistent
// profile. Every referenced item must already be unlocked.
func (s *ProfileService) UpdateCustomization(ctx context.Context, playerID string, c model.Customization) error {
	profile, err := s.profileRepo.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return ErrProfileNotFound
	}

	for _, item := range []string{c.AvatarID, c.FrameID, c.TitleID} {
		if item != "" && !profile.HasUnlock(item) {
			return fmt.Errorf("item %s is not unlocked", item)
		}
	}

	profile.Customization = c
	return s.profileRepo.Update(ctx, profile)
}

// GetHistory lists a player's most recent game records.
func (s *ProfileService) GetHistory(ctx context.Context, playerID string, limit int) ([]model.GameRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.historyRepo.ListByPlayer(ctx, playerID, limit)
}

// ListReplays lists archived dare replays, most recent first.
func (s *ProfileService) ListReplays(ctx context.Context, limit int) ([]model.ReplayEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.replayRepo.List(ctx, limit)
}

// VoteReplay upvotes an archived replay and grants the voter the
// replay-vote XP.
func (s *ProfileService) VoteReplay(ctx context.Context, replayID, voterID string) error {
	entry, err := s.replayRepo.GetByID(ctx, replayID)
	if err != nil {
		return fmt.Errorf("failed to load replay: %w", err)
	}
	if entry == nil {
		return ErrReplayNotFound
	}

	if err := s.replayRepo.AddVote(ctx, replayID); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	voter, err := s.profileRepo.GetByID(ctx, voterID)
	if err != nil || voter == nil {
		// The vote stands even if the voter has no profile.
		return nil
	}
	voter.Stats.ReplayVotes++
	game.ApplyXP(voter, model.XPAmountReplayVoted)
	if err := s.profileRepo.Update(ctx, voter); err != nil {
		s.logger.Warn().Err(err).Str("player", voterID).Msg("failed to persist replay-vote XP")
	}
	return nil
}
