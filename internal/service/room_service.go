package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dareroom/internal/cache"
	"dareroom/internal/dare"
	"dareroom/internal/game"
	"dareroom/internal/model"
	"dareroom/internal/repository"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomEnded    = errors.New("room has ended")
	ErrRoomFull     = errors.New("room is full")
)

const defaultMaxPlayers = 12

// RoomService handles room lifecycle: creation, joins, teardown. Live
// gameplay goes through the room's session actor.
type RoomService struct {
	roomRepo    repository.RoomRepo
	profileRepo repository.ProfileRepo
	roomCache   cache.RoomCache
	leaderboard cache.LeaderboardCache
	replayRepo  repository.ReplayRepo
	historyRepo repository.HistoryRepo
	registry    *Registry
	authSvc     *AuthService
	provider    dare.TextProvider
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewRoomService creates a new room service
func NewRoomService(
	roomRepo repository.RoomRepo,
	profileRepo repository.ProfileRepo,
	roomCache cache.RoomCache,
	leaderboard cache.LeaderboardCache,
	replayRepo repository.ReplayRepo,
	historyRepo repository.HistoryRepo,
	registry *Registry,
	authSvc *AuthService,
	provider dare.TextProvider,
	logger zerolog.Logger,
) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		profileRepo: profileRepo,
		roomCache:   roomCache,
		leaderboard: leaderboard,
		replayRepo:  replayRepo,
		historyRepo: historyRepo,
		registry:    registry,
		authSvc:     authSvc,
		provider:    provider,
		broadcaster: NopBroadcaster{},
		logger:      logger,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom creates a room and spins up its session actor
func (s *RoomService) CreateRoom(ctx context.Context, hostID string, settings *model.RoomSettings) (*model.Room, error) {
	if settings.MaxPlayers <= 0 {
		settings.MaxPlayers = defaultMaxPlayers
	}
	if settings.DareMode == "" {
		settings.DareMode = model.DareModeAI
	}

	code, err := s.generateRoomCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	room := &model.Room{
		Code:      code,
		HostID:    hostID,
		Status:    model.RoomStatusLobby,
		Settings:  *settings,
		CreatedAt: time.Now(),
	}

	// Persist to MongoDB
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	// Cache in Redis
	meta := &model.RoomMeta{
		HostID:    hostID,
		Status:    model.RoomStatusLobby,
		Settings:  *settings,
		CreatedAt: room.CreatedAt,
	}
	if err := s.roomCache.SetMeta(ctx, code, meta); err != nil {
		return nil, fmt.Errorf("failed to cache room: %w", err)
	}

	var timeouts map[model.Phase]time.Duration
	if len(settings.PhaseTimeoutsSec) > 0 {
		timeouts = make(map[model.Phase]time.Duration, len(settings.PhaseTimeoutsSec))
		for phase, sec := range settings.PhaseTimeoutsSec {
			timeouts[phase] = time.Duration(sec) * time.Second
		}
	}

	actor := NewActor(game.Config{
		RoomCode:  code,
		MaxRounds: settings.MaxRounds,
		DareMode:  settings.DareMode,
		TeamMode:  settings.TeamMode,
		Timeouts:  timeouts,
	}, s.provider, ActorDeps{
		Broadcaster: s.broadcaster,
		RoomCache:   s.roomCache,
		Leaderboard: s.leaderboard,
		Profiles:    s.profileRepo,
		Replays:     s.replayRepo,
		History:     s.historyRepo,
		Logger:      s.logger,
	})
	s.registry.Put(code, actor)

	s.logger.Info().Str("room", code).Str("host", hostID).Msg("room created")
	return room, nil
}

// JoinRoom seats a player. The profileID is optional: a returning
// player passes their persistent id, a new player gets a fresh profile.
// The first player to join runs the in-game host controls.
func (s *RoomService) JoinRoom(ctx context.Context, roomCode, profileID, displayName string) (*model.JoinResponse, error) {
	meta, err := s.roomCache.GetMeta(ctx, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if meta == nil {
		return nil, ErrRoomNotFound
	}
	if meta.Status == model.RoomStatusEnded {
		return nil, ErrRoomEnded
	}

	actor, ok := s.registry.Get(roomCode)
	if !ok {
		return nil, ErrRoomNotFound
	}

	snap, err := actor.Snapshot()
	if err != nil {
		return nil, err
	}
	if len(snap.Roster) >= meta.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	profile, err := s.loadOrCreateProfile(ctx, profileID, displayName)
	if err != nil {
		return nil, err
	}

	isHost := len(snap.Roster) == 0
	if err := actor.AddPlayer(profile, isHost); err != nil {
		return nil, err
	}

	token, err := s.authSvc.GeneratePlayerToken(roomCode, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// Seed the live leaderboard entry
	if err := s.leaderboard.UpdateScore(ctx, roomCode, profile.ID, 0); err != nil {
		return nil, fmt.Errorf("failed to init leaderboard: %w", err)
	}

	s.broadcaster.BroadcastToRoom(roomCode, "player_joined", map[string]interface{}{
		"playerId":    profile.ID,
		"displayName": profile.DisplayName,
	})

	return &model.JoinResponse{
		PlayerID: profile.ID,
		Token:    token,
		RoomMeta: meta,
	}, nil
}

// LeaveRoom drops a player from the live session.
func (s *RoomService) LeaveRoom(ctx context.Context, roomCode, playerID string) error {
	actor, ok := s.registry.Get(roomCode)
	if !ok {
		return ErrRoomNotFound
	}
	if err := actor.RemovePlayer(playerID); err != nil {
		return err
	}
	s.broadcaster.BroadcastToRoom(roomCode, "player_left", map[string]interface{}{
		"playerId": playerID,
	})
	return nil
}

// GetRoom retrieves a room by code
func (s *RoomService) GetRoom(ctx context.Context, code string) (*model.Room, error) {
	return s.roomRepo.GetByCode(ctx, code)
}

// GetRoomMeta retrieves room metadata from Redis
func (s *RoomService) GetRoomMeta(ctx context.Context, code string) (*model.RoomMeta, error) {
	return s.roomCache.GetMeta(ctx, code)
}

// MarkStarted flips the room record to ACTIVE once the in-game host
// starts the first round.
func (s *RoomService) MarkStarted(ctx context.Context, code string) error {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}
	if room.Status != model.RoomStatusLobby {
		return nil
	}

	now := time.Now()
	room.Status = model.RoomStatusActive
	room.StartedAt = &now

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}
	return s.roomCache.SetStatus(ctx, code, model.RoomStatusActive)
}

// EndRoom tears the room down: actor stopped, sockets closed, status
// flipped to ENDED. Host only.
func (s *RoomService) EndRoom(ctx context.Context, code, hostID string) error {
	room, err := s.roomRepo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}
	if room.HostID != hostID {
		return fmt.Errorf("unauthorized: not room host")
	}

	now := time.Now()
	room.Status = model.RoomStatusEnded
	room.EndedAt = &now

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}
	if err := s.roomCache.SetStatus(ctx, code, model.RoomStatusEnded); err != nil {
		return err
	}
	if err := s.leaderboard.Reset(ctx, code); err != nil {
		s.logger.Warn().Err(err).Str("room", code).Msg("failed to clear leaderboard")
	}

	s.registry.Remove(code)
	s.logger.Info().Str("room", code).Msg("room ended")
	return nil
}

func (s *RoomService) loadOrCreateProfile(ctx context.Context, profileID, displayName string) (*model.PlayerProfile, error) {
	if profileID != "" {
		profile, err := s.profileRepo.GetByID(ctx, profileID)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile: %w", err)
		}
		if profile != nil {
			return profile, nil
		}
	}

	profile := &model.PlayerProfile{
		ID:          "p_" + uuid.New().String()[:8],
		DisplayName: displayName,
		BadgeTiers:  make(map[string]int),
		CreatedAt:   time.Now(),
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// generateRoomCode creates a 6-char alphanumeric code
func (s *RoomService) generateRoomCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		exists, err := s.roomCache.Exists(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if !exists {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique room code")
}
