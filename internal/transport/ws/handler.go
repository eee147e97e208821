package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dareroom/internal/model"
	"dareroom/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections and dispatches gameplay intents
// to the room's session actor.
type Handler struct {
	hub      *Hub
	authSvc  *service.AuthService
	roomSvc  *service.RoomService
	registry *service.Registry
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, roomSvc *service.RoomService, registry *service.Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		authSvc:  authSvc,
		roomSvc:  roomSvc,
		registry: registry,
		logger:   logger,
	}
}

// HostWS handles GET /v1/ws/rooms/{code}/host
func (h *Handler) HostWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	if _, err := h.authSvc.ValidateHostToken(token); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &Connection{
		RoomCode: code,
		IsHost:   true,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// PlayerWS handles GET /v1/ws/rooms/{code}/player
func (h *Handler) PlayerWS(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidatePlayerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if claims.RoomCode != code {
		http.Error(w, "token not valid for this room", http.StatusForbidden)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &Connection{
		RoomCode: code,
		PlayerID: claims.PlayerID,
		Send:     make(chan []byte, 256),
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

// Intent payloads sent by clients.
type (
	categoryIntent struct {
		Category string `json:"category"`
	}
	teamIntent struct {
		PlayerID string     `json:"playerId"`
		Team     model.Team `json:"team"`
	}
	resultIntent struct {
		Score int `json:"score"`
	}
	teammateVoteIntent struct {
		TargetID string `json:"targetId"`
	}
	dareTextIntent struct {
		Text string `json:"text"`
	}
	dareVoteIntent struct {
		DareID string `json:"dareId"`
	}
	proofIntent struct {
		ProofRef string `json:"proofRef"`
	}
	proofVoteIntent struct {
		Passed bool `json:"passed"`
	}
	powerUpIntent struct {
		Type model.PowerUpType `json:"type"`
	}
)

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug().Err(err).Str("room", conn.RoomCode).Msg("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(conn, "malformed message")
			continue
		}

		if conn.IsHost {
			// The host console is a spectator; gameplay intents come
			// from player connections.
			continue
		}

		if err := h.handleIntent(conn, &msg); err != nil {
			h.sendError(conn, err.Error())
		}
	}
}

func (h *Handler) handleIntent(conn *Connection, msg *Message) error {
	actor, ok := h.registry.Get(conn.RoomCode)
	if !ok {
		return service.ErrRoomNotFound
	}

	switch msg.Type {
	case "select_category":
		var p categoryIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.SelectCategory(conn.PlayerID, p.Category)

	case "save_customization":
		var p model.Customization
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.SaveCustomization(conn.PlayerID, p)

	case "assign_team":
		var p teamIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.AssignTeam(conn.PlayerID, p.PlayerID, p.Team)

	case "start_game":
		if err := actor.StartGame(conn.PlayerID); err != nil {
			return err
		}
		if err := h.roomSvc.MarkStarted(context.Background(), conn.RoomCode); err != nil {
			h.logger.Warn().Err(err).Str("room", conn.RoomCode).Msg("failed to mark room active")
		}
		return nil

	case "submit_result":
		var p resultIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.SubmitMiniGameResult(conn.PlayerID, p.Score)

	case "vote_teammate":
		var p teammateVoteIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.VoteTeammate(conn.PlayerID, p.TargetID)

	case "submit_dare":
		var p dareTextIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.SubmitDare(conn.PlayerID, p.Text)

	case "vote_dare":
		var p dareVoteIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.VoteDare(conn.PlayerID, p.DareID)

	case "submit_proof":
		var p proofIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.SubmitProof(conn.PlayerID, p.ProofRef)

	case "vote_proof":
		var p proofVoteIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.VoteProof(conn.PlayerID, p.Passed)

	case "use_powerup":
		var p powerUpIntent
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return actor.UsePowerUp(conn.PlayerID, p.Type)

	case "next_round":
		return actor.NextRound(conn.PlayerID)

	case "play_again":
		return actor.PlayAgain(conn.PlayerID)

	case "leave":
		return h.roomSvc.LeaveRoom(context.Background(), conn.RoomCode, conn.PlayerID)

	default:
		h.logger.Debug().Str("type", msg.Type).Msg("unknown intent")
		return nil
	}
}

func (h *Handler) sendError(conn *Connection, message string) {
	payload, _ := json.Marshal(map[string]string{"message": message})
	data, _ := json.Marshal(&Message{Type: "error", Payload: payload})
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
