package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hostbound/signaling/internal/repository"
	"github.com/hostbound/signaling/internal/service"
	"github.com/hostbound/signaling/lib/logger/sl"
)

// StreamController bridges the pull-based mailbox onto a WebSocket: it
// polls the player's notifications server-side and forwards each drained
// entry as a JSON frame. Delivery semantics are identical to
// poll_notifications; this is a convenience transport, not a second
// delivery path.
type StreamController struct {
	sessions     service.SessionInteractor
	log          *slog.Logger
	upgrader     websocket.Upgrader
	pollInterval time.Duration
}

func NewStreamController(sessions service.SessionInteractor, log *slog.Logger) *StreamController {
	if log == nil {
		log = slog.Default()
	}
	return &StreamController{
		sessions: sessions,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		pollInterval: time.Second,
	}
}

func (c *StreamController) StreamNotifications(ctx *gin.Context) {
	roomID := ctx.Param("roomID")
	playerID := ctx.Query("playerId")
	if playerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "playerId is required"})
		return
	}

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to upgrade connection"})
		return
	}
	defer conn.Close()

	log := c.log.With(
		slog.String("conn_id", uuid.NewString()),
		slog.String("room_id", roomID),
		slog.String("player_id", playerID),
	)
	log.Info("notification stream opened")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Info("notification stream closed by client")
			return
		case <-ctx.Request.Context().Done():
			return
		case <-ticker.C:
			notifications, err := c.sessions.PollNotifications(ctx.Request.Context(), roomID, playerID)
			if err != nil {
				if errors.Is(err, repository.ErrRoomNotFound) {
					_ = conn.WriteJSON(gin.H{"success": false, "message": err.Error()})
					return
				}
				log.Error("poll failed", sl.Err(err))
				continue
			}
			for _, n := range notifications {
				if err := conn.WriteJSON(n); err != nil {
					return
				}
			}
		}
	}
}
