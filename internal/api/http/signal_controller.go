package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostbound/signaling/internal/repository"
	"github.com/hostbound/signaling/internal/service"
	"github.com/hostbound/signaling/lib/logger/sl"
	"github.com/pion/webrtc/v3"
)

// SignalController is the single request-style entry point: every inbound
// call carries an action field plus room/player identifiers and is
// dispatched to the session or signal service.
type SignalController struct {
	sessions service.SessionInteractor
	signals  service.SignalInteractor
	log      *slog.Logger
}

func NewSignalController(sessions service.SessionInteractor, signals service.SignalInteractor, log *slog.Logger) *SignalController {
	if log == nil {
		log = slog.Default()
	}
	return &SignalController{
		sessions: sessions,
		signals:  signals,
		log:      log,
	}
}

type signalRequest struct {
	Action   string          `json:"action"`
	RoomID   string          `json:"roomId"`
	PlayerID string          `json:"playerId"`
	TargetID string          `json:"targetId"`
	Data     json.RawMessage `json:"data"`
}

// Dispatch handles GET (action in query parameters, for read-style calls)
// and POST (structured JSON body) on the signal endpoint.
func (c *SignalController) Dispatch(ctx *gin.Context) {
	var req signalRequest
	if ctx.Request.Method == http.MethodGet {
		req.Action = ctx.Query("action")
		req.RoomID = ctx.Query("roomId")
		req.PlayerID = ctx.Query("playerId")
		req.TargetID = ctx.Query("targetId")
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body: " + err.Error()})
		return
	}

	if req.RoomID == "" || req.PlayerID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "roomId and playerId are required"})
		return
	}

	switch req.Action {
	case "create_room":
		if err := c.sessions.CreateRoom(ctx.Request.Context(), req.RoomID, req.PlayerID); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Room created", "roomId": req.RoomID})

	case "join_room":
		host, err := c.sessions.JoinRoom(ctx.Request.Context(), req.RoomID, req.PlayerID)
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Joined room", "hostId": host, "roomId": req.RoomID})

	case "leave_room":
		if err := c.sessions.LeaveRoom(ctx.Request.Context(), req.RoomID, req.PlayerID); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Left room"})

	case "poll_notifications":
		notifications, err := c.sessions.PollNotifications(ctx.Request.Context(), req.RoomID, req.PlayerID)
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})

	case "offer", "answer":
		if req.TargetID == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "targetId is required"})
			return
		}
		var sdp webrtc.SessionDescription
		if err := json.Unmarshal(req.Data, &sdp); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid session description: " + err.Error()})
			return
		}

		var err error
		message := "Offer sent"
		if req.Action == "offer" {
			err = c.signals.Offer(ctx.Request.Context(), req.RoomID, req.PlayerID, req.TargetID, sdp)
		} else {
			message = "Answer sent"
			err = c.signals.Answer(ctx.Request.Context(), req.RoomID, req.PlayerID, req.TargetID, sdp)
		}
		if err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": message})

	case "ice_candidates":
		if req.TargetID == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "targetId is required"})
			return
		}
		var candidates []webrtc.ICECandidateInit
		if err := json.Unmarshal(req.Data, &candidates); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid candidate list: " + err.Error()})
			return
		}
		if err := c.signals.ICECandidates(ctx.Request.Context(), req.RoomID, req.PlayerID, req.TargetID, candidates); err != nil {
			c.fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Candidates sent"})

	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid action: " + req.Action})
	}
}

func (c *SignalController) fail(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrRoomExists),
		errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrRoomFull),
		errors.Is(err, service.ErrInvalidDirection):
		status = http.StatusBadRequest
	default:
		c.log.Error("request failed", sl.Err(err))
	}
	ctx.JSON(status, gin.H{"success": false, "message": err.Error()})
}
