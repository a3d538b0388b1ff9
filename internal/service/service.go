package service

import (
	"context"

	"github.com/hostbound/signaling/internal/domain"
	"github.com/pion/webrtc/v3"
)

type SessionInteractor interface {
	CreateRoom(ctx context.Context, roomID, hostID string) error
	JoinRoom(ctx context.Context, roomID, playerID string) (string, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) error
	PollNotifications(ctx context.Context, roomID, playerID string) ([]domain.Notification, error)
}

type SignalInteractor interface {
	Offer(ctx context.Context, roomID, senderID, targetID string, sdp webrtc.SessionDescription) error
	Answer(ctx context.Context, roomID, senderID, targetID string, sdp webrtc.SessionDescription) error
	ICECandidates(ctx context.Context, roomID, senderID, targetID string, candidates []webrtc.ICECandidateInit) error
}
