package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hostbound/signaling/internal/domain"
	"github.com/hostbound/signaling/internal/repository"
	"github.com/hostbound/signaling/lib/logger/sl"
	"github.com/pion/webrtc/v3"
)

// ErrInvalidDirection rejects offers that neither originate from nor
// target the room host.
var ErrInvalidDirection = errors.New("offer must involve the room host")

// SignalService routes negotiation payloads between the host and its
// clients. The room is a hub: a client only ever exchanges with the host,
// never with another client, which bounds fan-out to the member count.
// Only the initial offer's direction is enforced; answers and candidates
// follow a negotiation the offer already validated.
type SignalService struct {
	rooms         repository.RoomRepository
	notifications repository.NotificationQueue
	log           *slog.Logger
}

func NewSignalService(rooms repository.RoomRepository, notifications repository.NotificationQueue, log *slog.Logger) *SignalService {
	if log == nil {
		log = slog.Default()
	}
	return &SignalService{
		rooms:         rooms,
		notifications: notifications,
		log:           log,
	}
}

func (s *SignalService) Offer(ctx context.Context, roomID, senderID, targetID string, sdp webrtc.SessionDescription) error {
	const op = "service.signal.offer"
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("sender", senderID),
		slog.String("target", targetID),
	)

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		log.Info("offer rejected", sl.Err(err))
		return err
	}

	if senderID != room.Host && targetID != room.Host {
		log.Info("offer rejected", sl.Err(ErrInvalidDirection))
		return ErrInvalidDirection
	}

	if err := s.rooms.RecordOffer(ctx, roomID, senderID, sdp); err != nil {
		return err
	}
	return s.notifications.Push(ctx, roomID, targetID, domain.OfferNotification(senderID, sdp))
}

func (s *SignalService) Answer(ctx context.Context, roomID, senderID, targetID string, sdp webrtc.SessionDescription) error {
	const op = "service.signal.answer"
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("sender", senderID),
	)

	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		log.Info("answer rejected", sl.Err(err))
		return err
	}

	if err := s.rooms.RecordAnswer(ctx, roomID, senderID, sdp); err != nil {
		return err
	}
	return s.notifications.Push(ctx, roomID, targetID, domain.AnswerNotification(senderID, sdp))
}

func (s *SignalService) ICECandidates(ctx context.Context, roomID, senderID, targetID string, candidates []webrtc.ICECandidateInit) error {
	const op = "service.signal.ice"
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("sender", senderID),
	)

	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		log.Info("candidates rejected", sl.Err(err))
		return err
	}

	if err := s.rooms.RecordCandidates(ctx, roomID, senderID, candidates); err != nil {
		return err
	}
	return s.notifications.Push(ctx, roomID, targetID, domain.ICECandidatesNotification(senderID, candidates))
}
