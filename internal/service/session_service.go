package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hostbound/signaling/internal/domain"
	"github.com/hostbound/signaling/internal/repository"
	"github.com/hostbound/signaling/lib/logger/sl"
)

// SessionService implements room lifecycle: create, join, leave and
// notification polling. Joining notifies the host; leaving notifies every
// remaining member and reassigns the host when needed.
type SessionService struct {
	rooms         repository.RoomRepository
	notifications repository.NotificationQueue
	log           *slog.Logger
}

func NewSessionService(rooms repository.RoomRepository, notifications repository.NotificationQueue, log *slog.Logger) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	return &SessionService{
		rooms:         rooms,
		notifications: notifications,
		log:           log,
	}
}

func (s *SessionService) CreateRoom(ctx context.Context, roomID, hostID string) error {
	const op = "service.session.create"
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
	)

	room := domain.NewRoom(roomID, hostID, time.Now())
	if err := s.rooms.Create(ctx, room); err != nil {
		log.Info("create rejected", sl.Err(err))
		return err
	}

	log.Info("room created", slog.String("host", hostID))
	return nil
}

func (s *SessionService) JoinRoom(ctx context.Context, roomID, playerID string) (string, error) {
	const op = "service.session.join"
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("player_id", playerID),
	)

	host, err := s.rooms.AddPlayer(ctx, roomID, playerID)
	if err != nil {
		log.Info("join rejected", sl.Err(err))
		return "", err
	}

	if err := s.notifications.Push(ctx, roomID, host, domain.NewPlayerNotification(playerID)); err != nil {
		return "", err
	}

	log.Info("player joined", slog.String("host", host))
	return host, nil
}

func (s *SessionService) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	const op = "service.session.leave"
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", roomID),
		slog.String("player_id", playerID),
	)

	result, err := s.rooms.RemovePlayer(ctx, roomID, playerID)
	if err != nil {
		log.Info("leave rejected", sl.Err(err))
		return err
	}

	if result.Closed {
		log.Info("room closed, last player left")
		return nil
	}

	for _, memberID := range result.Remaining {
		err := s.notifications.Push(ctx, roomID, memberID, domain.PlayerLeftNotification(playerID))
		if err != nil {
			return err
		}
	}

	if result.HostChanged {
		log.Info("host reassigned", slog.String("host", result.Host))
	}
	return nil
}

func (s *SessionService) PollNotifications(ctx context.Context, roomID, playerID string) ([]domain.Notification, error) {
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return nil, err
	}
	return s.notifications.Drain(ctx, roomID, playerID)
}
