package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hostbound/signaling/internal/repository"
	"github.com/hostbound/signaling/lib/logger/sl"
)

// Janitor periodically deletes rooms older than the retention window.
// Members of a reaped room get no notification; a room that old is
// assumed abandoned. The sweep shares the store with live traffic, so a
// room may vanish between listing and deletion; Destroy treats that as a
// no-op.
type Janitor struct {
	rooms    repository.RoomRepository
	log      *slog.Logger
	timeout  time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewJanitor(rooms repository.RoomRepository, log *slog.Logger, timeout, interval time.Duration) *Janitor {
	if log == nil {
		log = slog.Default()
	}
	return &Janitor{
		rooms:    rooms,
		log:      log,
		timeout:  timeout,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps on a fixed schedule until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Sweep(ctx); err != nil {
				j.log.Error("sweep failed", sl.Err(err))
			}
		}
	}
}

// Sweep deletes every room whose createdAt falls before the retention
// cutoff. Idempotent; safe to run concurrently with live signaling.
func (j *Janitor) Sweep(ctx context.Context) error {
	const op = "service.janitor.sweep"
	log := j.log.With(slog.String("op", op))

	rooms, err := j.rooms.List(ctx)
	if err != nil {
		return err
	}

	cutoff := j.now().Add(-j.timeout)
	reaped := 0
	for _, room := range rooms {
		if !room.CreatedAt.Before(cutoff) {
			continue
		}
		if err := j.rooms.Destroy(ctx, room.ID); err != nil {
			log.Error("failed to delete room", slog.String("room_id", room.ID), sl.Err(err))
			continue
		}
		reaped++
	}

	log.Info("sweep finished", slog.Int("scanned", len(rooms)), slog.Int("reaped", reaped))
	return nil
}
