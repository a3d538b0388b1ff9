package service

import (
	"context"
	"testing"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbound/signaling/internal/domain"
	"github.com/hostbound/signaling/internal/repository"
	"github.com/hostbound/signaling/internal/store"
)

func newSignalFixture(t *testing.T) (*SignalService, *SessionService) {
	t.Helper()
	tree := store.NewMemoryTree()
	rooms := repository.NewRoomRepository(tree, domain.MaxPlayers)
	notifications := repository.NewNotificationQueue(tree)
	log := discardLogger()
	return NewSignalService(rooms, notifications, log), NewSessionService(rooms, notifications, log)
}

func testOffer() webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 test"}
}

func testAnswer() webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 test"}
}

func setupRoom(t *testing.T, sessions *SessionService, players ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, sessions.CreateRoom(ctx, "R1", "host1"))
	for _, p := range players {
		_, err := sessions.JoinRoom(ctx, "R1", p)
		require.NoError(t, err)
	}
	// Drop the join notifications; these tests only watch signaling.
	_, err := sessions.PollNotifications(ctx, "R1", "host1")
	require.NoError(t, err)
}

func TestSignalService_OfferFromHost(t *testing.T) {
	signals, sessions := newSignalFixture(t)
	ctx := context.Background()
	setupRoom(t, sessions, "p2")

	require.NoError(t, signals.Offer(ctx, "R1", "host1", "p2", testOffer()))

	inbox, err := sessions.PollNotifications(ctx, "R1", "p2")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationOffer, inbox[0].Type)
	assert.Equal(t, "host1", inbox[0].From)
	require.NotNil(t, inbox[0].Offer)
	assert.Equal(t, "v=0 test", inbox[0].Offer.SDP)
}

func TestSignalService_OfferToHost(t *testing.T) {
	signals, sessions := newSignalFixture(t)
	ctx := context.Background()
	setupRoom(t, sessions, "p2")

	require.NoError(t, signals.Offer(ctx, "R1", "p2", "host1", testOffer()))

	inbox, err := sessions.PollNotifications(ctx, "R1", "host1")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "p2", inbox[0].From)
}

func TestSignalService_OfferBetweenClientsRejected(t *testing.T) {
	signals, sessions := newSignalFixture(t)
	ctx := context.Background()
	setupRoom(t, sessions, "p2", "p3")

	err := signals.Offer(ctx, "R1", "p2", "p3", testOffer())
	assert.ErrorIs(t, err, ErrInvalidDirection)

	inbox, err := sessions.PollNotifications(ctx, "R1", "p3")
	require.NoError(t, err)
	assert.Empty(t, inbox, "rejected offer must not be delivered")
}

func TestSignalService_OfferMissingRoom(t *testing.T) {
	signals, _ := newSignalFixture(t)

	err := signals.Offer(context.Background(), "nope", "a", "b", testOffer())
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}

func TestSignalService_AnswerHasNoDirectionCheck(t *testing.T) {
	signals, sessions := newSignalFixture(t)
	ctx := context.Background()
	setupRoom(t, sessions, "p2", "p3")

	// Answers mirror an already-validated offer and are not re-checked.
	require.NoError(t, signals.Answer(ctx, "R1", "p2", "p3", testAnswer()))

	inbox, err := sessions.PollNotifications(ctx, "R1", "p3")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationAnswer, inbox[0].Type)
	require.NotNil(t, inbox[0].Answer)
}

func TestSignalService_ICECandidatesBatchedIntoOneNotification(t *testing.T) {
	signals, sessions := newSignalFixture(t)
	ctx := context.Background()
	setupRoom(t, sessions, "p2")

	candidates := []webrtc.ICECandidateInit{
		{Candidate: "candidate:1"},
		{Candidate: "candidate:2"},
		{Candidate: "candidate:3"},
	}
	require.NoError(t, signals.ICECandidates(ctx, "R1", "host1", "p2", candidates))

	inbox, err := sessions.PollNotifications(ctx, "R1", "p2")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationICECandidates, inbox[0].Type)
	assert.Equal(t, "host1", inbox[0].From)
	require.Len(t, inbox[0].Candidates, 3)
	assert.Equal(t, "candidate:2", inbox[0].Candidates[1].Candidate)
}

func TestSignalService_ICECandidatesMissingRoom(t *testing.T) {
	signals, _ := newSignalFixture(t)

	err := signals.ICECandidates(context.Background(), "nope", "a", "b", nil)
	assert.ErrorIs(t, err, repository.ErrRoomNotFound)
}
