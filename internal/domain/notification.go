package domain

import "github.com/pion/webrtc/v3"

// NotificationType tags a queued event awaiting delivery to one player.
type NotificationType string

const (
	NotificationNewPlayer     NotificationType = "new_player"
	NotificationPlayerLeft    NotificationType = "player_left"
	NotificationOffer         NotificationType = "offer"
	NotificationAnswer        NotificationType = "answer"
	NotificationICECandidates NotificationType = "new_ice_candidates"
)

// Notification is a tagged event queued in a player's mailbox. Exactly the
// fields of the tagged variant are set; everything else stays zero and is
// omitted on the wire.
type Notification struct {
	Type       NotificationType           `json:"type"`
	PlayerID   string                     `json:"playerId,omitempty"`
	From       string                     `json:"from,omitempty"`
	Offer      *webrtc.SessionDescription `json:"offer,omitempty"`
	Answer     *webrtc.SessionDescription `json:"answer,omitempty"`
	Candidates []webrtc.ICECandidateInit  `json:"candidates,omitempty"`
}

// NewPlayerNotification tells the host that playerID joined.
func NewPlayerNotification(playerID string) Notification {
	return Notification{Type: NotificationNewPlayer, PlayerID: playerID}
}

// PlayerLeftNotification tells a remaining member that playerID departed.
func PlayerLeftNotification(playerID string) Notification {
	return Notification{Type: NotificationPlayerLeft, PlayerID: playerID}
}

// OfferNotification carries a session description offer from a sender.
func OfferNotification(from string, sdp webrtc.SessionDescription) Notification {
	return Notification{Type: NotificationOffer, From: from, Offer: &sdp}
}

// AnswerNotification carries a session description answer from a sender.
func AnswerNotification(from string, sdp webrtc.SessionDescription) Notification {
	return Notification{Type: NotificationAnswer, From: from, Answer: &sdp}
}

// ICECandidatesNotification batches a sender's candidate list into one event.
func ICECandidatesNotification(from string, candidates []webrtc.ICECandidateInit) Notification {
	return Notification{Type: NotificationICECandidates, From: from, Candidates: candidates}
}
