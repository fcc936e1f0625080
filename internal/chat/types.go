package chat

import (
	"errors"
	"time"
)

// Message is a single chat message as rendered in a room timeline.
type Message struct {
	ID         string // empty until the origin confirms the message
	Content    string
	SenderID   string
	ReceiverID string
	RoomID     string
	CreatedAt  time.Time
}

// FromSelf reports whether the message was sent by the given user.
func (m Message) FromSelf(userID string) bool {
	return m.SenderID == userID
}

// Participant is one side of a room.
type Participant struct {
	ID    string
	Name  string
	Photo string
}

// Room is a customer conversation tied to a campaign.
type Room struct {
	RoomID     string
	CampaignID string
	CustomerID string
	// Participants holds both sides in origin order; one of them is the admin.
	Participants [2]Participant
	Latest       *Message
}

// ErrNotParticipant is returned when the admin is not one of the room's participants.
var ErrNotParticipant = errors.New("admin is not a participant of the room")

// Perspective splits the participants into the admin's own side and the counterpart.
func (r Room) Perspective(adminID string) (self, counterpart Participant, err error) {
	switch adminID {
	case r.Participants[0].ID:
		return r.Participants[0], r.Participants[1], nil
	case r.Participants[1].ID:
		return r.Participants[1], r.Participants[0], nil
	}
	return Participant{}, Participant{}, ErrNotParticipant
}

// LastActivity returns the timestamp of the latest message, or zero.
func (r Room) LastActivity() time.Time {
	if r.Latest == nil {
		return time.Time{}
	}
	return r.Latest.CreatedAt
}

// Selection is emitted when a room is opened. Sender is always the admin.
type Selection struct {
	Sender   string
	Receiver string
	RoomID   string
	Name     string
}

// Ready reports whether every field needed to send a message is set.
func (s Selection) Ready() bool {
	return s.Sender != "" && s.Receiver != "" && s.RoomID != ""
}

// Outbound is the payload of an outgoing message.
type Outbound struct {
	Content  string `json:"content"`
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	RoomID   string `json:"roomId"`
}

// Campaign is the project a room list belongs to.
type Campaign struct {
	ID        string
	Title     string
	Creator   string
	KeyVision string
}
