// Package socket is the real-time transport to the origin: a websocket
// carrying JSON envelopes of the form {"event": name, "data": payload}.
package socket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matheus3301/campchat/internal/chat"
)

// Event names understood by the origin.
const (
	EventJoinRoom  = "joinRoom"
	EventLeaveRoom = "leaveRoom"
	EventMessage   = "message"
)

// Event is one envelope on the wire.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes data into an envelope.
func NewEvent(name string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s: %w", name, err)
	}
	return Event{Name: name, Data: raw}, nil
}

// Push is the payload of an inbound message event.
type Push struct {
	ID        string     `json:"_id,omitempty"`
	Content   string     `json:"content"`
	Sender    string     `json:"sender"`
	Receiver  string     `json:"receiver"`
	RoomID    string     `json:"roomId"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// DecodePush parses the data of a message event.
func DecodePush(ev Event) (Push, error) {
	var p Push
	if err := json.Unmarshal(ev.Data, &p); err != nil {
		return Push{}, fmt.Errorf("decode %s push: %w", ev.Name, err)
	}
	if p.RoomID == "" {
		return Push{}, fmt.Errorf("decode %s push: missing roomId", ev.Name)
	}
	return p, nil
}

// Message converts the push to a chat message. A push the origin did not
// timestamp is stamped with receivedAt.
func (p Push) Message(receivedAt time.Time) chat.Message {
	created := receivedAt
	if p.CreatedAt != nil && !p.CreatedAt.IsZero() {
		created = *p.CreatedAt
	}
	return chat.Message{
		ID:         p.ID,
		Content:    p.Content,
		SenderID:   p.Sender,
		ReceiverID: p.Receiver,
		RoomID:     p.RoomID,
		CreatedAt:  created,
	}
}
