package origin

import (
	"encoding/json"
	"time"

	"github.com/matheus3301/campchat/internal/chat"
)

// Person is a sender or receiver as embedded in a message.
type Person struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// RoomRef is the room a message belongs to, populated by the origin.
type RoomRef struct {
	ID             string    `json:"_id"`
	Participants   [2]string `json:"participants"`
	ProjectCreator string    `json:"projectCreator"`
	// ProjectID is either an id string or a populated project object.
	ProjectID json.RawMessage `json:"projectId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// WireMessage is a message as returned by the REST endpoints.
type WireMessage struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Sender    Person    `json:"sender"`
	Receiver  Person    `json:"receiver"`
	RoomID    RoomRef   `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message converts to the domain type.
func (w WireMessage) Message() chat.Message {
	return chat.Message{
		ID:         w.ID,
		Content:    w.Content,
		SenderID:   w.Sender.ID,
		ReceiverID: w.Receiver.ID,
		RoomID:     w.RoomID.ID,
		CreatedAt:  w.CreatedAt,
	}
}

// Project is the campaign card data.
type Project struct {
	Creator   string `json:"creator"`
	KeyVision string `json:"keyVision"`
	Title     string `json:"title"`
}

// ChatRoom is one entry of the room list response.
type ChatRoom struct {
	CustomerID string        `json:"customerId"`
	Messages   []WireMessage `json:"message"`
}

// RoomList is the response of the room list endpoint.
type RoomList struct {
	Project   Project    `json:"project"`
	ChatRooms []ChatRoom `json:"chatRooms"`
}
