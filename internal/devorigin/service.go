// Package devorigin is a local chat backend speaking the same REST and
// socket protocol as the production origin, backed by SQLite.
package devorigin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/chat"
	"github.com/matheus3301/campchat/internal/origin"
	"github.com/matheus3301/campchat/internal/socket"
	"github.com/matheus3301/campchat/internal/store"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidMessage = errors.New("invalid message")
)

// Service answers origin queries from the store and ingests sent messages.
type Service struct {
	db     *store.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a service over db.
func NewService(db *store.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger, now: time.Now}
}

// RoomList returns the campaign card and, per room, its latest message.
func (s *Service) RoomList(campaignID string) (*origin.RoomList, error) {
	campaign, err := s.db.GetCampaign(campaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	if campaign == nil {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
	}
	rooms, err := s.db.ListRooms(campaignID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	list := &origin.RoomList{
		Project: origin.Project{
			Creator:   campaign.Creator,
			KeyVision: campaign.KeyVision,
			Title:     campaign.Title,
		},
		ChatRooms: make([]origin.ChatRoom, 0, len(rooms)),
	}
	for _, r := range rooms {
		latest, err := s.db.ListMessages(r.ID, 1, 1)
		if err != nil {
			return nil, fmt.Errorf("latest message of %s: %w", r.ID, err)
		}
		wire, err := s.wire(campaign, &r, latest)
		if err != nil {
			return nil, err
		}
		list.ChatRooms = append(list.ChatRooms, origin.ChatRoom{CustomerID: r.CustomerID, Messages: wire})
	}
	return list, nil
}

// Messages returns one page of a room, newest first.
func (s *Service) Messages(roomID string, pageIndex, pageSize int) ([]origin.WireMessage, error) {
	room, campaign, err := s.room(roomID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.db.ListMessages(roomID, pageIndex, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return s.wire(campaign, room, msgs)
}

// Ingest stores an outbound message under a fresh id and server timestamp
// and returns the push to broadcast to the room.
func (s *Service) Ingest(out chat.Outbound) (socket.Push, error) {
	content := strings.TrimSpace(out.Content)
	if content == "" {
		return socket.Push{}, fmt.Errorf("%w: empty content", ErrInvalidMessage)
	}
	room, _, err := s.room(out.RoomID)
	if err != nil {
		return socket.Push{}, err
	}
	participants := map[string]bool{room.CustomerID: true, room.AdminID: true}
	if !participants[out.Sender] || !participants[out.Receiver] || out.Sender == out.Receiver {
		return socket.Push{}, fmt.Errorf("%w: %s -> %s is not a participant pair of room %s",
			ErrInvalidMessage, out.Sender, out.Receiver, room.ID)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	m := &store.Message{
		ID:         uuid.NewString(),
		RoomID:     room.ID,
		SenderID:   out.Sender,
		ReceiverID: out.Receiver,
		Content:    out.Content,
		CreatedAt:  now.UnixMilli(),
	}
	if _, err := s.db.IngestMessage(m); err != nil {
		return socket.Push{}, fmt.Errorf("ingest: %w", err)
	}
	s.logger.Info("message ingested", zap.String("room_id", room.ID), zap.String("id", m.ID))

	return socket.Push{
		ID:        m.ID,
		Content:   m.Content,
		Sender:    m.SenderID,
		Receiver:  m.ReceiverID,
		RoomID:    m.RoomID,
		CreatedAt: &now,
	}, nil
}

func (s *Service) room(roomID string) (*store.Room, *store.Campaign, error) {
	room, err := s.db.GetRoom(roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
	}
	campaign, err := s.db.GetCampaign(room.CampaignID)
	if err != nil {
		return nil, nil, fmt.Errorf("get campaign: %w", err)
	}
	if campaign == nil {
		return nil, nil, fmt.Errorf("campaign %s: %w", room.CampaignID, ErrNotFound)
	}
	return room, campaign, nil
}

// wire populates messages the way the production origin does: sender,
// receiver and room expanded inline.
func (s *Service) wire(campaign *store.Campaign, room *store.Room, msgs []store.Message) ([]origin.WireMessage, error) {
	users, err := s.db.GetUsers(room.CustomerID, room.AdminID)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	person := func(id string) origin.Person {
		u := users[id]
		return origin.Person{ID: id, Name: u.Name, Photo: u.Photo}
	}
	projectID, err := json.Marshal(campaign.ID)
	if err != nil {
		return nil, err
	}
	ref := origin.RoomRef{
		ID:             room.ID,
		Participants:   [2]string{room.CustomerID, room.AdminID},
		ProjectCreator: campaign.Creator,
		ProjectID:      projectID,
		CreatedAt:      time.UnixMilli(room.CreatedAt).UTC(),
		UpdatedAt:      time.UnixMilli(room.UpdatedAt).UTC(),
	}

	out := make([]origin.WireMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, origin.WireMessage{
			ID:        m.ID,
			Content:   m.Content,
			Sender:    person(m.SenderID),
			Receiver:  person(m.ReceiverID),
			RoomID:    ref,
			CreatedAt: time.UnixMilli(m.CreatedAt).UTC(),
			UpdatedAt: time.UnixMilli(m.UpdatedAt).UTC(),
		})
	}
	return out, nil
}
