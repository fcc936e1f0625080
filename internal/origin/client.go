// Package origin is the REST client for the chat backend.
package origin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/chat"
)

const (
	roomListPath = "/chatroom-list"
	messagesPath = "/message"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("origin returned %d", e.Code)
	}
	return fmt.Sprintf("origin returned %d: %s", e.Code, e.Body)
}

// Client talks to the origin over HTTP.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client for the origin at baseURL. A nil hc uses a
// client with a 15s timeout.
func NewClient(baseURL, token string, hc *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("origin url %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{base: u, token: token, http: hc, logger: logger}, nil
}

// FetchMessages returns one page of a room's messages, newest first.
func (c *Client) FetchMessages(ctx context.Context, roomID string, pageIndex, pageSize int) ([]chat.Message, error) {
	q := url.Values{}
	q.Set("roomId", roomID)
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var wire []WireMessage
	if err := c.get(ctx, messagesPath, q, &wire); err != nil {
		return nil, err
	}
	msgs := make([]chat.Message, 0, len(wire))
	for _, w := range wire {
		msgs = append(msgs, w.Message())
	}
	return msgs, nil
}

// ListRooms returns the campaign card and its rooms.
func (c *Client) ListRooms(ctx context.Context, campaignID string) (chat.Campaign, []chat.Room, error) {
	q := url.Values{}
	q.Set("campaignId", campaignID)

	var resp RoomList
	if err := c.get(ctx, roomListPath, q, &resp); err != nil {
		return chat.Campaign{}, nil, err
	}

	campaign := chat.Campaign{
		ID:        campaignID,
		Title:     resp.Project.Title,
		Creator:   resp.Project.Creator,
		KeyVision: resp.Project.KeyVision,
	}
	rooms := make([]chat.Room, 0, len(resp.ChatRooms))
	for _, cr := range resp.ChatRooms {
		r, ok := hydrateRoom(campaignID, cr)
		if !ok {
			c.logger.Warn("skipping room without messages", zap.String("customer_id", cr.CustomerID))
			continue
		}
		rooms = append(rooms, r)
	}
	return campaign, rooms, nil
}

// hydrateRoom derives a room from its embedded messages: the room id and
// participants come from the populated roomId, names and photos from the
// senders and receivers.
func hydrateRoom(campaignID string, cr ChatRoom) (chat.Room, bool) {
	if len(cr.Messages) == 0 {
		return chat.Room{}, false
	}
	people := make(map[string]Person)
	latest := cr.Messages[0]
	for _, w := range cr.Messages {
		people[w.Sender.ID] = w.Sender
		people[w.Receiver.ID] = w.Receiver
		if w.CreatedAt.After(latest.CreatedAt) {
			latest = w
		}
	}

	ref := latest.RoomID
	r := chat.Room{
		RoomID:     ref.ID,
		CampaignID: campaignID,
		CustomerID: cr.CustomerID,
	}
	for i, id := range ref.Participants {
		p := people[id]
		r.Participants[i] = chat.Participant{ID: id, Name: p.Name, Photo: p.Photo}
	}
	msg := latest.Message()
	r.Latest = &msg
	return r, true
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: %w", path, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
