package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		origin  string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/socket", false},
		{"https://api.example.com/", "wss://api.example.com/socket", false},
		{"https://api.example.com/v1?x=1", "wss://api.example.com/v1/socket", false},
		{"ftp://nope", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			got, err := EndpointURL(tt.origin)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EndpointURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("EndpointURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPushMessageStampsMissingCreatedAt(t *testing.T) {
	received := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ev := Event{Name: EventMessage, Data: []byte(`{"content":"hi","sender":"c1","receiver":"a1","roomId":"r1"}`)}
	p, err := DecodePush(ev)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Message(received).CreatedAt; !got.Equal(received) {
		t.Errorf("CreatedAt = %v, want receipt time", got)
	}

	ev.Data = []byte(`{"_id":"m9","content":"hi","sender":"c1","receiver":"a1","roomId":"r1","createdAt":"2024-04-30T08:00:00Z"}`)
	p, err = DecodePush(ev)
	if err != nil {
		t.Fatal(err)
	}
	m := p.Message(received)
	if m.ID != "m9" || m.CreatedAt.Hour() != 8 || m.SenderID != "c1" || m.ReceiverID != "a1" {
		t.Errorf("Message() = %+v", m)
	}
}

func TestDecodePushRejectsMissingRoom(t *testing.T) {
	if _, err := DecodePush(Event{Name: EventMessage, Data: []byte(`{"content":"x"}`)}); err == nil {
		t.Error("expected error for push without roomId")
	}
	if _, err := DecodePush(Event{Name: EventMessage, Data: []byte(`nope`)}); err == nil {
		t.Error("expected error for malformed payload")
	}
}

// echoServer reflects every envelope back, and records the auth header.
func echoServer(t *testing.T, auth chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/socket" {
			http.NotFound(w, r)
			return
		}
		auth <- r.Header.Get("Authorization")
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := Wrap(ws)
		defer c.Close()
		for {
			ev, err := c.Next()
			if err != nil {
				return
			}
			if err := c.WriteEvent(ev); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDialEmitNext(t *testing.T) {
	auth := make(chan string, 1)
	srv := echoServer(t, auth)

	d, err := NewDialer(srv.URL, "secret")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := d.Dial(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if got := <-auth; got != "Bearer secret" {
		t.Errorf("Authorization = %q", got)
	}

	if err := c.Emit(EventJoinRoom, "r1"); err != nil {
		t.Fatal(err)
	}
	ev, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Name != EventJoinRoom || string(ev.Data) != `"r1"` {
		t.Errorf("echo = %s %s", ev.Name, ev.Data)
	}

	if err := c.Emit(EventMessage, map[string]string{"content": "<b>&</b>", "roomId": "r1"}); err != nil {
		t.Fatal(err)
	}
	ev, err = c.Next()
	if err != nil {
		t.Fatal(err)
	}
	p, err := DecodePush(ev)
	if err != nil {
		t.Fatal(err)
	}
	if p.Content != "<b>&</b>" {
		t.Errorf("content = %q, html must round-trip unescaped", p.Content)
	}
}

func TestDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d, err := NewDialer(srv.URL, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Dial(context.Background()); err == nil {
		t.Error("Dial() should fail against a non-websocket endpoint")
	}
}
