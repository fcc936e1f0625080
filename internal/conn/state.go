package conn

import "errors"

var (
	ErrNotConnected = errors.New("conn: not connected")
	ErrRoomJoined   = errors.New("conn: a room is already joined")
	ErrNotJoined    = errors.New("conn: room not joined")
)

// Kind is the session state of a manager.
type Kind int

const (
	Disconnected Kind = iota
	Connected
)

func (k Kind) String() string {
	if k == Connected {
		return "connected"
	}
	return "disconnected"
}

// State is the session held by a manager: connected or not, and the one
// room joined, if any. Transitions are pure.
type State struct {
	Kind   Kind
	RoomID string
}

// Connect moves to Connected, keeping any joined room.
func (s State) Connect() State {
	s.Kind = Connected
	return s
}

// Disconnect drops the session and its room.
func (s State) Disconnect() State {
	return State{}
}

// Join joins roomID. Switching rooms requires leaving first.
func (s State) Join(roomID string) (State, error) {
	if s.Kind != Connected {
		return s, ErrNotConnected
	}
	if s.RoomID != "" {
		return s, ErrRoomJoined
	}
	return State{Kind: Connected, RoomID: roomID}, nil
}

// Leave leaves roomID, which must be the joined room.
func (s State) Leave(roomID string) (State, error) {
	if s.Kind != Connected {
		return s, ErrNotConnected
	}
	if s.RoomID == "" || s.RoomID != roomID {
		return s, ErrNotJoined
	}
	return State{Kind: Connected}, nil
}
