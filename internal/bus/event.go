package bus

import "time"

// Event kinds published by the connection layer.
const (
	KindConnStatus  = "conn.status_changed"
	KindPushMessage = "push.message"
)

// Event is something that happened on the connection, fanned out to
// whoever subscribed to its namespace.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
