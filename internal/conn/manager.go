// Package conn owns the widget's single real-time connection: room
// membership, sends, pushed messages and reconnection.
package conn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/matheus3301/campchat/internal/bus"
	"github.com/matheus3301/campchat/internal/chat"
	"github.com/matheus3301/campchat/internal/socket"
	"github.com/matheus3301/campchat/internal/status"
)

const (
	defaultMaxElapsed = 5 * time.Minute
	pushBuffer        = 256
)

// Option configures a Manager.
type Option func(*Manager)

// WithBackOff sets the policy used between reconnect attempts.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(m *Manager) { m.newBackOff = fn }
}

// WithMaxElapsed bounds how long reconnection is attempted before giving up.
func WithMaxElapsed(d time.Duration) Option {
	return func(m *Manager) { m.maxElapsed = d }
}

// WithClock overrides the receipt clock used to stamp untimed pushes.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager is a connection to the origin. Pushed messages are published on
// the bus; connectivity changes go through the status machine.
type Manager struct {
	dialer     socket.Dialer
	bus        *bus.Bus
	status     *status.Machine
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
	maxElapsed time.Duration
	now        func() time.Time

	mu     sync.Mutex
	state  State
	sock   socket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a disconnected manager.
func NewManager(d socket.Dialer, b *bus.Bus, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if b == nil {
		b = bus.New()
	}
	m := &Manager{
		dialer: d,
		bus:    b,
		status: status.NewMachine(b),
		logger: logger,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		maxElapsed: defaultMaxElapsed,
		now:        time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Status returns the transport connectivity.
func (m *Manager) Status() status.State {
	return m.status.Current()
}

// Bus returns the bus events are published on.
func (m *Manager) Bus() *bus.Bus {
	return m.bus
}

// Connect dials the origin. Calling it while connected is a no-op.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Kind == Connected {
		return nil
	}

	m.transition(status.Connecting)
	sock, err := m.dialer.Dial(ctx)
	if err != nil {
		m.transition(status.Disconnected)
		return fmt.Errorf("connect: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.sock = sock
	m.cancel = cancel
	m.state = m.state.Connect()
	m.transition(status.Connected)

	m.wg.Add(1)
	go m.run(runCtx, sock)
	return nil
}

// JoinRoom subscribes to pushes for roomID.
func (m *Manager) JoinRoom(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := m.state.Join(roomID)
	if err != nil {
		return err
	}
	m.state = next
	m.emit(socket.EventJoinRoom, roomID)
	return nil
}

// LeaveRoom unsubscribes from roomID.
func (m *Manager) LeaveRoom(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := m.state.Leave(roomID)
	if err != nil {
		return err
	}
	m.state = next
	m.emit(socket.EventLeaveRoom, roomID)
	return nil
}

// Send emits an outbound message. Delivery is not confirmed; the origin
// echoes the message back as a push.
func (m *Manager) Send(msg chat.Outbound) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Kind != Connected {
		return ErrNotConnected
	}
	m.emit(socket.EventMessage, msg)
	return nil
}

// Disconnect closes the connection. Safe to call repeatedly.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.state.Kind == Disconnected && m.cancel == nil {
		m.mu.Unlock()
		return
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.sock != nil {
		_ = m.sock.Close()
		m.sock = nil
	}
	m.state = m.state.Disconnect()
	m.transition(status.Disconnected)
	m.mu.Unlock()

	m.wg.Wait()
}

// OnMessage calls handler for every pushed message until the returned
// function is called. handler runs on a bus goroutine.
func (m *Manager) OnMessage(handler func(chat.Message)) func() {
	return m.bus.Handle(bus.KindPushMessage, pushBuffer, func(evt bus.Event) {
		if msg, ok := evt.Payload.(chat.Message); ok {
			handler(msg)
		}
	})
}

// emit writes on the live socket. Write failures are logged only.
// Must be called with mu held.
func (m *Manager) emit(name string, data any) {
	if m.sock == nil {
		m.logger.Warn("socket down, event dropped", zap.String("event", name))
		return
	}
	if err := m.sock.Emit(name, data); err != nil {
		m.logger.Warn("emit failed", zap.String("event", name), zap.Error(err))
	}
}

func (m *Manager) transition(to status.State) {
	if err := m.status.Transition(to); err != nil {
		m.logger.Debug("status transition skipped", zap.Error(err))
	}
}

func (m *Manager) run(ctx context.Context, sock socket.Conn) {
	defer m.wg.Done()
	for {
		m.read(ctx, sock)
		if ctx.Err() != nil {
			return
		}
		sock = m.reconnect(ctx)
		if sock == nil {
			return
		}
	}
}

func (m *Manager) read(ctx context.Context, sock socket.Conn) {
	for {
		ev, err := sock.Next()
		if err != nil {
			if ctx.Err() == nil {
				m.logger.Warn("socket dropped", zap.Error(err))
			}
			return
		}
		if ev.Name != socket.EventMessage {
			m.logger.Debug("ignoring event", zap.String("event", ev.Name))
			continue
		}
		push, err := socket.DecodePush(ev)
		if err != nil {
			m.logger.Warn("bad push", zap.Error(err))
			continue
		}
		m.bus.Publish(bus.Event{Kind: bus.KindPushMessage, Payload: push.Message(m.now())})
	}
}

// reconnect redials with backoff and re-joins the active room. Returns nil
// when the manager was disconnected or attempts ran out.
func (m *Manager) reconnect(ctx context.Context) socket.Conn {
	m.mu.Lock()
	if ctx.Err() != nil {
		m.mu.Unlock()
		return nil
	}
	if m.sock != nil {
		_ = m.sock.Close()
		m.sock = nil
	}
	m.transition(status.Reconnecting)
	m.mu.Unlock()

	sock, err := backoff.Retry(ctx, func() (socket.Conn, error) {
		return m.dialer.Dial(ctx)
	},
		backoff.WithBackOff(m.newBackOff()),
		backoff.WithMaxElapsedTime(m.maxElapsed),
		backoff.WithNotify(func(err error, wait time.Duration) {
			m.logger.Info("reconnect attempt failed", zap.Error(err), zap.Duration("retry_in", wait))
		}),
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil {
		if sock != nil {
			_ = sock.Close()
		}
		return nil
	}
	if err != nil {
		m.logger.Error("reconnect gave up", zap.Error(err))
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.state = m.state.Disconnect()
		m.transition(status.Disconnected)
		return nil
	}

	m.sock = sock
	m.transition(status.Connected)
	if room := m.state.RoomID; room != "" {
		m.emit(socket.EventJoinRoom, room)
	}
	m.logger.Info("reconnected", zap.String("room", m.state.RoomID))
	return sock
}
