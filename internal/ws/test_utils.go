package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

// fakeConn is an in-memory Conn for hub and registry tests. Frames queued
// with queueFrame are served to ReadMessage; text writes are recorded.
type fakeConn struct {
	mu         sync.Mutex
	writes     [][]byte
	failWrites bool

	readCh    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		readCh: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeConn) queueFrame(frame []byte) {
	f.readCh <- frame
}

func (f *fakeConn) setFailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

func (f *fakeConn) textWrites() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([][]byte, len(f.writes))
	copy(snapshot, f.writes)
	return snapshot
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-f.readCh:
		return websocket.TextMessage, frame, nil
	case <-f.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if f.isClosed() {
		return errors.New("use of closed network connection")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("broken pipe")
	}
	if messageType == websocket.TextMessage {
		buf := make([]byte, len(data))
		copy(buf, data)
		f.writes = append(f.writes, buf)
	}
	return nil
}

func (f *fakeConn) SetReadLimit(limit int64) {}

func (f *fakeConn) SetReadDeadline(t time.Time) error { return nil }

func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeConn) SetPongHandler(h func(string) error) {}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

type fakePrincipal struct {
	role     models.Role
	identity string
}

// fakeAuthenticator resolves fixed tokens to principals.
type fakeAuthenticator struct {
	tokens map[string]fakePrincipal
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string, role models.Role) (string, error) {
	p, ok := f.tokens[token]
	if !ok || p.role != role {
		return "", errors.New("invalid token")
	}
	return p.identity, nil
}

type presenceEvent struct {
	online   bool
	role     models.Role
	identity string
}

// fakePresence records online/offline transitions.
type fakePresence struct {
	mu     sync.Mutex
	events []presenceEvent
}

func (f *fakePresence) SetOnline(ctx context.Context, role models.Role, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, presenceEvent{online: true, role: role, identity: identity})
	return nil
}

func (f *fakePresence) SetOffline(ctx context.Context, role models.Role, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, presenceEvent{online: false, role: role, identity: identity})
	return nil
}

func (f *fakePresence) snapshot() []presenceEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]presenceEvent, len(f.events))
	copy(events, f.events)
	return events
}
