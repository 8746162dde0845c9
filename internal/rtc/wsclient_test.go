package rtc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immxrtalbeast/lingualink/internal/domain"
)

// stubServer is a minimal signaling endpoint: it records everything the
// client sends and lets the test push events back.
type stubServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	received chan domain.Event

	mu    sync.Mutex
	conns []*websocket.Conn
	dials int
}

func newStubServer(t *testing.T) *stubServer {
	t.Helper()
	s := &stubServer{received: make(chan domain.Event, 32)}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.dials++
		s.mu.Unlock()

		for {
			var ev domain.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			s.received <- ev
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stubServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *stubServer) push(t *testing.T, ev domain.Event) {
	t.Helper()
	s.mu.Lock()
	conn := s.conns[len(s.conns)-1]
	s.mu.Unlock()
	require.NoError(t, conn.WriteJSON(ev))
}

func (s *stubServer) dropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
}

func (s *stubServer) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

func waitEvent(t *testing.T, s *stubServer, want domain.EventType) domain.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.received:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("never received %s", want)
		}
	}
}

func passiveFactory() (*fakeSessionFactory, SessionFactory) {
	factory := &fakeSessionFactory{}
	return factory, factory.factory
}

func TestClientJoinsAndOffersToSnapshot(t *testing.T) {
	server := newStubServer(t)
	_, sessions := passiveFactory()

	client := NewClient(
		domain.Participant{ID: "a", Name: "Alice"},
		"r1",
		[]string{server.url()},
		DefaultReconnectPolicy(),
		sessions,
		time.Minute,
		testLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	join := waitEvent(t, server, domain.EventJoinRoom)
	assert.Equal(t, "r1", join.Room)
	require.NotNil(t, join.User)
	assert.Equal(t, "a", join.User.ID)

	// The snapshot names one existing member; the client must open a
	// link and offer to it through us.
	server.push(t, domain.Event{
		Type:  domain.EventRoomUsers,
		Room:  "r1",
		Users: []domain.Participant{{ID: "b", Name: "Bob"}},
	})

	offer := waitEvent(t, server, domain.EventOffer)
	assert.Equal(t, "b", offer.To)
	require.NotNil(t, offer.SDP)
	assert.Equal(t, 1, client.Links().Len())

	cancel()
	server.dropAll()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("client never stopped")
	}
}

func TestClientReconnectsAndRejoins(t *testing.T) {
	server := newStubServer(t)
	_, sessions := passiveFactory()

	client := NewClient(
		domain.Participant{ID: "a"},
		"r1",
		[]string{server.url()},
		ReconnectPolicy{BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, MaxAttempts: 8},
		sessions,
		time.Minute,
		testLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	waitEvent(t, server, domain.EventJoinRoom)

	// Kill the transport; the client must come back and join again.
	server.dropAll()
	waitEvent(t, server, domain.EventJoinRoom)
	assert.GreaterOrEqual(t, server.dialCount(), 2)

	cancel()
	server.dropAll()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client never stopped")
	}
}

func TestClientGivesUpWhenEndpointsExhausted(t *testing.T) {
	_, sessions := passiveFactory()

	// Nothing listens here; every dial fails until the budget is gone.
	client := NewClient(
		domain.Participant{ID: "a"},
		"r1",
		[]string{"ws://127.0.0.1:1"},
		ReconnectPolicy{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxAttempts: 2},
		sessions,
		time.Minute,
		testLogger(),
	)

	err := client.Run(context.Background())
	assert.ErrorIs(t, err, ErrGaveUp)
}

func TestClientRoutesUnconsumedEventsToOnEvent(t *testing.T) {
	server := newStubServer(t)
	_, sessions := passiveFactory()

	client := NewClient(
		domain.Participant{ID: "a"},
		"r1",
		[]string{server.url()},
		DefaultReconnectPolicy(),
		sessions,
		time.Minute,
		testLogger(),
	)

	got := make(chan domain.Event, 1)
	client.OnEvent = func(ev domain.Event) { got <- ev }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	waitEvent(t, server, domain.EventJoinRoom)
	server.push(t, domain.Event{
		Type:    domain.EventChat,
		Room:    "r1",
		From:    "b",
		Payload: map[string]any{"message": "oi"},
	})

	select {
	case ev := <-got:
		assert.Equal(t, domain.EventChat, ev.Type)
		assert.Equal(t, "oi", ev.Payload["message"])
	case <-time.After(2 * time.Second):
		t.Fatal("chat never reached OnEvent")
	}

	cancel()
	server.dropAll()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("client never stopped")
	}
}
