package rtc

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/pion/webrtc/v3"
)

var ErrGaveUp = errors.New("all signaling endpoints exhausted")

// Client is a headless signaling client: it dials the server, joins a
// room, keeps a LinkSet converged with the room's membership, and
// re-dials with backoff when the transport drops. A reconnect re-runs
// the join path, which is how a partitioned client re-enters the room.
type Client struct {
	local  domain.Participant
	roomID string

	recon *Reconnector
	links *LinkSet
	log   *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	// OnEvent receives events the link set does not consume (chat,
	// transcription, translated-text). Optional.
	OnEvent func(ev domain.Event)
}

func NewClient(local domain.Participant, roomID string, endpoints []string, policy ReconnectPolicy, sessions SessionFactory, recoveryWindow time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		local:  local,
		roomID: roomID,
		recon:  NewReconnector(policy, endpoints),
		log:    log.With(slog.String("participant_id", local.ID)),
	}
	c.links = NewLinkSet(local.ID, sessions, c, recoveryWindow, log)
	return c
}

// Links exposes the peer link set, mainly for the owner's teardown and
// peer-gone wiring.
func (c *Client) Links() *LinkSet {
	return c.links
}

// Run connects, joins and serves events until ctx is cancelled or
// every endpoint is exhausted.
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.connect(ctx); err != nil {
			return err
		}

		err := c.serve(ctx)
		c.links.CloseAll()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Info("transport lost, reconnecting", slog.Any("error", err))
	}
}

func (c *Client) connect(ctx context.Context) error {
	for {
		endpoint, delay, ok := c.recon.Next()
		if !ok {
			return ErrGaveUp
		}
		if delay > 0 {
			c.log.Info("waiting before reconnect",
				slog.Duration("delay", delay), slog.String("endpoint", endpoint))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			c.log.Warn("dial failed",
				slog.String("endpoint", endpoint), slog.Any("error", err))
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.recon.Reset()

		return c.send(domain.Event{
			Type: domain.EventJoinRoom,
			Room: c.roomID,
			User: &c.local,
		})
	}
}

func (c *Client) serve(ctx context.Context) error {
	conn := c.current()
	for {
		var ev domain.Event
		if err := conn.ReadJSON(&ev); err != nil {
			conn.Close()
			return err
		}
		if ctx.Err() != nil {
			conn.Close()
			return ctx.Err()
		}
		c.dispatch(ev)
	}
}

func (c *Client) dispatch(ev domain.Event) {
	switch ev.Type {
	case domain.EventRoomUsers:
		c.links.HandleRoomUsers(ev.Users)
	case domain.EventUserJoined:
		if ev.User != nil {
			c.links.HandleUserJoined(*ev.User)
		}
	case domain.EventUserLeft:
		c.links.HandleUserLeft(ev.From)
	case domain.EventOffer:
		if ev.SDP != nil {
			c.links.HandleOffer(ev.From, *ev.SDP)
		}
	case domain.EventAnswer:
		if ev.SDP != nil {
			c.links.HandleAnswer(ev.From, *ev.SDP)
		}
	case domain.EventICECandidate:
		if ev.Candidate != nil {
			c.links.HandleCandidate(ev.From, *ev.Candidate)
		}
	default:
		if c.OnEvent != nil {
			c.OnEvent(ev)
		}
	}
}

// Leave tells the server goodbye and closes the transport.
func (c *Client) Leave() {
	_ = c.send(domain.Event{Type: domain.EventLeaveRoom, Room: c.roomID})
	c.links.CloseAll()
	if conn := c.current(); conn != nil {
		conn.Close()
	}
}

func (c *Client) SendOffer(to string, sdp webrtc.SessionDescription) error {
	return c.send(domain.Event{Type: domain.EventOffer, To: to, SDP: &sdp})
}

func (c *Client) SendAnswer(to string, sdp webrtc.SessionDescription) error {
	return c.send(domain.Event{Type: domain.EventAnswer, To: to, SDP: &sdp})
}

func (c *Client) SendCandidate(to string, candidate webrtc.ICECandidateInit) error {
	return c.send(domain.Event{Type: domain.EventICECandidate, To: to, Candidate: &candidate})
}

func (c *Client) send(ev domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("not connected")
	}
	return c.conn.WriteJSON(ev)
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}
