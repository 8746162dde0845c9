package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/immxrtalbeast/lingualink/internal/store"
	"github.com/immxrtalbeast/lingualink/lib/logger/sl"
)

var ErrUnsupportedSignal = errors.New("unsupported signal type")

// SignalingService coordinates room membership and relays negotiation
// traffic between participants. It owns no transport: controllers hand
// it clients, it hands events back through each client's queue.
type SignalingService struct {
	registry *store.Registry
	rooms    *store.RoomTable
	log      *slog.Logger
}

func NewSignalingService(registry *store.Registry, rooms *store.RoomTable, log *slog.Logger) *SignalingService {
	if log == nil {
		log = slog.Default()
	}
	return &SignalingService{
		registry: registry,
		rooms:    rooms,
		log:      log,
	}
}

// Join moves the client into the requested room and delivers the
// pre-existing membership snapshot to it, in the same step that adds
// it to the room table. The rest of the room hears user-joined.
//
// Re-joining the room the client is already in is a no-op beyond the
// snapshot being sent again; joining a different room runs the leave
// path for the old room first, so a client never exists in two rooms.
func (s *SignalingService) Join(client *domain.Client, req domain.JoinRequest) {
	const op = "service.signaling.join"
	log := s.log.With(
		slog.String("op", op),
		slog.String("room_id", req.RoomID),
		slog.String("participant_id", req.Participant.ID),
	)

	if old := client.Room(); old != "" && old != req.RoomID {
		s.leave(client, old)
	}

	client.SetParticipant(req.Participant)
	s.registry.Register(client)

	s.rooms.Join(req.RoomID, req.Participant.ID, func(existing []string, already bool) {
		client.SetRoom(req.RoomID)

		snapshot := s.resolveParticipants(existing)
		s.send(client, domain.Event{
			Type:  domain.EventRoomUsers,
			Room:  req.RoomID,
			Users: snapshot,
		})

		if already {
			// The set absorbed the duplicate; re-broadcasting would
			// stampede the other clients into duplicate peer links.
			log.Debug("duplicate join ignored")
			return
		}

		joined := req.Participant
		s.fanOut(existing, domain.Event{
			Type: domain.EventUserJoined,
			Room: req.RoomID,
			User: &joined,
		})

		log.Info("participant joined", slog.Int("existing", len(existing)))
	})
}

// Leave handles an explicit leave-room. Leaving while not joined is a
// quiet no-op.
func (s *SignalingService) Leave(client *domain.Client) {
	roomID := client.Room()
	if roomID == "" {
		return
	}
	s.leave(client, roomID)
}

// Disconnect is the transport-loss path. It drives the same cleanup
// as an explicit leave; observing the same connection twice finds no
// registry entry and does nothing.
func (s *SignalingService) Disconnect(connID string) {
	const op = "service.signaling.disconnect"

	client, ok := s.registry.Unregister(connID)
	if !ok {
		return
	}

	pid := client.ParticipantInfo().ID

	// A reconnect rebinds the participant to a newer connection before
	// the old socket dies. When that stale close finally arrives the
	// participant is still live; tearing down its membership here would
	// kick the fresh connection out of the room.
	if _, live := s.registry.Resolve(pid); live {
		s.log.Debug("stale disconnect ignored, participant reconnected",
			slog.String("op", op),
			slog.String("conn_id", connID),
			slog.String("participant_id", pid),
		)
		return
	}

	s.log.Info("connection lost",
		slog.String("op", op),
		slog.String("conn_id", connID),
		slog.String("participant_id", pid),
	)

	if roomID := client.Room(); roomID != "" {
		s.leave(client, roomID)
	}
}

func (s *SignalingService) leave(client *domain.Client, roomID string) {
	const op = "service.signaling.leave"
	pid := client.ParticipantInfo().ID

	s.rooms.Remove(roomID, pid, func(remaining []string, removed bool) {
		client.SetRoom("")
		if !removed {
			return
		}

		s.fanOut(remaining, domain.Event{
			Type: domain.EventUserLeft,
			Room: roomID,
			From: pid,
		})

		s.log.Info("participant left",
			slog.String("op", op),
			slog.String("room_id", roomID),
			slog.String("participant_id", pid),
			slog.Int("remaining", len(remaining)),
		)
	})
}

// Relay forwards an offer, answer or ICE candidate to the named target
// without looking at the payload. An unresolvable target is dropped
// silently: by the time delivery fails the sender is already getting a
// user-left for that participant.
func (s *SignalingService) Relay(sender *domain.Client, ev domain.Event) {
	const op = "service.signaling.relay"
	log := s.log.With(
		slog.String("op", op),
		slog.String("type", string(ev.Type)),
		slog.String("to", ev.To),
	)

	if ev.To == "" {
		log.Debug("relay without target dropped")
		return
	}

	target, ok := s.registry.Resolve(ev.To)
	if !ok || target.Room() != sender.Room() {
		log.Debug("relay target not in room, dropped")
		return
	}

	forward := ev
	forward.Room = sender.Room()
	forward.From = sender.ParticipantInfo().ID
	s.send(target, forward)
}

// Participants resolves the room's current members to their display
// identities.
func (s *SignalingService) Participants(roomID string) []domain.Participant {
	return s.resolveParticipants(s.rooms.Members(roomID))
}

func (s *SignalingService) resolveParticipants(ids []string) []domain.Participant {
	out := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		if client, ok := s.registry.Resolve(id); ok {
			out = append(out, client.ParticipantInfo())
			continue
		}
		// Synthesized or reconnecting identity with no live connection;
		// the id alone is still enough for peer matching.
		out = append(out, domain.Participant{ID: id})
	}
	return out
}

func (s *SignalingService) fanOut(ids []string, ev domain.Event) {
	for _, id := range ids {
		client, ok := s.registry.Resolve(id)
		if !ok {
			continue
		}
		s.send(client, ev)
	}
}

func (s *SignalingService) send(client *domain.Client, ev domain.Event) {
	if !client.EnqueueEvent(ev) {
		s.log.Debug("dropping event, client queue full",
			slog.String("participant_id", client.ParticipantInfo().ID),
			slog.String("type", string(ev.Type)),
		)
	}
}

// Broadcast sends an event to every member of the room except the
// excluded participant id (empty string excludes nobody).
func (s *SignalingService) Broadcast(roomID string, ev domain.Event, exclude string) {
	for _, id := range s.rooms.Members(roomID) {
		if id == exclude {
			continue
		}
		if client, ok := s.registry.Resolve(id); ok {
			s.send(client, ev)
		}
	}
}

// ChatSink persists chat traffic when a directory is configured.
type ChatSink interface {
	SaveChatMessage(ctx context.Context, msg *domain.ChatMessage) error
}

// HandleChat broadcasts a chat message room-wide, including the sender,
// and persists it best-effort.
func (s *SignalingService) HandleChat(ctx context.Context, sink ChatSink, sender *domain.Client, text string) {
	const op = "service.signaling.chat"

	roomID := sender.Room()
	if roomID == "" || text == "" {
		return
	}

	msg := domain.NewChatMessage(roomID, sender.ParticipantInfo(), text)
	if sink != nil {
		if err := sink.SaveChatMessage(ctx, msg); err != nil {
			s.log.Error("failed to save chat message", slog.String("op", op), sl.Err(err))
		}
	}

	s.Broadcast(roomID, domain.Event{
		Type: domain.EventChat,
		Room: roomID,
		From: msg.SenderID,
		Payload: map[string]any{
			"id":        msg.ID.String(),
			"sender":    msg.DisplayName,
			"message":   msg.Content,
			"timestamp": msg.CreatedAt,
		},
	}, "")
}
