package rtc

import (
	"log/slog"
	"sync"
	"time"

	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/pion/webrtc/v3"
)

// LinkSet holds at most one PeerLink per remote participant and drives
// them from room events. Creation is guarded: a second trigger for the
// same remote reuses the existing link, it never overwrites it.
type LinkSet struct {
	mu    sync.Mutex
	links map[string]*PeerLink

	localID        string
	sessions       SessionFactory
	signaler       Signaler
	recoveryWindow time.Duration
	log            *slog.Logger

	// OnPeerGone fires when a remote participant is no longer
	// reachable: it left, or its link failed past the recovery window.
	OnPeerGone func(remoteID string)
}

func NewLinkSet(localID string, sessions SessionFactory, signaler Signaler, recoveryWindow time.Duration, log *slog.Logger) *LinkSet {
	if log == nil {
		log = slog.Default()
	}
	return &LinkSet{
		links:          make(map[string]*PeerLink),
		localID:        localID,
		sessions:       sessions,
		signaler:       signaler,
		recoveryWindow: recoveryWindow,
		log:            log,
	}
}

// HandleRoomUsers offers to every pre-existing member from the join
// snapshot. Existing members offer back on their user-joined notice;
// the glare rule sorts out the collisions.
func (s *LinkSet) HandleRoomUsers(users []domain.Participant) {
	for _, user := range users {
		s.offerTo(user.ID)
	}
}

func (s *LinkSet) HandleUserJoined(user domain.Participant) {
	s.offerTo(user.ID)
}

func (s *LinkSet) offerTo(remoteID string) {
	if remoteID == "" || remoteID == s.localID {
		return
	}

	link, created, err := s.ensure(remoteID)
	if err != nil {
		s.log.Error("failed to create peer link",
			slog.String("remote_id", remoteID), slog.Any("error", err))
		return
	}
	if !created {
		return
	}
	if err := link.Offer(); err != nil {
		s.log.Error("offer failed",
			slog.String("remote_id", remoteID), slog.Any("error", err))
	}
}

func (s *LinkSet) HandleUserLeft(remoteID string) {
	s.mu.Lock()
	link, ok := s.links[remoteID]
	delete(s.links, remoteID)
	s.mu.Unlock()

	if !ok {
		return
	}
	link.Close()
	if s.OnPeerGone != nil {
		s.OnPeerGone(remoteID)
	}
}

// HandleOffer routes a relayed offer, creating the link if this is the
// first contact with that remote.
func (s *LinkSet) HandleOffer(from string, sdp webrtc.SessionDescription) {
	if from == "" || from == s.localID {
		return
	}

	link, _, err := s.ensure(from)
	if err != nil {
		s.log.Error("failed to create peer link for offer",
			slog.String("remote_id", from), slog.Any("error", err))
		return
	}
	if err := link.HandleOffer(sdp); err != nil {
		s.log.Error("handling offer failed",
			slog.String("remote_id", from), slog.Any("error", err))
	}
}

func (s *LinkSet) HandleAnswer(from string, sdp webrtc.SessionDescription) {
	link, ok := s.lookup(from)
	if !ok {
		s.log.Debug("answer for unknown link dropped", slog.String("remote_id", from))
		return
	}
	if err := link.HandleAnswer(sdp); err != nil {
		s.log.Error("handling answer failed",
			slog.String("remote_id", from), slog.Any("error", err))
	}
}

func (s *LinkSet) HandleCandidate(from string, candidate webrtc.ICECandidateInit) {
	link, ok := s.lookup(from)
	if !ok {
		// The link was torn down or never negotiated; nothing to
		// apply the candidate to.
		s.log.Debug("candidate for unknown link dropped", slog.String("remote_id", from))
		return
	}
	link.HandleCandidate(candidate)
}

func (s *LinkSet) ensure(remoteID string) (*PeerLink, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link, ok := s.links[remoteID]; ok {
		return link, false, nil
	}

	session, err := s.sessions(SessionCallbacks{
		OnCandidate: func(candidate webrtc.ICECandidateInit) {
			if err := s.signaler.SendCandidate(remoteID, candidate); err != nil {
				s.log.Debug("sending candidate failed",
					slog.String("remote_id", remoteID), slog.Any("error", err))
			}
		},
		// Sessions fire connectivity from their own goroutines; going
		// through lookup keeps the hand-off to the link synchronized
		// instead of racing the link's construction.
		OnConnectivity: func(state ConnectivityState) {
			if link, ok := s.lookup(remoteID); ok {
				link.HandleConnectivity(state)
			}
		},
	})
	if err != nil {
		return nil, false, err
	}

	link := NewPeerLink(s.localID, remoteID, session, s.signaler, s.recoveryWindow, s.log, s.linkGone)
	s.links[remoteID] = link
	return link, true, nil
}

func (s *LinkSet) linkGone(remoteID string) {
	s.mu.Lock()
	delete(s.links, remoteID)
	s.mu.Unlock()

	if s.OnPeerGone != nil {
		s.OnPeerGone(remoteID)
	}
}

func (s *LinkSet) lookup(remoteID string) (*PeerLink, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.links[remoteID]
	return link, ok
}

func (s *LinkSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

func (s *LinkSet) CloseAll() {
	s.mu.Lock()
	links := make([]*PeerLink, 0, len(s.links))
	for _, link := range s.links {
		links = append(links, link)
	}
	s.links = make(map[string]*PeerLink)
	s.mu.Unlock()

	for _, link := range links {
		link.Close()
	}
}
