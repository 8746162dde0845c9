package rtc

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immxrtalbeast/lingualink/internal/domain"
)

// fakeSessionFactory hands out fresh fakeSessions and remembers them in
// creation order.
type fakeSessionFactory struct {
	mu       sync.Mutex
	sessions []*fakeSession
	cbs      []SessionCallbacks
	err      error
}

func (f *fakeSessionFactory) factory(cb SessionCallbacks) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	session := &fakeSession{}
	f.sessions = append(f.sessions, session)
	f.cbs = append(f.cbs, cb)
	return session, nil
}

func newTestLinkSet(localID string) (*LinkSet, *fakeSessionFactory, *fakeSignaler) {
	factory := &fakeSessionFactory{}
	signaler := &fakeSignaler{}
	set := NewLinkSet(localID, factory.factory, signaler, time.Minute, testLogger())
	return set, factory, signaler
}

func TestLinkSetOffersToSnapshot(t *testing.T) {
	set, factory, signaler := newTestLinkSet("me")

	set.HandleRoomUsers([]domain.Participant{{ID: "b"}, {ID: "c"}})

	assert.Equal(t, 2, set.Len())
	assert.Len(t, factory.sessions, 2)
	assert.ElementsMatch(t, []string{"offer", "offer"}, signaler.kinds())
}

func TestLinkSetNeverDuplicatesALink(t *testing.T) {
	set, factory, signaler := newTestLinkSet("me")

	// Snapshot and the user-joined notice both name the same remote.
	set.HandleRoomUsers([]domain.Participant{{ID: "b"}})
	set.HandleUserJoined(domain.Participant{ID: "b"})

	assert.Equal(t, 1, set.Len())
	assert.Len(t, factory.sessions, 1)
	assert.Equal(t, []string{"offer"}, signaler.kinds())
}

func TestLinkSetSkipsSelfAndEmptyIDs(t *testing.T) {
	set, factory, _ := newTestLinkSet("me")

	set.HandleRoomUsers([]domain.Participant{{ID: "me"}, {ID: ""}})
	set.HandleUserJoined(domain.Participant{ID: "me"})
	set.HandleOffer("me", remoteOffer())
	set.HandleOffer("", remoteOffer())

	assert.Equal(t, 0, set.Len())
	assert.Empty(t, factory.sessions)
}

func TestLinkSetInboundOfferCreatesLink(t *testing.T) {
	set, factory, signaler := newTestLinkSet("z")

	set.HandleOffer("a", remoteOffer())

	assert.Equal(t, 1, set.Len())
	require.Len(t, factory.sessions, 1)
	assert.Len(t, factory.sessions[0].remoteSDPs, 1)
	assert.Equal(t, []string{"answer"}, signaler.kinds())
}

func TestLinkSetUserLeftClosesLink(t *testing.T) {
	set, factory, _ := newTestLinkSet("me")

	var gone []string
	set.OnPeerGone = func(remoteID string) { gone = append(gone, remoteID) }

	set.HandleUserJoined(domain.Participant{ID: "b"})
	require.Equal(t, 1, set.Len())

	set.HandleUserLeft("b")

	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 1, factory.sessions[0].closes)
	assert.Equal(t, []string{"b"}, gone)

	// A departure for someone we never linked to is quiet.
	set.HandleUserLeft("ghost")
	assert.Equal(t, []string{"b"}, gone)
}

func TestLinkSetDropsSignalsForUnknownLinks(t *testing.T) {
	set, factory, _ := newTestLinkSet("me")

	set.HandleAnswer("ghost", remoteAnswer())
	set.HandleCandidate("ghost", webrtc.ICECandidateInit{Candidate: "c"})

	assert.Equal(t, 0, set.Len())
	assert.Empty(t, factory.sessions)
}

func TestLinkSetRoutesCandidatesToTheirLink(t *testing.T) {
	set, factory, _ := newTestLinkSet("me")

	set.HandleUserJoined(domain.Participant{ID: "b"})
	set.HandleUserJoined(domain.Participant{ID: "c"})
	require.Len(t, factory.sessions, 2)

	// Pre-handshake candidates queue inside the link until the remote
	// description lands.
	set.HandleCandidate("b", webrtc.ICECandidateInit{Candidate: "for-b"})
	assert.Equal(t, 0, factory.sessions[0].candidateCount())

	set.HandleAnswer("b", remoteAnswer())
	assert.Equal(t, 1, factory.sessions[0].candidateCount())
	assert.Equal(t, 0, factory.sessions[1].candidateCount())
}

func TestLinkSetSessionCandidatesGoToSignaler(t *testing.T) {
	set, factory, signaler := newTestLinkSet("me")

	set.HandleUserJoined(domain.Participant{ID: "b"})
	require.Len(t, factory.cbs, 1)

	factory.cbs[0].OnCandidate(webrtc.ICECandidateInit{Candidate: "local"})

	var candidateTo string
	for _, sig := range signaler.sent {
		if sig.kind == "candidate" {
			candidateTo = sig.to
		}
	}
	assert.Equal(t, "b", candidateTo)
}

func TestLinkSetConnectivityFeedsTheLink(t *testing.T) {
	set, factory, _ := newTestLinkSet("me")

	set.HandleUserJoined(domain.Participant{ID: "b"})
	require.Len(t, factory.cbs, 1)

	factory.cbs[0].OnConnectivity(ConnectivityConnected)

	link, ok := set.lookup("b")
	require.True(t, ok)
	assert.Equal(t, ConnectivityConnected, link.Connectivity())
}

func TestLinkSetConnectivityFiredDuringCreation(t *testing.T) {
	factory := &fakeSessionFactory{}
	signaler := &fakeSignaler{}

	// Real sessions report state from their own goroutines, possibly
	// while the link is still being constructed.
	eager := func(cb SessionCallbacks) (Session, error) {
		session, err := factory.factory(cb)
		go cb.OnConnectivity(ConnectivityConnected)
		return session, err
	}
	set := NewLinkSet("me", eager, signaler, time.Minute, testLogger())

	set.HandleUserJoined(domain.Participant{ID: "b"})

	link, ok := set.lookup("b")
	require.True(t, ok)
	assert.Eventually(t, func() bool {
		return link.Connectivity() == ConnectivityConnected
	}, time.Second, 5*time.Millisecond)
}

func TestLinkSetFailedLinkIsRemovedAfterRecoveryWindow(t *testing.T) {
	factory := &fakeSessionFactory{}
	signaler := &fakeSignaler{}
	set := NewLinkSet("me", factory.factory, signaler, 20*time.Millisecond, testLogger())

	gone := make(chan string, 1)
	set.OnPeerGone = func(remoteID string) { gone <- remoteID }

	set.HandleUserJoined(domain.Participant{ID: "b"})
	require.Len(t, factory.cbs, 1)

	factory.cbs[0].OnConnectivity(ConnectivityFailed)

	select {
	case remoteID := <-gone:
		assert.Equal(t, "b", remoteID)
	case <-time.After(time.Second):
		t.Fatal("failed link never gave up")
	}
	assert.Equal(t, 0, set.Len())
}

func TestLinkSetFactoryFailureLeavesNoLink(t *testing.T) {
	factory := &fakeSessionFactory{err: errors.New("no media stack")}
	set := NewLinkSet("me", factory.factory, &fakeSignaler{}, time.Minute, testLogger())

	set.HandleUserJoined(domain.Participant{ID: "b"})
	set.HandleOffer("b", remoteOffer())

	assert.Equal(t, 0, set.Len())
}

func TestLinkSetCloseAll(t *testing.T) {
	set, factory, _ := newTestLinkSet("me")

	set.HandleRoomUsers([]domain.Participant{{ID: "b"}, {ID: "c"}})
	require.Equal(t, 2, set.Len())

	set.CloseAll()

	assert.Equal(t, 0, set.Len())
	for _, session := range factory.sessions {
		assert.Equal(t, 1, session.closes)
	}
}
