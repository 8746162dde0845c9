package rtc

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pion/webrtc/v3"
)

type NegotiationState string

const (
	NegotiationStable          NegotiationState = "stable"
	NegotiationHaveLocalOffer  NegotiationState = "have-local-offer"
	NegotiationHaveRemoteOffer NegotiationState = "have-remote-offer"
)

type ConnectivityState string

const (
	ConnectivityNew          ConnectivityState = "new"
	ConnectivityChecking     ConnectivityState = "checking"
	ConnectivityConnected    ConnectivityState = "connected"
	ConnectivityFailed       ConnectivityState = "failed"
	ConnectivityDisconnected ConnectivityState = "disconnected"
)

// Signaler carries negotiation messages to a named remote participant.
type Signaler interface {
	SendOffer(to string, sdp webrtc.SessionDescription) error
	SendAnswer(to string, sdp webrtc.SessionDescription) error
	SendCandidate(to string, candidate webrtc.ICECandidateInit) error
}

// PeerLink is the local negotiation state for one remote participant.
// Two of these, one on each side, must converge without a coordinator;
// every rule here exists to make that convergence deterministic.
type PeerLink struct {
	mu sync.Mutex

	localID  string
	remoteID string

	session  Session
	signaler Signaler
	log      *slog.Logger

	state        NegotiationState
	connectivity ConnectivityState

	// answered blocks a second answer from being applied; re-applying
	// a description after negotiation completes is a protocol
	// violation, not a no-op.
	answered  bool
	remoteSet bool
	pending   []webrtc.ICECandidateInit

	recoveryWindow time.Duration
	recovery       *time.Timer
	closed         bool

	// onGone runs once when the link gives up: recovery window expired
	// or Close was called by the owner.
	onGone func(remoteID string)
}

func NewPeerLink(localID, remoteID string, session Session, signaler Signaler, recoveryWindow time.Duration, log *slog.Logger, onGone func(string)) *PeerLink {
	if log == nil {
		log = slog.Default()
	}
	return &PeerLink{
		localID:        localID,
		remoteID:       remoteID,
		session:        session,
		signaler:       signaler,
		log:            log.With(slog.String("remote_id", remoteID)),
		state:          NegotiationStable,
		connectivity:   ConnectivityNew,
		recoveryWindow: recoveryWindow,
		onGone:         onGone,
	}
}

// polite reports which side yields when both offered at once: the
// participant whose id sorts lower byte-wise rolls back and accepts
// the remote offer. Both sides must agree on this comparator or glare
// deadlocks both in have-local-offer; treat it as a wire invariant.
func (l *PeerLink) polite() bool {
	return l.localID < l.remoteID
}

// Offer sends the initial local offer. A link that is already
// negotiating skips it; duplicate offer triggers are normal (snapshot
// and user-joined can both fire for the same remote).
func (l *PeerLink) Offer() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.state != NegotiationStable {
		return nil
	}

	sdp, err := l.session.CreateOffer(false)
	if err != nil {
		return err
	}
	l.state = NegotiationHaveLocalOffer
	l.answered = false

	return l.signaler.SendOffer(l.remoteID, sdp)
}

// HandleOffer applies a remote offer and answers it. On glare the
// polite side rolls its own offer back first; the impolite side
// ignores the incoming offer and keeps waiting for its answer.
func (l *PeerLink) HandleOffer(sdp webrtc.SessionDescription) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	if l.state == NegotiationHaveLocalOffer {
		if !l.polite() {
			l.log.Debug("glare: impolite side ignoring remote offer")
			return nil
		}
		l.log.Debug("glare: rolling back local offer")
		if err := l.session.Rollback(); err != nil {
			return err
		}
		l.state = NegotiationStable
	}

	if err := l.session.SetRemoteDescription(sdp); err != nil {
		return err
	}
	l.state = NegotiationHaveRemoteOffer
	l.remoteSet = true
	l.flushPendingLocked()

	answer, err := l.session.CreateAnswer()
	if err != nil {
		return err
	}
	l.state = NegotiationStable

	return l.signaler.SendAnswer(l.remoteID, answer)
}

// HandleAnswer applies a remote answer at most once. Repeats and late
// arrivals are discarded, not re-applied.
func (l *PeerLink) HandleAnswer(sdp webrtc.SessionDescription) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	if l.state != NegotiationHaveLocalOffer || l.answered {
		l.log.Debug("discarding duplicate or late answer",
			slog.String("state", string(l.state)))
		return nil
	}

	if err := l.session.SetRemoteDescription(sdp); err != nil {
		return err
	}
	l.answered = true
	l.remoteSet = true
	l.state = NegotiationStable
	l.flushPendingLocked()

	return nil
}

// HandleCandidate applies a remote ICE candidate, queueing it if the
// remote description has not arrived yet. Candidates may legally
// precede the handshake; dropping them slows or breaks connectivity.
func (l *PeerLink) HandleCandidate(candidate webrtc.ICECandidateInit) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	if !l.remoteSet {
		l.pending = append(l.pending, candidate)
		return
	}

	if err := l.session.AddICECandidate(candidate); err != nil {
		l.log.Debug("failed to apply ice candidate", slog.Any("error", err))
	}
}

func (l *PeerLink) flushPendingLocked() {
	for _, candidate := range l.pending {
		if err := l.session.AddICECandidate(candidate); err != nil {
			l.log.Debug("failed to apply queued ice candidate", slog.Any("error", err))
		}
	}
	l.pending = nil
}

// HandleConnectivity reacts to transport-state changes. A failed or
// disconnected link restarts ICE in place and arms the recovery
// window; only when the window elapses without recovery is the link
// torn down. Transient blips recover without the peer ever vanishing
// from the participant list.
func (l *PeerLink) HandleConnectivity(state ConnectivityState) {
	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		return
	}

	l.connectivity = state

	switch state {
	case ConnectivityConnected:
		if l.recovery != nil {
			l.recovery.Stop()
			l.recovery = nil
		}
		l.mu.Unlock()

	case ConnectivityFailed, ConnectivityDisconnected:
		if l.recovery == nil {
			l.recovery = time.AfterFunc(l.recoveryWindow, l.giveUp)
		}
		err := l.restartICELocked()
		l.mu.Unlock()
		if err != nil {
			l.log.Debug("ice restart failed", slog.Any("error", err))
		}

	default:
		l.mu.Unlock()
	}
}

func (l *PeerLink) restartICELocked() error {
	if l.state != NegotiationStable {
		return nil
	}
	sdp, err := l.session.CreateOffer(true)
	if err != nil {
		return err
	}
	l.state = NegotiationHaveLocalOffer
	l.answered = false
	return l.signaler.SendOffer(l.remoteID, sdp)
}

func (l *PeerLink) giveUp() {
	l.mu.Lock()
	if l.closed || l.connectivity == ConnectivityConnected {
		l.mu.Unlock()
		return
	}
	l.log.Info("recovery window elapsed, tearing down link")
	l.closeLocked()
	onGone := l.onGone
	remoteID := l.remoteID
	l.mu.Unlock()

	if onGone != nil {
		onGone(remoteID)
	}
}

// Close tears the link down without firing onGone; the owner already
// knows.
func (l *PeerLink) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
}

func (l *PeerLink) closeLocked() {
	if l.closed {
		return
	}
	l.closed = true
	if l.recovery != nil {
		l.recovery.Stop()
		l.recovery = nil
	}
	if err := l.session.Close(); err != nil {
		l.log.Debug("session close failed", slog.Any("error", err))
	}
}

func (l *PeerLink) State() NegotiationState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *PeerLink) Connectivity() ConnectivityState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connectivity
}

func (l *PeerLink) RemoteID() string {
	return l.remoteID
}
