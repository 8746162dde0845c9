package rtc

import "github.com/pion/webrtc/v3"

// Session is the slice of a media-negotiation session the PeerLink
// state machine needs. The pion adapter below is the real one; tests
// substitute their own.
type Session interface {
	// CreateOffer produces and applies a local offer. iceRestart
	// regenerates credentials to recover a failed transport in place.
	CreateOffer(iceRestart bool) (webrtc.SessionDescription, error)
	CreateAnswer() (webrtc.SessionDescription, error)
	SetRemoteDescription(desc webrtc.SessionDescription) error
	AddICECandidate(candidate webrtc.ICECandidateInit) error
	// Rollback discards the pending local offer, returning the session
	// to stable. Used by the polite side of a glare.
	Rollback() error
	Close() error
}

// SessionCallbacks carries the link-bound hooks a factory wires into
// each new session.
type SessionCallbacks struct {
	OnCandidate    func(webrtc.ICECandidateInit)
	OnConnectivity func(ConnectivityState)
}

type SessionFactory func(cb SessionCallbacks) (Session, error)

type pionSession struct {
	pc *webrtc.PeerConnection
}

// NewPionSessionFactory builds sessions on pion peer connections with
// the given ICE configuration.
func NewPionSessionFactory(cfg webrtc.Configuration) SessionFactory {
	return func(cb SessionCallbacks) (Session, error) {
		pc, err := webrtc.NewPeerConnection(cfg)
		if err != nil {
			return nil, err
		}

		if cb.OnCandidate != nil {
			pc.OnICECandidate(func(c *webrtc.ICECandidate) {
				if c != nil {
					cb.OnCandidate(c.ToJSON())
				}
			})
		}
		if cb.OnConnectivity != nil {
			pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
				if cs, ok := connectivityFromPion(s); ok {
					cb.OnConnectivity(cs)
				}
			})
		}

		return &pionSession{pc: pc}, nil
	}
}

func (s *pionSession) CreateOffer(iceRestart bool) (webrtc.SessionDescription, error) {
	var opts *webrtc.OfferOptions
	if iceRestart {
		opts = &webrtc.OfferOptions{ICERestart: true}
	}

	offer, err := s.pc.CreateOffer(opts)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return offer, nil
}

func (s *pionSession) CreateAnswer() (webrtc.SessionDescription, error) {
	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return answer, nil
}

func (s *pionSession) SetRemoteDescription(desc webrtc.SessionDescription) error {
	return s.pc.SetRemoteDescription(desc)
}

func (s *pionSession) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	return s.pc.AddICECandidate(candidate)
}

func (s *pionSession) Rollback() error {
	return s.pc.SetLocalDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeRollback})
}

func (s *pionSession) Close() error {
	return s.pc.Close()
}

func connectivityFromPion(s webrtc.PeerConnectionState) (ConnectivityState, bool) {
	switch s {
	case webrtc.PeerConnectionStateNew:
		return ConnectivityNew, true
	case webrtc.PeerConnectionStateConnecting:
		return ConnectivityChecking, true
	case webrtc.PeerConnectionStateConnected:
		return ConnectivityConnected, true
	case webrtc.PeerConnectionStateDisconnected:
		return ConnectivityDisconnected, true
	case webrtc.PeerConnectionStateFailed:
		return ConnectivityFailed, true
	default:
		return "", false
	}
}
