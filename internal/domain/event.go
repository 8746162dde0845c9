package domain

import "github.com/pion/webrtc/v3"

type EventType string

const (
	EventJoinRoom       EventType = "join-room"
	EventLeaveRoom      EventType = "leave-room"
	EventRoomUsers      EventType = "room-users"
	EventUserJoined     EventType = "user-joined"
	EventUserLeft       EventType = "user-left"
	EventOffer          EventType = "offer"
	EventAnswer         EventType = "answer"
	EventICECandidate   EventType = "ice-candidate"
	EventChat           EventType = "chat"
	EventAudioChunk     EventType = "audio-chunk"
	EventTranscription  EventType = "transcription"
	EventTranslatedText EventType = "translated-text"
	EventError          EventType = "error"
)

// Event is the single envelope multiplexed over a client's websocket.
// Which fields are set depends on Type: offers and answers carry SDP,
// ice-candidate carries Candidate, membership notices carry User/Users,
// user-left carries the departed participant id in From.
type Event struct {
	Type      EventType                  `json:"type"`
	Room      string                     `json:"room,omitempty"`
	From      string                     `json:"from,omitempty"`
	To        string                     `json:"to,omitempty"`
	SDP       *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	User      *Participant               `json:"user,omitempty"`
	Users     []Participant              `json:"users,omitempty"`
	Payload   map[string]any             `json:"payload,omitempty"`
}

// JoinRequest is the canonical join input. The websocket controller
// normalizes every accepted join shape into this before the membership
// coordinator sees it.
type JoinRequest struct {
	RoomID      string
	Participant Participant
}
