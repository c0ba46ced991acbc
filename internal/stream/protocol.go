package stream

import (
	"encoding/json"

	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

// Message is the envelope of every websocket frame in both directions.
type Message struct {
	Type     string          `json:"type"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	// Client to server
	TypeCommand = "command"  // payload: one engine command or an array of them
	TypeHitTest = "hit.test" // payload: HitTestPayload

	// Server to client
	TypeWelcome   = "welcome"
	TypeFrame     = "frame" // payload: engine.Batch
	TypeHitResult = "hit.result"
	TypeError     = "error"

	// Both directions
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
)

type WelcomePayload struct {
	ClientID  string       `json:"clientId"`
	SessionID string       `json:"sessionId"`
	FPS       int          `json:"fps"`
	State     engine.State `json:"state"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Seq     int64  `json:"seq,omitempty"`
}

type HitTestPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type HitResultPayload struct {
	ObjectID object.ID `json:"objectId,omitempty"`
	Hit      bool      `json:"hit"`
}

// PresencePayload is a viewer's pointer. Clients send Screen; the hub fills
// World from the current viewport before broadcasting.
type PresencePayload struct {
	Screen      *geom.Vec2  `json:"screen,omitempty"`
	World       *geom.Vec2  `json:"world,omitempty"`
	Selection   []object.ID `json:"selection,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
}

// PresenceStatePayload maps client IDs to their pointers. One user may hold
// several connections.
type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

func newMessage(typ string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: typ, Payload: data}, nil
}
