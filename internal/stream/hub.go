// Package stream runs a scene engine behind a websocket hub. The hub owns the
// engine in a single goroutine: it ticks at a fixed rate, applies the commands
// clients submitted since the previous tick and broadcasts changed frames.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/preset"
	"github.com/inamate/rim/internal/typeid"
)

// maxStep caps the simulated time of one tick so a stalled process does not
// jump animations forward.
const maxStep = 0.25

var ErrStopped = errors.New("hub stopped")

type Hub struct {
	eng       *engine.Engine
	fps       int
	sessionID string

	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	pending  []engine.Command
	last     []byte // encoded message of the last broadcast frame
	dirty    bool   // broadcast the next frame even if nothing regenerated

	register   chan *Client
	unregister chan *Client
	commands   chan []engine.Command
	calls      chan func(*engine.Engine)
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub wraps eng. After Run starts, eng must only be touched through the
// hub.
func NewHub(eng *engine.Engine, fps int) *Hub {
	if fps <= 0 {
		fps = 60
	}
	return &Hub{
		eng:        eng,
		fps:        fps,
		sessionID:  typeid.NewSessionID(),
		clients:    make(map[string]*Client),
		presence:   NewPresenceManager(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan []engine.Command, 256),
		calls:      make(chan func(*engine.Engine)),
		done:       make(chan struct{}),
	}
}

// SessionID identifies this hub's scene for the lifetime of the process.
func (h *Hub) SessionID() string { return h.sessionID }

// Run ticks the engine until ctx is cancelled or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(h.fps))
	defer ticker.Stop()

	slog.Info("hub running", "session", h.sessionID, "fps", h.fps)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			h.Stop()
			return
		case <-h.done:
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case cmds := <-h.commands:
			h.pending = append(h.pending, cmds...)
		case fn := <-h.calls:
			fn(h.eng)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			h.step(min(dt, maxStep))
		}
	}
}

// Stop ends Run. Clients are disconnected by their write pumps.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		slog.Info("hub stopped", "session", h.sessionID)
	})
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Submit queues commands for the next tick.
func (h *Hub) Submit(cmds ...engine.Command) {
	if len(cmds) == 0 {
		return
	}
	select {
	case h.commands <- cmds:
	case <-h.done:
	}
}

// Do runs fn on the hub goroutine and waits for it to return. If ctx ends
// first, fn may still run later; it must not write to variables the caller
// reads after Do returns.
func (h *Hub) Do(ctx context.Context, fn func(*engine.Engine)) error {
	finished := make(chan struct{})
	call := func(e *engine.Engine) {
		defer close(finished)
		fn(e)
	}
	select {
	case h.calls <- call:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a snapshot of the scene.
func (h *Hub) State(ctx context.Context) (engine.State, error) {
	res := make(chan engine.State, 1)
	if err := h.Do(ctx, func(e *engine.Engine) { res <- e.State() }); err != nil {
		return engine.State{}, err
	}
	return <-res, nil
}

// LoadScene replaces the scene with sc. Connected clients receive the new
// frame on the next tick.
func (h *Hub) LoadScene(ctx context.Context, sc *preset.Scene) error {
	return h.Do(ctx, func(e *engine.Engine) {
		ids := sc.Apply(e)
		h.dirty = true
		slog.Info("scene loaded", "name", sc.Name, "objects", len(ids))
	})
}

// step runs one tick and broadcasts the frame if it differs from the last.
func (h *Hub) step(dt float64) *engine.Batch {
	cmds := h.pending
	h.pending = nil

	b := h.eng.Tick(dt, cmds)
	if len(cmds) == 0 && !h.dirty && !changed(b) {
		return b
	}
	h.dirty = false

	payload, err := b.JSON()
	if err != nil {
		slog.Error("marshal frame", "error", err, "frame", b.Frame)
		return b
	}
	data, err := json.Marshal(&Message{Type: TypeFrame, Payload: payload})
	if err != nil {
		slog.Error("marshal frame message", "error", err, "frame", b.Frame)
		return b
	}
	h.last = data
	for _, c := range h.clients {
		c.sendRaw(data)
	}
	return b
}

func changed(b *engine.Batch) bool {
	return b.Stats.Regenerated > 0 || b.Stats.ViewChanged || len(b.Created) > 0
}

func (h *Hub) addClient(client *Client) {
	h.clients[client.ClientID] = client

	welcome, err := newMessage(TypeWelcome, WelcomePayload{
		ClientID:  client.ClientID,
		SessionID: h.sessionID,
		FPS:       h.fps,
		State:     h.eng.State(),
	})
	if err == nil {
		client.Send(welcome)
	}
	if h.last != nil {
		client.sendRaw(h.last)
	}

	// Send current presence state to new client
	if stateMsg := h.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinMsg, err := newMessage(TypePresenceJoin, PresenceJoinPayload{
		ClientID:    client.ClientID,
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	if err == nil {
		joinMsg.UserID = client.UserID
		h.broadcast(joinMsg, client.ClientID)
	}

	slog.Info("client joined", "user", client.UserID, "client", client.ClientID)
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client.ClientID]; !ok {
		return
	}
	delete(h.clients, client.ClientID)
	close(client.send)
	h.presence.Remove(client.ClientID)

	leaveMsg, err := newMessage(TypePresenceLeave, PresenceLeavePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
	})
	if err == nil {
		leaveMsg.UserID = client.UserID
		h.broadcast(leaveMsg, "")
	}

	slog.Info("client left", "user", client.UserID, "client", client.ClientID)
}

// hitTest answers a client's pick request against the last ticked geometry.
func (h *Hub) hitTest(sender *Client, p HitTestPayload, seq int64) {
	h.post(func(e *engine.Engine) {
		id, ok := e.HitTest(p.X, p.Y)
		msg, err := newMessage(TypeHitResult, HitResultPayload{ObjectID: id, Hit: ok})
		if err != nil {
			return
		}
		msg.Seq = seq
		sender.Send(msg)
	})
}

func (h *Hub) updatePresence(sender *Client, p *PresencePayload) {
	h.post(func(e *engine.Engine) {
		if _, ok := h.clients[sender.ClientID]; !ok {
			return
		}
		p.UserID = sender.UserID
		p.DisplayName = sender.DisplayName
		p.World = nil
		if p.Screen != nil {
			w := e.Viewport().ScreenToWorld(*p.Screen)
			p.World = &w
		}
		h.presence.Update(sender.ClientID, p)

		outMsg, err := newMessage(TypePresenceUpdate, p)
		if err != nil {
			slog.Warn("invalid presence payload", "error", err)
			return
		}
		outMsg.UserID = sender.UserID
		h.broadcast(outMsg, sender.ClientID)
	})
}

// post queues fn on the hub goroutine without waiting for it.
func (h *Hub) post(fn func(*engine.Engine)) {
	select {
	case h.calls <- fn:
	case <-h.done:
	}
}

func (h *Hub) broadcast(msg *Message, excludeClientID string) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}
	for id, c := range h.clients {
		if id != excludeClientID {
			c.sendRaw(data)
		}
	}
}
