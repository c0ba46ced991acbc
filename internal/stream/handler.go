package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/inamate/rim/internal/auth"
	"github.com/inamate/rim/internal/engine"
	"github.com/inamate/rim/internal/middleware"
)

// Handler serves the websocket stream and read-only scene endpoints.
type Handler struct {
	hub     *Hub
	origins []string
}

func NewHandler(hub *Hub, origins []string) *Handler {
	return &Handler{hub: hub, origins: origins}
}

// ServeWS upgrades the request and attaches a client to the hub. The user
// comes from the auth middleware; without one the viewer is anonymous.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		userID = "anon-" + uuid.New().String()[:8]
	}

	displayName := query.Get("name")
	if displayName == "" {
		displayName = "Anonymous"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := NewClient(h.hub, conn, userID, displayName, clientID)

	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

// ServeState writes the current scene snapshot.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	st, err := h.hub.State(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, st)
}

// ServeCommands applies a command, or an array of commands, posted as JSON.
func (h *Handler) ServeCommands(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMsgSize)).Decode(&payload); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cmds, err := engine.DecodeCommands(payload)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.hub.Submit(cmds...)
	middleware.WriteJSON(w, http.StatusAccepted, map[string]int{"queued": len(cmds)})
}
