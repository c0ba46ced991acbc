package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/rim/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is one websocket viewer. Frames are queued on send and written by
// WritePump; messages read by ReadPump are forwarded to the hub.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	UserID      string
	DisplayName string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		ClientID:    clientID,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "client", c.ClientID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendError("invalid message: "+err.Error(), 0)
			continue
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID

		c.handle(&msg)
	}
}

// handle decodes a message on the reading goroutine and hands the result to
// the hub. Decode errors are answered directly and keep the connection.
func (c *Client) handle(msg *Message) {
	switch msg.Type {
	case TypeCommand:
		cmds, err := engine.DecodeCommands(msg.Payload)
		if err != nil {
			c.SendError(err.Error(), msg.Seq)
			return
		}
		c.hub.Submit(cmds...)

	case TypeHitTest:
		var p HitTestPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.SendError("invalid hit test: "+err.Error(), msg.Seq)
			return
		}
		c.hub.hitTest(c, p, msg.Seq)

	case TypePresenceUpdate:
		var p PresencePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.SendError("invalid presence: "+err.Error(), msg.Seq)
			return
		}
		c.hub.updatePresence(c, &p)

	default:
		c.SendError("unknown message type: "+msg.Type, msg.Seq)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-c.hub.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}
	c.sendRaw(data)
}

// sendRaw queues an encoded message, dropping it when the client is too slow
// to keep up. A dropped frame is superseded by the next one.
func (c *Client) sendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID)
	}
}

func (c *Client) SendError(text string, seq int64) {
	msg, err := newMessage(TypeError, ErrorPayload{Message: text, Seq: seq})
	if err != nil {
		return
	}
	c.Send(msg)
}
