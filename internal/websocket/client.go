package websocket

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"chat-relay/internal/models"
	"chat-relay/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// State is the lifecycle position of a connection. A Client only exists once
// its token has been verified, so it starts Admitted.
type State int32

const (
	StateAdmitted State = iota + 1
	StateIdentified
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateAdmitted:
		return "admitted"
	case StateIdentified:
		return "identified"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// EventHandler receives the inbound events of one connection, one at a time
// and in the order the transport delivered them.
type EventHandler interface {
	HandleEvent(client *Client, env models.Envelope)
	HandleDisconnect(client *Client)
}

type Client struct {
	id       string
	identity string
	conn     *websocket.Conn
	send     chan []byte
	state    atomic.Int32
}

func NewClient(conn *websocket.Conn, identity string, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	client := &Client{
		id:       uuid.NewString(),
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
	client.state.Store(int32(StateAdmitted))
	return client
}

func (c *Client) ID() string       { return c.id }
func (c *Client) Identity() string { return c.identity }
func (c *Client) State() State     { return State(c.state.Load()) }

// MarkIdentified moves an admitted connection to Identified. It reports false
// once the connection is disconnected.
func (c *Client) MarkIdentified() bool {
	return c.state.CompareAndSwap(int32(StateAdmitted), int32(StateIdentified)) ||
		c.State() == StateIdentified
}

// MarkDisconnected reports true only for the first call.
func (c *Client) MarkDisconnected() bool {
	return State(c.state.Swap(int32(StateDisconnected))) != StateDisconnected
}

// ReadPump is the connection's event loop. Each frame is handled to
// completion before the next one is read.
func (c *Client) ReadPump(handler EventHandler) {
	defer func() {
		handler.HandleDisconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error("WebSocket error on %s: %v", c.id, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			logger.Warn("Dropping malformed frame from %s", c.id)
			continue
		}
		c.dispatch(handler, env)
	}
}

func (c *Client) dispatch(handler EventHandler, env models.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panic for %s event from %s: %v", env.Event, c.id, r)
		}
	}()
	handler.HandleEvent(c, env)
}

// WritePump drains the send queue onto the socket and keeps the connection
// alive with ping frames. It exits when the hub closes the queue.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error on %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
