// internal/socket/conn.go
package socket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HandlerFunc processes one inbound message. The returned value, if non-nil,
// answers the request when the frame carries a request id; fire-and-forget
// emits ignore it.
type HandlerFunc func(args Args) interface{}

type handlerEntry struct {
	owner string
	fn    HandlerFunc
}

// frame is the wire format in both directions. Inbound frames carry Message,
// Args and an optional request ID; outbound responses carry ID and Value.
type frame struct {
	Message string            `json:"message,omitempty"`
	Args    []json.RawMessage `json:"args,omitempty"`
	ID      string            `json:"id,omitempty"`
	Value   interface{}       `json:"value,omitempty"`
}

// emitFrame is the outbound shape for fire-and-forget emits.
type emitFrame struct {
	Message string        `json:"message"`
	Args    []interface{} `json:"args"`
}

// Conn is one bidirectional named-message channel layered over a websocket.
// Handlers are keyed by (message, owner) so that all handlers installed by a
// room or player can be dropped in one call when that owner detaches. The
// handler registry is only touched from the event loop (or before the read
// pump starts), so it carries no lock.
type Conn struct {
	id       string
	ws       *websocket.Conn
	loop     *Loop
	logger   *logrus.Logger
	out      chan []byte
	handlers map[string][]handlerEntry
}

// NewConn wraps an accepted websocket connection. The read and write pumps
// must be started separately.
func NewConn(ws *websocket.Conn, loop *Loop, logger *logrus.Logger) *Conn {
	return &Conn{
		id:       uuid.NewString(),
		ws:       ws,
		loop:     loop,
		logger:   logger,
		out:      make(chan []byte, 32),
		handlers: make(map[string][]handlerEntry),
	}
}

// ID returns the connection's generated identifier.
func (c *Conn) ID() string {
	return c.id
}

// On registers a handler for a message name, tagged with an owner id used
// for bulk teardown.
func (c *Conn) On(message, owner string, fn HandlerFunc) {
	c.handlers[message] = append(c.handlers[message], handlerEntry{owner: owner, fn: fn})
}

// Off removes the handlers for a message that belong to the given owner.
func (c *Conn) Off(message, owner string) {
	entries := c.handlers[message]
	kept := entries[:0]
	for _, e := range entries {
		if e.owner != owner {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(c.handlers, message)
	} else {
		c.handlers[message] = kept
	}
}

// DropOwner removes every handler registered under the given owner id. Used
// when a player leaves a room to unwind that room's listeners in one step.
func (c *Conn) DropOwner(owner string) {
	for message := range c.handlers {
		c.Off(message, owner)
	}
}

// Emit sends a fire-and-forget message. No acknowledgement is awaited; if
// the outgoing buffer is full the message is dropped and logged, matching
// the fire-and-forget broadcast model.
func (c *Conn) Emit(message string, args ...interface{}) {
	if args == nil {
		args = []interface{}{}
	}
	data, err := json.Marshal(emitFrame{Message: message, Args: args})
	if err != nil {
		c.logger.Warnf("conn %s: failed to marshal emit %q: %v", c.id, message, err)
		return
	}
	c.enqueue(data, message)
}

// respond answers a request frame with a single value.
func (c *Conn) respond(id string, value interface{}) {
	data, err := json.Marshal(frame{ID: id, Value: value})
	if err != nil {
		c.logger.Warnf("conn %s: failed to marshal response %s: %v", c.id, id, err)
		data, _ = json.Marshal(frame{ID: id, Value: Fail(CodeUnreachable, "server failed to encode response")})
	}
	c.enqueue(data, "response")
}

func (c *Conn) enqueue(data []byte, label string) {
	select {
	case c.out <- data:
	default:
		c.logger.Warnf("conn %s: out buffer full, dropped %q", c.id, label)
	}
}

// dispatch runs the handlers registered for an inbound frame. Called on the
// event loop only. Handler panics are converted into a generic structured
// error so a misbehaving handler can never take the connection down.
func (c *Conn) dispatch(raw []byte) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		c.logger.Warnf("conn %s: invalid frame: %v", c.id, err)
		return
	}

	entries := c.handlers[f.Message]
	if len(entries) == 0 {
		if f.ID != "" {
			c.respond(f.ID, Fail(CodeUnknown, "unknown message: "+f.Message))
		}
		return
	}

	var result interface{}
	for _, entry := range entries {
		if v := c.invoke(entry.fn, Args(f.Args)); v != nil && result == nil {
			result = v
		}
	}
	if f.ID != "" {
		if result == nil {
			result = OK()
		}
		c.respond(f.ID, result)
	}
}

func (c *Conn) invoke(fn HandlerFunc, args Args) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("conn %s: handler panic: %v", c.id, r)
			result = Fail(CodeInternal, "an unexpected error occurred")
		}
	}()
	return fn(args)
}

// ReadPump reads frames until the connection closes or ctx is cancelled,
// posting each frame to the event loop. It blocks; run it from the HTTP
// handler goroutine.
func (c *Conn) ReadPump(ctx context.Context) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return
			}
			c.logger.Infof("conn %s: read ended: %v", c.id, err)
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		msg := data
		c.loop.Post(func() { c.dispatch(msg) })
	}
}

// WritePump drains the outgoing buffer onto the websocket and pings the
// client periodically. Exits on ctx cancellation or write failure; a failed
// write means the connection is gone and the read pump will notice.
func (c *Conn) WritePump(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.out:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.ws.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.logger.Warnf("conn %s: write failed: %v", c.id, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.ws.Ping(pingCtx)
			cancel()
			if err != nil {
				c.logger.Warnf("conn %s: ping failed, assuming disconnect: %v", c.id, err)
				return
			}
		}
	}
}
