// internal/handlers/ws.go
package handlers

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/TarVK/themCards/internal/game"
	"github.com/TarVK/themCards/internal/socket"
)

// Custom WebSocket close codes, beyond the standard range.
const (
	BadSubprotocolError = 3000 // client connected with an unsupported subprotocol
)

// SocketHandler upgrades connections to the game protocol: it creates a
// Player for the connection, wires the connection-scoped handlers, runs the
// read/write pumps, and unwinds room membership when the read loop exits.
func SocketHandler(logger *logrus.Logger, loop *socket.Loop, registry *game.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"themcards"},
			OriginPatterns: []string{"*"}, // adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer ws.Close(websocket.StatusInternalError, "handler finished")

		if ws.Subprotocol() != "themcards" {
			ws.Close(websocket.StatusCode(BadSubprotocolError), "client must speak the themcards subprotocol")
			return
		}

		conn := socket.NewConn(ws, loop, logger)

		// The read pump has not started yet, so the connection's handler
		// registry can be populated from this goroutine without racing the
		// event loop.
		player := game.NewPlayer(conn)
		attach(conn, player, registry)
		logger.Infof("player %s connected from %s", player.ID(), r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go conn.WritePump(ctx)
		conn.ReadPump(ctx)

		// Disconnection is the only cancellation signal: unwind membership
		// on the event loop so it serializes with in-flight handlers.
		loop.Post(func() {
			if room := player.Room(); room != nil {
				room.RemovePlayer(player)
			}
		})
		logger.Infof("player %s disconnected", player.ID())
	}
}

// attach registers the connection-scoped messages: identity lookup and room
// joining.
func attach(conn *socket.Conn, player *game.Player, registry *game.Registry) {
	conn.On("players/me", player.ID(), func(args socket.Args) interface{} {
		return player.ID()
	})

	conn.On("rooms/connect", player.ID(), func(args socket.Args) interface{} {
		room := registry.GetOrCreate(args.String(0))
		if room.IsFull() {
			return socket.Fail(socket.CodeConflict, "room already full")
		}
		player.SetRoom(room)
		return socket.OKWith(map[string]interface{}{"ID": room.ID()})
	})
}
