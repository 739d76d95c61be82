// internal/game/conn.go
package game

import "github.com/TarVK/themCards/internal/socket"

// Conn is the slice of a socket connection the game layer needs: emit,
// handler registration keyed by owner, and bulk teardown. *socket.Conn
// satisfies it; tests substitute a recording fake.
type Conn interface {
	ID() string
	Emit(message string, args ...interface{})
	On(message, owner string, fn socket.HandlerFunc)
	Off(message, owner string)
	DropOwner(owner string)
}
