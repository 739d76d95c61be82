// internal/game/player.go
package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/TarVK/themCards/internal/cards"
	"github.com/TarVK/themCards/internal/socket"
)

// Player is one connection's identity and room-scoped state. The room is
// the authority over hand, selection and score; the player only self-mutates
// its name. The room reference is a weak back-reference, not ownership.
type Player struct {
	id   string
	conn Conn
	name string

	room      *Room
	score     int
	hand      []cards.Card
	selection []cards.Card
}

// View is a player as seen by another connection. Hand is only populated
// when the requester is the player themself; peers never receive it.
type View struct {
	ID        string    `json:"ID"`
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Selection []string  `json:"selection"`
	Hand      *[]string `json:"hand,omitempty"`
}

// NewPlayer creates a player for a fresh connection, assigns a generated
// identifier and guest name, and registers the player's own message
// handlers on the connection.
func NewPlayer(conn Conn) *Player {
	p := &Player{
		id:   uuid.NewString(),
		conn: conn,
		name: fmt.Sprintf("Guest%d", rand.Intn(1000)),
	}

	conn.On(fmt.Sprintf("players/%s/setName", p.id), p.id, func(args socket.Args) interface{} {
		p.SetName(args.String(0))
		return socket.OK()
	})
	conn.On(fmt.Sprintf("players/%s/setSelection", p.id), p.id, func(args socket.Args) interface{} {
		p.SetSelection(args.StringSlice(0))
		return socket.OK()
	})

	// Generic retrieve: one handler per connection, privacy decided by the
	// pure View function instead of per-peer handler installs.
	conn.On("players/retrieve", p.id, func(args socket.Args) interface{} {
		targetID := args.String(0)
		if targetID == "" {
			targetID = p.id
		}
		target := p.resolve(targetID)
		if target == nil {
			return socket.Fail(socket.CodeUnknown, "unknown player: "+targetID)
		}
		return target.View(p.id)
	})

	return p
}

// resolve finds the retrieve target: the player themself, or a roster member
// of the room they share.
func (p *Player) resolve(targetID string) *Player {
	if targetID == p.id {
		return p
	}
	if p.room == nil {
		return nil
	}
	return p.room.playerByID(targetID)
}

// ID returns the player's opaque identifier, stable for the connection's
// lifetime.
func (p *Player) ID() string { return p.id }

// Name returns the player's display name.
func (p *Player) Name() string { return p.name }

// Score returns the player's score in the current room.
func (p *Player) Score() int { return p.score }

// Room returns the room the player is in, or nil.
func (p *Player) Room() *Room { return p.room }

// Hand returns the player's current hand.
func (p *Player) Hand() []cards.Card { return p.hand }

// Selection returns the cards the player has put forward this round.
func (p *Player) Selection() []cards.Card { return p.selection }

// Conn returns the player's connection.
func (p *Player) Conn() Conn { return p.conn }

// View builds the player payload visible to the given requester.
func (p *Player) View(requesterID string) View {
	view := View{
		ID:        p.id,
		Name:      p.name,
		Score:     p.score,
		Selection: cards.Texts(p.selection),
	}
	if requesterID == p.id {
		hand := cards.Texts(p.hand)
		view.Hand = &hand
	}
	return view
}

// SetName updates the display name and announces it to the room.
func (p *Player) SetName(name string) {
	p.name = name
	p.broadcast(fmt.Sprintf("players/%s/setName", p.id), name)
}

// SetScore updates the score and announces it to the room.
func (p *Player) SetScore(score int) {
	p.score = score
	p.broadcast(fmt.Sprintf("players/%s/setScore", p.id), score)
}

// SetSelection resolves the given card texts against the player's hand and
// current selection. Texts that match nothing are dropped silently. The new
// selection is announced to the room; the remaining hand is pushed privately
// to the player's own connection only.
func (p *Player) SetSelection(texts []string) {
	pool := append(append([]cards.Card{}, p.hand...), p.selection...)

	var resolved []cards.Card
	for _, text := range texts {
		for i, card := range pool {
			if card.Text == text {
				resolved = append(resolved, card)
				pool = append(pool[:i], pool[i+1:]...)
				break
			}
		}
	}

	p.selection = resolved
	p.broadcast(fmt.Sprintf("players/%s/setSelection", p.id), cards.Texts(p.selection))
	p.SetHand(pool)
}

// ClearSelection empties the selection and announces it. The cleared cards
// are gone from the player entirely; returning them to a pile is the room's
// responsibility.
func (p *Player) ClearSelection() {
	p.selection = nil
	p.broadcast(fmt.Sprintf("players/%s/setSelection", p.id), []string{})
}

// SetHand replaces the hand and pushes it privately over the owning
// connection. Hands are never broadcast to the room.
func (p *Player) SetHand(hand []cards.Card) {
	p.hand = hand
	p.conn.Emit(fmt.Sprintf("players/%s/setHand", p.id), cards.Texts(p.hand))
}

// SetRoom moves the player between rooms: a no-op when unchanged, otherwise
// the old room is left, the score resets to zero, and the new room is
// joined. Scores deliberately do not survive room transitions.
func (p *Player) SetRoom(room *Room) {
	if room == p.room {
		return
	}
	if p.room != nil {
		p.room.RemovePlayer(p)
	}
	p.score = 0
	if room != nil {
		room.AddPlayer(p)
	}
}

func (p *Player) broadcast(message string, args ...interface{}) {
	if p.room != nil {
		p.room.Broadcast(message, args...)
	}
}
