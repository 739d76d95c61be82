package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TarVK/themCards/internal/cards"
	"github.com/TarVK/themCards/internal/socket"
)

func TestNewPlayerGetsGuestName(t *testing.T) {
	p := NewPlayer(newFakeConn("c"))

	assert.NotEmpty(t, p.ID())
	assert.Regexp(t, `^Guest\d+$`, p.Name())
}

func TestSetSelectionResolvesAgainstHand(t *testing.T) {
	conn := newFakeConn("c")
	p := NewPlayer(conn)
	p.SetHand([]cards.Card{cards.NewCard("A"), cards.NewCard("B")})

	// "Z" matches nothing and is dropped silently
	p.SetSelection([]string{"A", "Z"})

	assert.Equal(t, []string{"A"}, cards.Texts(p.Selection()))
	assert.Equal(t, []string{"B"}, cards.Texts(p.Hand()))
}

func TestSetSelectionKeepsPreviouslySelectedCards(t *testing.T) {
	conn := newFakeConn("c")
	p := NewPlayer(conn)
	p.SetHand([]cards.Card{cards.NewCard("A"), cards.NewCard("B")})

	p.SetSelection([]string{"A"})
	// swapping the selection pulls "A" back into the hand pool
	p.SetSelection([]string{"B", "A"})

	assert.Equal(t, []string{"B", "A"}, cards.Texts(p.Selection()))
	assert.Empty(t, p.Hand())
}

func TestViewHidesHandFromPeers(t *testing.T) {
	conn := newFakeConn("c")
	p := NewPlayer(conn)
	p.SetHand([]cards.Card{cards.NewCard("A")})

	own := p.View(p.ID())
	require.NotNil(t, own.Hand)
	assert.Equal(t, []string{"A"}, *own.Hand)

	peer := p.View("someone-else")
	assert.Nil(t, peer.Hand)
	assert.Equal(t, p.Name(), peer.Name)
}

func TestRetrieveHandler(t *testing.T) {
	_, players, conns := newTestRoom(2)

	// no target: the requester's own view, hand included
	result := conns[0].invoke(t, "players/retrieve")
	own, ok := result.(View)
	require.True(t, ok, "expected a view, got %T", result)
	assert.Equal(t, players[0].ID(), own.ID)
	assert.NotNil(t, own.Hand)

	// a roster peer: view without the hand
	result = conns[0].invoke(t, "players/retrieve", players[1].ID())
	peer, ok := result.(View)
	require.True(t, ok)
	assert.Equal(t, players[1].ID(), peer.ID)
	assert.Nil(t, peer.Hand)
}

func TestRetrieveUnknownPlayer(t *testing.T) {
	_, _, conns := newTestRoom(1)

	result := conns[0].invoke(t, "players/retrieve", "no-such-player")
	requireFailure(t, result, socket.CodeUnknown)
}

func TestSetNameBroadcastsToRoom(t *testing.T) {
	_, players, conns := newTestRoom(2)

	requireSuccess(t, conns[1].invoke(t,
		fmt.Sprintf("players/%s/setName", players[1].ID()), "Alice"))

	assert.Equal(t, "Alice", players[1].Name())
	got := conns[0].received(fmt.Sprintf("players/%s/setName", players[1].ID()))
	require.NotEmpty(t, got)
	assert.Equal(t, []interface{}{"Alice"}, got[len(got)-1])
}

func TestSetSelectionHandlerPushesHandPrivately(t *testing.T) {
	_, players, conns := newTestRoom(2)
	p := players[1]
	text := p.Hand()[0].Text

	requireSuccess(t, conns[1].invoke(t,
		fmt.Sprintf("players/%s/setSelection", p.ID()), []string{text}))

	assert.Equal(t, []string{text}, cards.Texts(p.Selection()))

	// the selection is public, the remaining hand is not
	assert.NotEmpty(t, conns[0].received(fmt.Sprintf("players/%s/setSelection", p.ID())))
	assert.Empty(t, conns[0].received(fmt.Sprintf("players/%s/setHand", p.ID())))
	assert.NotEmpty(t, conns[1].received(fmt.Sprintf("players/%s/setHand", p.ID())))
}

func TestSetRoomResetsScore(t *testing.T) {
	lib := testLib()
	logger := testLogger()
	room1 := NewRoom("r1", false, lib, logger)
	room2 := NewRoom("r2", false, lib, logger)

	p := NewPlayer(newFakeConn("c"))
	p.SetRoom(room1)
	p.SetScore(3)

	p.SetRoom(room2)

	assert.Equal(t, 0, p.Score(), "scores do not survive room transitions")
	assert.Same(t, room2, p.Room())
	assert.Equal(t, 0, room1.PlayerCount())
	assert.Equal(t, 1, room2.PlayerCount())
}

func TestSetRoomSameRoomIsNoop(t *testing.T) {
	room, players, _ := newTestRoom(1)

	players[0].SetScore(2)
	players[0].SetRoom(room)

	assert.Equal(t, 2, players[0].Score())
	assert.Equal(t, 1, room.PlayerCount())
}
