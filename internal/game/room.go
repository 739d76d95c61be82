// internal/game/room.go
package game

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/TarVK/themCards/internal/cards"
	"github.com/TarVK/themCards/internal/journal"
	"github.com/TarVK/themCards/internal/socket"
)

// Default room parameters.
const (
	DefaultMaxPlayerCount = 8
	DefaultHandSize       = 12

	MinPlayerCount = 2
	MinHandSize    = 2
	MaxHandSize    = 50
)

// Accessibility controls who can discover and join a room.
type Accessibility struct {
	Private        bool `json:"private"`
	MaxPlayerCount int  `json:"maxPlayerCount"`
}

// Answering tracks one non-judge player's participation in the current
// round: whether their submission has been individually revealed.
type Answering struct {
	Player   *Player
	Revealed bool
}

// AnsweringView is the serialized form of an answering entry.
type AnsweringView struct {
	PlayerID string `json:"playerID"`
	Revealed bool   `json:"revealed"`
}

// Snapshot is the full room state delivered on join or on demand.
type Snapshot struct {
	ID               string          `json:"ID"`
	Accessibility    Accessibility   `json:"accessibility"`
	HandSize         int             `json:"handSize"`
	PlayerIDs        []string        `json:"playerIDs"`
	JudgeID          *string         `json:"judgeID"`
	AnsweringPlayers []AnsweringView `json:"answeringPlayers"`
	Question         string          `json:"question"`
	Answer           []string        `json:"answer"`
}

// Room is an isolated game session: roster, judge rotation, round phases,
// scoring, and the deck it exclusively owns. The first roster member is
// permanently the admin. All methods run on the event loop.
type Room struct {
	id             string
	private        bool
	maxPlayerCount int
	handSize       int

	players   []*Player
	selection *cards.Selection

	judge     *Player
	question  *cards.Card
	answer    []cards.Card
	answering []*Answering

	// onChange is invoked after membership or accessibility changes so the
	// registry can recompute its indices, including destroy-on-empty.
	onChange func(*Room)

	journal *journal.Journal
	logger  *logrus.Logger
}

// NewRoom creates a room with default accessibility and the library's
// default pack selection.
func NewRoom(id string, private bool, library *cards.Library, logger *logrus.Logger) *Room {
	return &Room{
		id:             id,
		private:        private,
		maxPlayerCount: DefaultMaxPlayerCount,
		handSize:       DefaultHandSize,
		selection:      cards.NewSelection(library),
		logger:         logger,
	}
}

// ID returns the room identifier, which doubles as the shareable join code.
func (r *Room) ID() string { return r.id }

// Private reports whether the room is hidden from random discovery.
func (r *Room) Private() bool { return r.private }

// MaxPlayerCount returns the roster capacity.
func (r *Room) MaxPlayerCount() int { return r.maxPlayerCount }

// HandSize returns the number of answer cards each player holds.
func (r *Room) HandSize() int { return r.handSize }

// Players returns the roster in join order.
func (r *Room) Players() []*Player { return r.players }

// PlayerCount returns the roster size.
func (r *Room) PlayerCount() int { return len(r.players) }

// IsFull reports whether the roster is at capacity.
func (r *Room) IsFull() bool { return len(r.players) >= r.maxPlayerCount }

// Admin returns the first roster member, or nil for an empty room. The
// admin role is derived from join order, never stored.
func (r *Room) Admin() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[0]
}

// Judge returns the current judge, or nil before the first round.
func (r *Room) Judge() *Player { return r.judge }

// Question returns the current question card, or nil.
func (r *Room) Question() *cards.Card { return r.question }

// SelectedAnswer returns the chosen best answer for this round, or nil.
func (r *Room) SelectedAnswer() []cards.Card { return r.answer }

// AnsweringPlayers returns the current round's answering entries.
func (r *Room) AnsweringPlayers() []*Answering { return r.answering }

// Selection returns the room's deck manager.
func (r *Room) Selection() *cards.Selection { return r.selection }

func (r *Room) playerByID(id string) *Player {
	for _, p := range r.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (r *Room) path(action string) string {
	return fmt.Sprintf("rooms/%s/%s", r.id, action)
}

func (r *Room) selectionPath(action string) string {
	return fmt.Sprintf("cardSelection/%s/%s", r.id, action)
}

// AddPlayer appends a player to the roster, announces the join, installs
// the room's message handlers on the player's connection, and stocks
// their hand. A no-op when the player is already a member.
func (r *Room) AddPlayer(p *Player) {
	if r.playerByID(p.id) != nil {
		return
	}
	r.players = append(r.players, p)
	p.room = r

	r.Broadcast(r.path("addPlayer"), p.id)
	r.installHandlers(p)
	r.topUpHand(p)

	r.logger.Infof("room %s: player %s (%s) joined, %d player(s)", r.id, p.id, p.name, len(r.players))
	r.record("player_joined", map[string]interface{}{"playerID": p.id, "name": p.name})
	r.notifyChange()
}

// RemovePlayer detaches a player: roster removal, handler teardown, card
// return, answering-state cleanup. If the removed player was the judge the
// round restarts immediately; partial round state is not preserved.
func (r *Room) RemovePlayer(p *Player) {
	index := -1
	for i, member := range r.players {
		if member == p {
			index = i
			break
		}
	}
	if index == -1 {
		return
	}
	r.players = append(r.players[:index], r.players[index+1:]...)
	p.room = nil

	r.Broadcast(r.path("removePlayer"), p.id)
	p.conn.DropOwner(r.id)
	r.clearCards(p)

	wasJudge := r.judge == p
	if r.removeAnswering(p) && !wasJudge {
		r.broadcastAnswering()
	}
	if wasJudge {
		r.judge = nil
		r.NextRound()
	}

	r.logger.Infof("room %s: player %s left, %d player(s)", r.id, p.id, len(r.players))
	r.record("player_left", map[string]interface{}{"playerID": p.id})
	r.notifyChange()
}

// KickPlayer broadcasts a kick notification with an optional reason, then
// detaches the player exactly as a disconnect would.
func (r *Room) KickPlayer(p *Player, message string) {
	r.Broadcast(r.path("kickPlayer"), p.id, message)
	r.record("player_kicked", map[string]interface{}{"playerID": p.id, "message": message})
	r.RemovePlayer(p)
}

// SelectJudge sets the judge, advancing to the next roster member by index
// when none is given, and announces the new judge (or its absence).
func (r *Room) SelectJudge(judge *Player) {
	if judge == nil && len(r.players) > 0 {
		current := -1
		for i, p := range r.players {
			if p == r.judge {
				current = i
				break
			}
		}
		judge = r.players[(current+1)%len(r.players)]
	}

	r.judge = judge
	if judge != nil {
		r.Broadcast(r.path("setJudge"), judge.id)
	} else {
		r.Broadcast(r.path("setJudge"), nil)
	}
}

// SelectQuestion sets the question card, drawing one when none is given.
// The outgoing question is returned to the used pile first.
func (r *Room) SelectQuestion(question *cards.Card) {
	if question == nil {
		drawn := r.selection.DrawQuestion()
		question = &drawn
	}
	if r.question != nil {
		r.selection.ReturnQuestion(*r.question)
	}
	r.question = question
	r.Broadcast(r.path("setQuestion"), question.Text)
}

// SelectAnswer sets (or clears, with nil) the round's chosen best answer
// and announces its text.
func (r *Room) SelectAnswer(answer []cards.Card) {
	r.answer = answer
	if answer != nil {
		r.Broadcast(r.path("setAnswer"), cards.Texts(answer))
	} else {
		r.Broadcast(r.path("setAnswer"), nil)
	}
}

// SetAnsweringPlayers sets the answering list. When none is given it is
// recomputed as all non-judge members, unrevealed, in freshly shuffled
// order with no stability across calls.
func (r *Room) SetAnsweringPlayers(list []*Answering) {
	if list == nil {
		list = make([]*Answering, 0, len(r.players))
		for _, p := range r.players {
			if p != r.judge {
				list = append(list, &Answering{Player: p})
			}
		}
		rand.Shuffle(len(list), func(i, j int) {
			list[i], list[j] = list[j], list[i]
		})
	}
	r.answering = list
	r.broadcastAnswering()
}

// RevealAnswer flips a single player's revealed flag, leaving the others
// untouched, and re-announces the full list.
func (r *Room) RevealAnswer(p *Player) {
	for _, entry := range r.answering {
		if entry.Player == p {
			entry.Revealed = true
		}
	}
	r.broadcastAnswering()
}

// PickAnswer awards the round to a player: score +1 and their selection
// becomes the room's chosen answer.
func (r *Room) PickAnswer(p *Player) {
	p.SetScore(p.score + 1)
	r.SelectAnswer(append([]cards.Card{}, p.selection...))
	r.record("answer_picked", map[string]interface{}{
		"playerID": p.id,
		"answer":   cards.Texts(p.selection),
		"filled":   r.filledQuestion(p.selection),
	})
}

// NextRound is the sole place round transitions happen: selections return
// to the used pile, hands top up, the chosen answer clears, a new question
// is drawn, the judge advances, and the answering set is reshuffled. Safe
// to call with zero players.
func (r *Room) NextRound() {
	for _, p := range r.players {
		for _, card := range p.selection {
			r.selection.ReturnAnswer(card)
		}
		p.ClearSelection()
		r.topUpHand(p)
	}

	r.SelectAnswer(nil)
	r.SelectQuestion(nil)
	r.SelectJudge(nil)
	r.SetAnsweringPlayers(nil)

	payload := map[string]interface{}{"playerCount": len(r.players)}
	if r.judge != nil {
		payload["judgeID"] = r.judge.id
	}
	if r.question != nil {
		payload["question"] = r.question.Text
	}
	r.record("round_started", payload)
}

// ResetDeck is the (re)start-game entry point: every score, hand and
// selection is cleared, the piles rebuild from the selected packs, and the
// first round begins.
func (r *Room) ResetDeck() {
	if r.question != nil {
		r.selection.ReturnQuestion(*r.question)
		r.question = nil
	}
	for _, p := range r.players {
		p.SetScore(0)
		r.clearCards(p)
	}
	r.selection.Reset()
	r.record("deck_reset", map[string]interface{}{"playerCount": len(r.players)})
	r.NextRound()
}

// SetAccessibility updates the room's visibility and capacity. Callers
// clamp maxPlayerCount at the message-handler boundary.
func (r *Room) SetAccessibility(private bool, maxPlayerCount int) {
	r.private = private
	r.maxPlayerCount = maxPlayerCount
	r.Broadcast(r.path("setAccessibility"), r.accessibility())
	r.notifyChange()
}

// SetHandSize updates the hand size and re-deals every non-empty hand from
// scratch. The previous hands are discarded entirely; a mid-game size
// change gets a clean deal rather than a top-up or trim.
func (r *Room) SetHandSize(size int) {
	r.handSize = size
	r.Broadcast(r.path("setHandSize"), size)
	for _, p := range r.players {
		if len(p.hand) == 0 {
			continue
		}
		for _, card := range p.hand {
			r.selection.ReturnAnswer(card)
		}
		p.hand = nil
		r.topUpHand(p)
	}
}

// Broadcast emits a message to every current member. Fire-and-forget; no
// acknowledgement is awaited and cross-member ordering is unspecified.
func (r *Room) Broadcast(message string, args ...interface{}) {
	for _, p := range r.players {
		p.conn.Emit(message, args...)
	}
}

// Snapshot builds the room payload delivered on retrieve requests.
func (r *Room) Snapshot() Snapshot {
	snapshot := Snapshot{
		ID:               r.id,
		Accessibility:    r.accessibility(),
		HandSize:         r.handSize,
		PlayerIDs:        make([]string, 0, len(r.players)),
		AnsweringPlayers: r.answeringViews(),
	}
	for _, p := range r.players {
		snapshot.PlayerIDs = append(snapshot.PlayerIDs, p.id)
	}
	if r.judge != nil {
		id := r.judge.id
		snapshot.JudgeID = &id
	}
	if r.question != nil {
		snapshot.Question = r.question.Text
	}
	if r.answer != nil {
		snapshot.Answer = cards.Texts(r.answer)
	}
	return snapshot
}

func (r *Room) accessibility() Accessibility {
	return Accessibility{Private: r.private, MaxPlayerCount: r.maxPlayerCount}
}

func (r *Room) answeringViews() []AnsweringView {
	views := make([]AnsweringView, len(r.answering))
	for i, entry := range r.answering {
		views[i] = AnsweringView{PlayerID: entry.Player.id, Revealed: entry.Revealed}
	}
	return views
}

func (r *Room) broadcastAnswering() {
	r.Broadcast(r.path("setAnsweringPlayers"), r.answeringViews())
}

// removeAnswering drops a player from the answering list, reporting whether
// the list changed.
func (r *Room) removeAnswering(p *Player) bool {
	for i, entry := range r.answering {
		if entry.Player == p {
			r.answering = append(r.answering[:i], r.answering[i+1:]...)
			return true
		}
	}
	return false
}

// topUpHand draws answer cards until the player holds handSize cards.
// Draws are best-effort: an exhausted deck supplies blank sentinels, so
// gameplay never blocks on missing content.
func (r *Room) topUpHand(p *Player) {
	hand := p.hand
	for len(hand) < r.handSize {
		hand = append(hand, r.selection.DrawAnswer())
	}
	p.SetHand(hand)
}

// clearCards returns everything the player holds to the used piles and
// empties their hand and selection.
func (r *Room) clearCards(p *Player) {
	for _, card := range p.hand {
		r.selection.ReturnAnswer(card)
	}
	for _, card := range p.selection {
		r.selection.ReturnAnswer(card)
	}
	p.ClearSelection()
	p.SetHand(nil)
}

// filledQuestion renders the current question with the given answers filled
// in, for journal records.
func (r *Room) filledQuestion(answers []cards.Card) string {
	if r.question == nil {
		return ""
	}
	return r.question.Fill(answers)
}

func (r *Room) notifyChange() {
	if r.onChange != nil {
		r.onChange(r)
	}
}

func (r *Room) record(event string, payload map[string]interface{}) {
	r.journal.Record(r.id, event, payload)
}

// installHandlers registers this room's message handlers on a member's
// connection, all owned by the room id so RemovePlayer can drop them in one
// step. Every handler except retrieve is gated: pickAnswer, nextRound and
// reveal on the current judge; kickPlayer, resetDeck, setAccessibility,
// setHandSize and selectionChange on the admin. Violations get a structured
// rejection and mutate nothing.
func (r *Room) installHandlers(p *Player) {
	conn := p.conn

	conn.On(r.path("retrieve"), r.id, func(args socket.Args) interface{} {
		return r.Snapshot()
	})

	conn.On(r.path("pickAnswer"), r.id, func(args socket.Args) interface{} {
		if r.judge != p {
			return socket.Fail(socket.CodeNotJudge, "not permitted")
		}
		if r.answer != nil {
			return socket.Fail(socket.CodeConflict, "answer was already selected")
		}
		if target := r.playerByID(args.String(0)); target != nil {
			r.PickAnswer(target)
		}
		return socket.OK()
	})

	conn.On(r.path("nextRound"), r.id, func(args socket.Args) interface{} {
		if r.judge != p {
			return socket.Fail(socket.CodeNotJudge, "not permitted")
		}
		r.NextRound()
		return socket.OK()
	})

	conn.On(r.path("reveal"), r.id, func(args socket.Args) interface{} {
		if r.judge != p {
			return socket.Fail(socket.CodeNotJudge, "not permitted")
		}
		if target := r.playerByID(args.String(0)); target != nil {
			r.RevealAnswer(target)
		}
		return socket.OK()
	})

	conn.On(r.path("kickPlayer"), r.id, func(args socket.Args) interface{} {
		if r.Admin() != p {
			return socket.Fail(socket.CodeNotAdmin, "not permitted")
		}
		if target := r.playerByID(args.String(0)); target != nil {
			r.KickPlayer(target, args.String(1))
		}
		return socket.OK()
	})

	conn.On(r.path("resetDeck"), r.id, func(args socket.Args) interface{} {
		if r.Admin() != p {
			return socket.Fail(socket.CodeNotAdmin, "not permitted")
		}
		r.ResetDeck()
		return socket.OK()
	})

	conn.On(r.path("setAccessibility"), r.id, func(args socket.Args) interface{} {
		if r.Admin() != p {
			return socket.Fail(socket.CodeNotAdmin, "not permitted")
		}
		var accessibility Accessibility
		if !args.Decode(0, &accessibility) {
			accessibility = r.accessibility()
		}
		if accessibility.MaxPlayerCount < MinPlayerCount {
			accessibility.MaxPlayerCount = MinPlayerCount
		}
		r.SetAccessibility(accessibility.Private, accessibility.MaxPlayerCount)
		return socket.OK()
	})

	conn.On(r.path("setHandSize"), r.id, func(args socket.Args) interface{} {
		if r.Admin() != p {
			return socket.Fail(socket.CodeNotAdmin, "not permitted")
		}
		size := args.Int(0)
		if size < MinHandSize {
			size = MinHandSize
		}
		if size > MaxHandSize {
			size = MaxHandSize
		}
		r.SetHandSize(size)
		return socket.OK()
	})

	conn.On(r.selectionPath("retrieve"), r.id, func(args socket.Args) interface{} {
		return map[string]interface{}{
			"selection":      r.selection.SelectedMeta(),
			"availablePacks": r.selection.AvailableMeta(),
		}
	})

	conn.On(r.selectionPath("selectionChange"), r.id, func(args socket.Args) interface{} {
		if r.Admin() != p {
			return socket.Fail(socket.CodeNotAdmin, "not permitted")
		}
		var picked []cards.Meta
		args.Decode(0, &picked)
		names := make([]string, len(picked))
		for i, meta := range picked {
			names[i] = meta.Name
		}
		r.SetPackSelection(names)
		return socket.OK()
	})
}

// SetPackSelection narrows the selected packs and announces the new pack
// metadata to the room. Card contents are never part of the payload.
func (r *Room) SetPackSelection(names []string) {
	r.selection.SetSelection(names)
	r.Broadcast(r.selectionPath("selectionChange"), r.selection.SelectedMeta())
}
