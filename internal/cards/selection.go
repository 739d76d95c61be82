// internal/cards/selection.go
package cards

import "math/rand"

// Selection is one room's deck manager. It tracks which packs the room
// plays with and keeps four disjoint piles: available/used questions and
// available/used answers. A card sits in exactly one pile at a time; cards
// in play (in a hand or on the table) sit in none.
//
// All methods are invoked from the event loop and need no locking.
type Selection struct {
	library  *Library
	selected []*Pack

	availableQuestions []Card
	usedQuestions      []Card
	availableAnswers   []Card
	usedAnswers        []Card
}

// defaultLanguage selects the starting packs for a fresh room.
const defaultLanguage = "english"

// NewSelection creates a room's selection with the library's english packs
// pre-selected.
func NewSelection(library *Library) *Selection {
	return &Selection{
		library:  library,
		selected: library.ByLanguage(defaultLanguage),
	}
}

// SetSelection narrows the selected packs to those of the library whose
// names appear in the argument; unknown names are dropped silently.
func (s *Selection) SetSelection(names []string) {
	s.selected = s.library.Find(names)
}

// SelectedMeta returns descriptors of the currently selected packs.
func (s *Selection) SelectedMeta() []Meta {
	metas := make([]Meta, len(s.selected))
	for i, p := range s.selected {
		metas[i] = p.Meta()
	}
	return metas
}

// AvailableMeta returns descriptors of every pack the library offers.
func (s *Selection) AvailableMeta() []Meta {
	return s.library.Meta()
}

// DrawQuestion removes and returns a uniformly random question from the
// available pile, refilling the pile from the selected packs first if it is
// empty. With no packs selected the pile stays empty and a blank sentinel is
// returned, so drawing always succeeds.
func (s *Selection) DrawQuestion() Card {
	if len(s.availableQuestions) == 0 {
		s.resetQuestions()
	}
	if card, ok := draw(&s.availableQuestions); ok {
		return card
	}
	return BlankQuestion()
}

// DrawAnswer removes and returns a uniformly random answer card, with the
// same refill and sentinel behavior as DrawQuestion.
func (s *Selection) DrawAnswer() Card {
	if len(s.availableAnswers) == 0 {
		s.resetAnswers()
	}
	if card, ok := draw(&s.availableAnswers); ok {
		return card
	}
	return BlankAnswer()
}

// ReturnQuestion moves a question card to the used pile. Sentinels are not
// tracked and are discarded.
func (s *Selection) ReturnQuestion(card Card) {
	if !card.Blank {
		s.usedQuestions = append(s.usedQuestions, card)
	}
}

// ReturnAnswer moves an answer card to the used pile, discarding sentinels.
func (s *Selection) ReturnAnswer(card Card) {
	if !card.Blank {
		s.usedAnswers = append(s.usedAnswers, card)
	}
}

// Reset rebuilds both available piles from the selected packs and clears the
// used piles. Used for a full game restart.
func (s *Selection) Reset() {
	s.resetQuestions()
	s.resetAnswers()
}

// resetQuestions refills the available questions from the selected packs,
// discarding the used pile. Refill is sourced from the packs, not the used
// pile, so supply is effectively infinite while any pack is selected.
func (s *Selection) resetQuestions() {
	s.availableQuestions = s.availableQuestions[:0]
	for _, p := range s.selected {
		s.availableQuestions = append(s.availableQuestions, p.Questions...)
	}
	s.usedQuestions = nil
}

func (s *Selection) resetAnswers() {
	s.availableAnswers = s.availableAnswers[:0]
	for _, p := range s.selected {
		s.availableAnswers = append(s.availableAnswers, p.Answers...)
	}
	s.usedAnswers = nil
}

// draw removes a uniformly random card from the pile.
func draw(pile *[]Card) (Card, bool) {
	cards := *pile
	if len(cards) == 0 {
		return Card{}, false
	}
	i := rand.Intn(len(cards))
	card := cards[i]
	cards[i] = cards[len(cards)-1]
	*pile = cards[:len(cards)-1]
	return card, true
}
