// internal/cards/card.go
package cards

import "strings"

// Placeholder text carried by sentinel cards handed out when no pack is
// selected. The question keeps a single fill-in marker so clients still
// render one answer slot.
const (
	blankQuestionText = "_"
	blankAnswerText   = "(blank)"
)

// Card is a question or answer text value. Blank marks the sentinel variant
// returned when the deck cannot supply a real card; sentinels are checked by
// this tag, never by type identity, and are never recycled into a pile.
type Card struct {
	Text  string `json:"text"`
	Blank bool   `json:"blank,omitempty"`
}

// NewCard creates a real card holding the given text.
func NewCard(text string) Card {
	return Card{Text: text}
}

// BlankQuestion returns the sentinel question card.
func BlankQuestion() Card {
	return Card{Text: blankQuestionText, Blank: true}
}

// BlankAnswer returns the sentinel answer card.
func BlankAnswer() Card {
	return Card{Text: blankAnswerText, Blank: true}
}

// AnswerCount reports how many answers a question card requires, counted as
// the occurrences of the "_" fill-in marker.
func (c Card) AnswerCount() int {
	return strings.Count(c.Text, "_")
}

// Fill renders a question's text with the given answers substituted for its
// fill-in markers. Missing answers leave the marker's slot empty.
func (c Card) Fill(answers []Card) string {
	parts := strings.Split(c.Text, "_")
	var b strings.Builder
	for i, part := range parts {
		b.WriteString(part)
		if i < len(parts)-1 {
			if i < len(answers) {
				b.WriteString(answers[i].Text)
			}
		}
	}
	return b.String()
}

// Texts maps a list of cards to their text values.
func Texts(list []Card) []string {
	texts := make([]string, len(list))
	for i, c := range list {
		texts[i] = c.Text
	}
	return texts
}
