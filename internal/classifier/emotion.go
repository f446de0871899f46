package classifier

import (
	"fmt"
	"strings"
	"unicode"
)

// Emotion is one label of the closed classification set.
type Emotion string

const (
	Shame   Emotion = "shame"
	Sadness Emotion = "sadness"
	Joy     Emotion = "joy"
	Guilt   Emotion = "guilt"
	Fear    Emotion = "fear"
	Disgust Emotion = "disgust"
	Anger   Emotion = "anger"
)

// Emotions lists every label the classifier may return.
var Emotions = []Emotion{Shame, Sadness, Joy, Guilt, Fear, Disgust, Anger}

var emojis = map[Emotion]string{
	Joy:     "😊",
	Fear:    "😨",
	Disgust: "🤢",
	Guilt:   "😔",
	Shame:   "😳",
	Sadness: "😢",
	Anger:   "😡",
}

// Emoji returns the display glyph for the label.
func (e Emotion) Emoji() string {
	if g, ok := emojis[e]; ok {
		return g
	}
	return "🔍"
}

// Title returns the label with its first letter upper-cased.
func (e Emotion) Title() string {
	if e == "" {
		return ""
	}
	return strings.ToUpper(string(e[:1])) + string(e[1:])
}

// ParseEmotion normalizes raw model output into a label. Surrounding
// whitespace, case and punctuation are ignored; anything outside the closed
// set is an error.
func ParseEmotion(raw string) (Emotion, error) {
	cleaned := strings.ToLower(strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
	e := Emotion(cleaned)
	if _, ok := emojis[e]; !ok {
		return "", fmt.Errorf("unexpected label %q", raw)
	}
	return e, nil
}
