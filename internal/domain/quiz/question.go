package quiz

import (
	"fmt"
	"strings"
)

// OptionLabels are the four fixed option labels, in display order.
var OptionLabels = []string{"a", "b", "c", "d"}

// Question is a generated multiple-choice question. It lives only as long as
// the session that requested it.
type Question struct {
	MCQ     string            `json:"mcq"`
	Options map[string]string `json:"options"`
	Correct string            `json:"correct"`
}

func IsOptionLabel(label string) bool {
	for _, l := range OptionLabels {
		if l == label {
			return true
		}
	}
	return false
}

// CorrectText is the option text behind the correct label.
func (q Question) CorrectText() string {
	return q.Options[q.Correct]
}

// OptionTexts returns the option texts in label order.
func (q Question) OptionTexts() []string {
	out := make([]string, 0, len(OptionLabels))
	for _, l := range OptionLabels {
		out = append(out, q.Options[l])
	}
	return out
}

// Validate checks the shape the rest of the system relies on: a question
// text, exactly the four labels, and a correct label among them.
func (q Question) Validate() error {
	if strings.TrimSpace(q.MCQ) == "" {
		return fmt.Errorf("empty question text")
	}
	if len(q.Options) != len(OptionLabels) {
		return fmt.Errorf("expected %d options, got %d", len(OptionLabels), len(q.Options))
	}
	for _, l := range OptionLabels {
		if _, ok := q.Options[l]; !ok {
			return fmt.Errorf("missing option %q", l)
		}
	}
	if !IsOptionLabel(q.Correct) {
		return fmt.Errorf("correct label %q not in a-d", q.Correct)
	}
	return nil
}

// Answer pairs a displayed question with the user's choice. Selected is nil
// when the user left the question blank.
type Answer struct {
	Question string
	Selected *string
	Correct  string
}
