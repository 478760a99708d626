package session

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
)

type QuestionView struct {
	Index   int               `json:"index"`
	MCQ     string            `json:"mcq"`
	Options map[string]string `json:"options"`
	// Choices are the option texts in label order (a, b, c, d).
	Choices []string          `json:"choices"`
}

type HistoryItem struct {
	AttemptID     uuid.UUID `json:"attempt_id"`
	Question      string    `json:"question"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	CreatedAt     time.Time `json:"created_at"`
}

// View is what a client renders. Correct labels of an unsubmitted quiz are
// never included.
type View struct {
	SessionID     uuid.UUID      `json:"session_id"`
	Screen        State          `json:"screen"`
	Authenticated bool           `json:"authenticated"`
	Username      string         `json:"username,omitempty"`
	Message       string         `json:"message,omitempty"`
	MessageLevel  MessageLevel   `json:"message_level,omitempty"`
	Difficulty    string         `json:"difficulty,omitempty"`
	Questions     []QuestionView `json:"questions"`
	Selections    map[int]string `json:"selections"`
	LastResult    *Result        `json:"last_result,omitempty"`
	History       []HistoryItem  `json:"history,omitempty"`
	Difficulties  []string       `json:"difficulties"`
	Actions       []Action       `json:"actions"`
}

func HistoryItems(rows []*types.QuizResult) []HistoryItem {
	out := make([]HistoryItem, 0, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		out = append(out, HistoryItem{
			AttemptID:     r.AttemptID,
			Question:      r.Question,
			UserAnswer:    r.UserAnswer,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     r.IsCorrect,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}

func (s *Session) View() View {
	v := View{
		SessionID:     s.ID,
		Screen:        s.State,
		Authenticated: s.Authenticated,
		Username:      s.Username,
		Message:       s.Message,
		MessageLevel:  s.MessageLevel,
		Difficulty:    string(s.Difficulty),
		Questions:     make([]QuestionView, 0, len(s.Questions)),
		Selections:    make(map[int]string, len(s.Selections)),
		LastResult:    s.LastResult,
		Actions:       Allowed(s.State),
	}
	for i, q := range s.Questions {
		opts := make(map[string]string, len(q.Options))
		for k, val := range q.Options {
			opts[k] = val
		}
		v.Questions = append(v.Questions, QuestionView{Index: i, MCQ: q.MCQ, Options: opts, Choices: q.OptionTexts()})
	}
	for k, val := range s.Selections {
		v.Selections[k] = val
	}
	if s.State == StateHistory {
		v.History = HistoryItems(s.History)
	}
	for _, d := range types.Difficulties() {
		v.Difficulties = append(v.Difficulties, d.String())
	}
	return v
}
