package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
)

var (
	ErrNotFound          = errors.New("session: not found")
	ErrInvalidTransition = errors.New("session: action not allowed in current state")
	ErrUnknownAction     = errors.New("session: unknown action")
)

type State string

const (
	StateLogin   State = "login"
	StateSignup  State = "signup"
	StateHome    State = "home"
	StateHistory State = "history"
)

type Action string

const (
	ActionLogin       Action = "login"
	ActionGoSignup    Action = "go_signup"
	ActionSignup      Action = "signup"
	ActionBackToLogin Action = "back_to_login"
	ActionGenerate    Action = "generate"
	ActionSelect      Action = "select"
	ActionSubmit      Action = "submit"
	ActionViewHistory Action = "view_history"
	ActionBackToHome  Action = "back_to_home"
	ActionLogout      Action = "logout"
)

func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ActionLogin, ActionGoSignup, ActionSignup, ActionBackToLogin,
		ActionGenerate, ActionSelect, ActionSubmit,
		ActionViewHistory, ActionBackToHome, ActionLogout:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
}

type MessageLevel string

const (
	LevelSuccess MessageLevel = "success"
	LevelError   MessageLevel = "error"
	LevelInfo    MessageLevel = "info"
)

// User-visible messages.
const (
	MsgLoginOK       = "Login successful!"
	MsgLoginFailed   = "Invalid username or password"
	MsgSignupOK      = "Signup successful! You can now log in."
	MsgSignupTaken   = "Username already exists. Please choose a different one."
	MsgSignupBlank   = "Please enter a username and password."
	MsgNoText        = "Please paste some text content to generate a quiz."
	MsgNoQuiz        = "Generate a quiz first."
	MsgBadSelection  = "That option is not available for this question."
	MsgScoreTemplate = "You scored %d out of %d"
)

// ResultItem is one graded question of a submitted quiz.
type ResultItem struct {
	Question  string  `json:"question"`
	Selected  *string `json:"selected"`
	Correct   string  `json:"correct"`
	IsCorrect bool    `json:"is_correct"`
}

type Result struct {
	AttemptID uuid.UUID    `json:"attempt_id"`
	Score     int          `json:"score"`
	Total     int          `json:"total"`
	Items     []ResultItem `json:"items"`
}

// Session is the per-client context every action runs against. It is plain
// data; the Store serializes access.
type Session struct {
	ID            uuid.UUID
	State         State
	Authenticated bool
	Username      string

	Difficulty types.Difficulty
	Questions  []types.Question
	// Selections maps question index to the chosen option label.
	Selections map[int]string

	Message      string
	MessageLevel MessageLevel
	LastResult   *Result
	History      []*types.QuizResult

	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id uuid.UUID, now time.Time) *Session {
	return &Session{
		ID:         id,
		State:      StateLogin,
		Selections: map[int]string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Reset returns the session to its initial defaults, keeping identity.
func (s *Session) Reset() {
	*s = Session{
		ID:         s.ID,
		State:      StateLogin,
		Selections: map[int]string{},
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Selections = make(map[int]string, len(s.Selections))
	for k, v := range s.Selections {
		c.Selections[k] = v
	}
	if s.Questions != nil {
		c.Questions = append([]types.Question(nil), s.Questions...)
	}
	if s.History != nil {
		c.History = append([]*types.QuizResult(nil), s.History...)
	}
	if s.LastResult != nil {
		r := *s.LastResult
		r.Items = append([]ResultItem(nil), s.LastResult.Items...)
		c.LastResult = &r
	}
	return &c
}

func (s *Session) setMessage(level MessageLevel, msg string) {
	s.Message = msg
	s.MessageLevel = level
}

func (s *Session) clearMessage() {
	s.Message = ""
	s.MessageLevel = ""
}

func (s *Session) clearQuiz() {
	s.Questions = nil
	s.Selections = map[int]string{}
}
