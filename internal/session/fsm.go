package session

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/apierr"
	"github.com/yungbote/quizgen-backend/internal/quiz"
)

// Input carries the action and whichever fields it needs.
type Input struct {
	Action     Action
	Username   string
	Password   string
	Text       string
	Difficulty string
	Question   *int
	Option     string
}

// Effects are the side effects transitions may perform. Errors returned by
// Effects abort the action and leave the session untouched.
type Effects interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
	CreateAccount(ctx context.Context, username, password string) (bool, error)
	GenerateQuiz(ctx context.Context, sourceText string, difficulty types.Difficulty) ([]types.Question, error)
	RecordAttempt(ctx context.Context, username string, answers []types.Answer) (uuid.UUID, error)
	FetchHistory(ctx context.Context, username string) ([]*types.QuizResult, error)
}

type transitionFunc func(ctx context.Context, s *Session, in Input, fx Effects) error

// transitions is the whole machine: (state, action) -> handler. A handler sets
// s.State itself; recoverable failures leave it where it was.
var transitions = map[State]map[Action]transitionFunc{
	StateLogin: {
		ActionLogin:    doLogin,
		ActionGoSignup: goTo(StateSignup),
	},
	StateSignup: {
		ActionSignup:      doSignup,
		ActionBackToLogin: goTo(StateLogin),
	},
	StateHome: {
		ActionGenerate:    doGenerate,
		ActionSelect:      doSelect,
		ActionSubmit:      doSubmit,
		ActionViewHistory: doViewHistory,
		ActionLogout:      doLogout,
	},
	StateHistory: {
		ActionBackToHome: doBackToHome,
	},
}

// Allowed lists the actions valid in state, sorted.
func Allowed(state State) []Action {
	row := transitions[state]
	out := make([]Action, 0, len(row))
	for a := range row {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Dispatch applies in to s. On error s is left exactly as it was.
func Dispatch(ctx context.Context, s *Session, in Input, fx Effects) error {
	row, ok := transitions[s.State]
	if !ok {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidTransition, s.State)
	}
	fn, ok := row[in.Action]
	if !ok {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, in.Action, s.State)
	}

	next := s.Clone()
	if err := fn(ctx, next, in, fx); err != nil {
		return err
	}
	*s = *next
	return nil
}

func goTo(state State) transitionFunc {
	return func(_ context.Context, s *Session, _ Input, _ Effects) error {
		s.State = state
		s.clearMessage()
		return nil
	}
}

func doLogin(ctx context.Context, s *Session, in Input, fx Effects) error {
	username := strings.TrimSpace(in.Username)
	ok, err := fx.Authenticate(ctx, username, in.Password)
	if err != nil {
		return err
	}
	if !ok {
		s.setMessage(LevelError, MsgLoginFailed)
		return nil
	}
	s.Authenticated = true
	s.Username = username
	s.State = StateHome
	s.setMessage(LevelSuccess, MsgLoginOK)
	return nil
}

func doSignup(ctx context.Context, s *Session, in Input, fx Effects) error {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		s.setMessage(LevelError, MsgSignupBlank)
		return nil
	}
	created, err := fx.CreateAccount(ctx, username, in.Password)
	if err != nil {
		return err
	}
	if !created {
		s.setMessage(LevelError, MsgSignupTaken)
		return nil
	}
	s.State = StateLogin
	s.setMessage(LevelSuccess, MsgSignupOK)
	return nil
}

func doGenerate(ctx context.Context, s *Session, in Input, fx Effects) error {
	// blank input is rejected, but the text goes to generation exactly as typed
	if strings.TrimSpace(in.Text) == "" {
		s.setMessage(LevelError, MsgNoText)
		return nil
	}
	difficulty := types.DifficultyEasy
	if strings.TrimSpace(in.Difficulty) != "" {
		d, err := types.ParseDifficulty(in.Difficulty)
		if err != nil {
			return apierr.BadRequest("invalid_difficulty", err)
		}
		difficulty = d
	}

	questions, err := fx.GenerateQuiz(ctx, in.Text, difficulty)
	if err != nil {
		return err
	}
	s.Difficulty = difficulty
	s.Questions = questions
	s.Selections = map[int]string{}
	s.LastResult = nil
	s.clearMessage()
	return nil
}

func doSelect(_ context.Context, s *Session, in Input, _ Effects) error {
	if len(s.Questions) == 0 {
		s.setMessage(LevelError, MsgNoQuiz)
		return nil
	}
	label := strings.ToLower(strings.TrimSpace(in.Option))
	if in.Question == nil || *in.Question < 0 || *in.Question >= len(s.Questions) || !types.IsOptionLabel(label) {
		s.setMessage(LevelError, MsgBadSelection)
		return nil
	}
	s.Selections[*in.Question] = label
	s.clearMessage()
	return nil
}

func doSubmit(ctx context.Context, s *Session, _ Input, fx Effects) error {
	if len(s.Questions) == 0 {
		s.setMessage(LevelError, MsgNoQuiz)
		return nil
	}
	answers := quiz.Grade(s.Questions, s.Selections)
	score := quiz.Score(answers)

	attemptID, err := fx.RecordAttempt(ctx, s.Username, answers)
	if err != nil {
		return err
	}

	items := make([]ResultItem, 0, len(answers))
	for _, a := range answers {
		items = append(items, ResultItem{
			Question:  a.Question,
			Selected:  a.Selected,
			Correct:   a.Correct,
			IsCorrect: a.Selected != nil && *a.Selected == a.Correct,
		})
	}
	s.LastResult = &Result{AttemptID: attemptID, Score: score, Total: len(answers), Items: items}
	s.clearQuiz()
	s.setMessage(LevelInfo, fmt.Sprintf(MsgScoreTemplate, score, len(answers)))
	return nil
}

func doViewHistory(ctx context.Context, s *Session, _ Input, fx Effects) error {
	history, err := fx.FetchHistory(ctx, s.Username)
	if err != nil {
		return err
	}
	s.History = history
	s.State = StateHistory
	s.clearMessage()
	return nil
}

func doBackToHome(_ context.Context, s *Session, _ Input, _ Effects) error {
	s.History = nil
	s.State = StateHome
	s.clearMessage()
	return nil
}

func doLogout(_ context.Context, s *Session, _ Input, _ Effects) error {
	s.Reset()
	return nil
}
