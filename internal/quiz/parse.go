package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
)

// ErrMalformedReply marks a model reply that is not JSON of the expected shape.
var ErrMalformedReply = errors.New("quiz: malformed model reply")

type replyEnvelope struct {
	MCQs *[]types.Question `json:"mcqs"`
}

// ParseReply decodes a model reply into at most limit questions. A reply may be
// wrapped in a ```json fence. Every record must validate; limit <= 0 keeps all.
func ParseReply(raw string, limit int) ([]types.Question, error) {
	text := stripFence(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedReply)
	}

	var env replyEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if env.MCQs == nil {
		return nil, fmt.Errorf("%w: missing \"mcqs\" key", ErrMalformedReply)
	}

	qs := *env.MCQs
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrMalformedReply)
	}
	if limit > 0 && len(qs) > limit {
		qs = qs[:limit]
	}
	out := make([]types.Question, 0, len(qs))
	for i, q := range qs {
		q.MCQ = strings.TrimSpace(q.MCQ)
		q.Correct = strings.ToLower(strings.TrimSpace(q.Correct))
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("%w: mcqs[%d]: %v", ErrMalformedReply, i, err)
		}
		out = append(out, q)
	}
	return out, nil
}

func stripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// drop the info string ("json") on the opening line
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
