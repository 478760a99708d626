package quiz

import types "github.com/yungbote/quizgen-backend/internal/domain/quiz"

// Score counts answers whose selected option text equals the correct text.
// An unselected answer never matches.
func Score(answers []types.Answer) int {
	n := 0
	for _, a := range answers {
		if a.Selected != nil && *a.Selected == a.Correct {
			n++
		}
	}
	return n
}

// Grade pairs each displayed question with the label the user picked and
// returns the answers in display order. selections maps question index to
// option label; missing or unknown labels count as unselected.
func Grade(questions []types.Question, selections map[int]string) []types.Answer {
	out := make([]types.Answer, 0, len(questions))
	for i, q := range questions {
		a := types.Answer{Question: q.MCQ, Correct: q.CorrectText()}
		if label, ok := selections[i]; ok {
			if text, ok := q.Options[label]; ok {
				t := text
				a.Selected = &t
			}
		}
		out = append(out, a)
	}
	return out
}
