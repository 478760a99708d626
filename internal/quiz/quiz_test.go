package quiz

import (
	"errors"
	"strings"
	"testing"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/llm"
)

func strPtr(s string) *string { return &s }

func TestBuildPromptIsDeterministic(t *testing.T) {
	a := BuildPrompt("The sky is blue.", types.DifficultyEasy, 5)
	b := BuildPrompt("The sky is blue.", types.DifficultyEasy, 5)
	if a != b {
		t.Fatalf("prompt not deterministic")
	}
	for _, want := range []string{
		"Text: The sky is blue.",
		"difficulty level as easy",
		"quiz of 5 multiple choice questions",
		"not repeated",
		`"mcqs"`,
	} {
		if !strings.Contains(a, want) {
			t.Fatalf("prompt missing %q:\n%s", want, a)
		}
	}
	if strings.Contains(a, "{text_content}") || strings.Contains(a, "{count}") {
		t.Fatalf("unreplaced placeholder in prompt:\n%s", a)
	}
}

func TestBuildPromptDoesNotExpandPlaceholdersInSource(t *testing.T) {
	got := BuildPrompt("literal {count} here", types.DifficultyHard, 3)
	if !strings.Contains(got, "literal {count} here") {
		t.Fatalf("source text was rewritten:\n%s", got)
	}
}

func TestFewShotExchange(t *testing.T) {
	turns := LoadPrompts(nil).FewShot()
	if len(turns) != 2 {
		t.Fatalf("expected 2 few-shot turns, got %d", len(turns))
	}
	if turns[0].Role != llm.RoleUser || turns[1].Role != llm.RoleModel {
		t.Fatalf("unexpected roles: %v, %v", turns[0].Role, turns[1].Role)
	}
	qs, err := ParseReply(turns[1].Text, 0)
	if err != nil {
		t.Fatalf("few-shot model turn should parse: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 example questions, got %d", len(qs))
	}
}

func TestParseReply(t *testing.T) {
	reply := "```json\n" + `{"mcqs":[
		{"mcq":"Q1","options":{"a":"A","b":"B","c":"C","d":"D"},"correct":"B"},
		{"mcq":"Q2","options":{"a":"A","b":"B","c":"C","d":"D"},"correct":"d"}
	]}` + "\n```"
	qs, err := ParseReply(reply, 5)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if len(qs) != 2 || qs[0].Correct != "b" || qs[1].CorrectText() != "D" {
		t.Fatalf("unexpected questions: %+v", qs)
	}
}

func TestParseReplyTruncates(t *testing.T) {
	one := `{"mcq":"Q","options":{"a":"A","b":"B","c":"C","d":"D"},"correct":"a"}`
	reply := `{"mcqs":[` + strings.Repeat(one+",", 6) + one + `]}`
	qs, err := ParseReply(reply, 5)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if len(qs) != 5 {
		t.Fatalf("expected 5, got %d", len(qs))
	}
}

func TestParseReplyMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":      "sorry, I cannot help",
		"missing key":   `{"questions":[]}`,
		"empty list":    `{"mcqs":[]}`,
		"three options": `{"mcqs":[{"mcq":"Q","options":{"a":"A","b":"B","c":"C"},"correct":"a"}]}`,
		"bad label":     `{"mcqs":[{"mcq":"Q","options":{"a":"A","b":"B","c":"C","d":"D"},"correct":"e"}]}`,
		"blank mcq":     `{"mcqs":[{"mcq":"  ","options":{"a":"A","b":"B","c":"C","d":"D"},"correct":"a"}]}`,
	}
	for name, reply := range cases {
		if _, err := ParseReply(reply, 5); !errors.Is(err, ErrMalformedReply) {
			t.Fatalf("%s: expected ErrMalformedReply, got %v", name, err)
		}
	}
}

func TestScore(t *testing.T) {
	answers := []types.Answer{
		{Question: "Q1", Selected: strPtr("Blue"), Correct: "Blue"},
		{Question: "Q2", Selected: strPtr("Red"), Correct: "Green"},
		{Question: "Q3", Selected: nil, Correct: "Yes"},
		{Question: "Q4", Selected: strPtr("yes"), Correct: "Yes"},
		{Question: "Q5", Selected: strPtr("4"), Correct: "4"},
	}
	if got := Score(answers); got != 2 {
		t.Fatalf("Score = %d, want 2", got)
	}
}

func TestScoreAllUnselected(t *testing.T) {
	answers := []types.Answer{
		{Question: "Q1", Correct: "A"},
		{Question: "Q2", Correct: ""},
	}
	if got := Score(answers); got != 0 {
		t.Fatalf("Score = %d, want 0", got)
	}
}

func TestGrade(t *testing.T) {
	qs := []types.Question{
		{MCQ: "Q1", Options: map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"}, Correct: "b"},
		{MCQ: "Q2", Options: map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"}, Correct: "c"},
		{MCQ: "Q3", Options: map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"}, Correct: "a"},
	}
	answers := Grade(qs, map[int]string{0: "b", 1: "a"})
	if len(answers) != 3 {
		t.Fatalf("expected 3 answers")
	}
	if answers[0].Selected == nil || *answers[0].Selected != "B" || answers[0].Correct != "B" {
		t.Fatalf("answer 0: %+v", answers[0])
	}
	if answers[2].Selected != nil {
		t.Fatalf("answer 2 should be unselected")
	}
	if got := Score(answers); got != 1 {
		t.Fatalf("Score = %d, want 1", got)
	}
}
