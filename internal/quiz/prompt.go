package quiz

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/quizgen-backend/internal/domain/quiz"
	"github.com/yungbote/quizgen-backend/internal/platform/llm"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
)

const promptOverrideEnv = "QUIZ_PROMPT_YAML"

// DefaultQuestionCount is the nominal quiz length.
const DefaultQuestionCount = 5

//go:embed prompt.yaml
var promptFS embed.FS

// fallback used when both the override and the embedded document fail to load
const fallbackTemplate = `Text: {text_content}
You are an expert in generating MCQ type quiz on the basis of provided content.
Given the above text, create a quiz of {count} multiple choice questions keeping difficulty level as {quiz_level}.
Make sure the questions are not repeated and check all the questions to be conforming the text as well.
Make sure to format your response like RESPONSE_JSON below and use it as a guide.
Ensure to make an array of {count} MCQs referring the following response json.
Here is the RESPONSE_JSON:

{response_json}`

const fallbackResponseJSON = `{"mcqs": [{"mcq": "multiple choice question1", "options": {"a": "choice here1", "b": "choice here2", "c": "choice here3", "d": "choice here4"}, "correct": "correct choice option in the form of a, b, c or d"}]}`

type yamlPromptSpec struct {
	Prompt       string         `yaml:"prompt"`
	Version      int            `yaml:"version"`
	Template     string         `yaml:"template"`
	ResponseJSON string         `yaml:"response_json"`
	FewShot      []yamlTurnSpec `yaml:"few_shot"`
}

type yamlTurnSpec struct {
	Role string `yaml:"role"`
	Text string `yaml:"text"`
}

var promptOnce sync.Once
var promptCache *yamlPromptSpec
var promptErr error

func currentPromptSpec(log *logger.Logger) *yamlPromptSpec {
	promptOnce.Do(func() {
		promptCache, promptErr = loadPromptSpec()
	})
	if promptErr != nil && log != nil {
		if promptCache != nil {
			log.Warn("quiz: prompt override load failed; using embedded prompt", "error", promptErr)
		} else {
			log.Warn("quiz: prompt spec load failed; using fallback", "error", promptErr)
		}
	}
	return promptCache
}

func loadPromptSpec() (*yamlPromptSpec, error) {
	if path := strings.TrimSpace(os.Getenv(promptOverrideEnv)); path != "" {
		spec, err := parsePromptSpec(func() ([]byte, error) { return os.ReadFile(path) })
		if err == nil {
			return spec, nil
		}
		// a broken override still leaves the embedded document usable
		embedded, embErr := parsePromptSpec(func() ([]byte, error) { return promptFS.ReadFile("prompt.yaml") })
		if embErr != nil {
			return nil, errors.Join(err, embErr)
		}
		return embedded, fmt.Errorf("override %s: %w", path, err)
	}
	return parsePromptSpec(func() ([]byte, error) { return promptFS.ReadFile("prompt.yaml") })
}

func parsePromptSpec(read func() ([]byte, error)) (*yamlPromptSpec, error) {
	data, err := read()
	if err != nil {
		return nil, err
	}
	var spec yamlPromptSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := validatePromptSpec(&spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func validatePromptSpec(spec *yamlPromptSpec) error {
	if spec == nil {
		return errors.New("missing spec")
	}
	if strings.TrimSpace(spec.Prompt) != "quiz_mcq" {
		return fmt.Errorf("unexpected prompt: %s", spec.Prompt)
	}
	if !strings.Contains(spec.Template, "{text_content}") {
		return errors.New("template must reference {text_content}")
	}
	if strings.TrimSpace(spec.ResponseJSON) == "" {
		return errors.New("response_json is required")
	}
	for i, t := range spec.FewShot {
		switch llm.Role(strings.TrimSpace(t.Role)) {
		case llm.RoleUser, llm.RoleModel:
		default:
			return fmt.Errorf("few_shot[%d]: unknown role %q", i, t.Role)
		}
	}
	return nil
}

// Prompts holds the loaded prompt document. The zero value is unusable; use
// LoadPrompts.
type Prompts struct {
	template     string
	responseJSON string
	fewShot      []llm.Turn
}

// LoadPrompts reads the prompt document, preferring the file named by
// QUIZ_PROMPT_YAML and falling back to the embedded copy.
func LoadPrompts(log *logger.Logger) *Prompts {
	p := &Prompts{template: fallbackTemplate, responseJSON: fallbackResponseJSON}
	if spec := currentPromptSpec(log); spec != nil {
		p.template = spec.Template
		p.responseJSON = strings.TrimSpace(spec.ResponseJSON)
		for _, t := range spec.FewShot {
			p.fewShot = append(p.fewShot, llm.Turn{Role: llm.Role(strings.TrimSpace(t.Role)), Text: t.Text})
		}
	}
	return p
}

// FewShot returns a copy of the priming exchange sent before every prompt.
func (p *Prompts) FewShot() []llm.Turn {
	out := make([]llm.Turn, len(p.fewShot))
	copy(out, p.fewShot)
	return out
}

// Build interpolates the inputs into the template. It does not validate or
// truncate sourceText.
func (p *Prompts) Build(sourceText string, difficulty types.Difficulty, count int) string {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	r := strings.NewReplacer(
		"{text_content}", sourceText,
		"{quiz_level}", difficulty.String(),
		"{count}", strconv.Itoa(count),
		"{response_json}", p.responseJSON,
	)
	return r.Replace(p.template)
}

// BuildPrompt renders the prompt with the default prompt document.
func BuildPrompt(sourceText string, difficulty types.Difficulty, count int) string {
	return LoadPrompts(nil).Build(sourceText, difficulty, count)
}
