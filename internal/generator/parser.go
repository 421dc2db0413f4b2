package generator

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

// ValidationError lists every way a model response failed its checks.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

type quizEnvelope struct {
	Questions []models.QuizQuestion `json:"questions"`
}

type flashcardEnvelope struct {
	Flashcards []models.Flashcard `json:"flashcards"`
}

// ParseOutline validates and decodes an outline response. A subtopic count
// outside 5-7 is logged but accepted.
func ParseOutline(raw string, log *logger.Logger) (*models.Outline, error) {
	var outline models.Outline
	if err := decode(raw, OutlineSchema, &outline); err != nil {
		return nil, err
	}

	var errs []string
	if len(outline.Subtopics) == 0 {
		errs = append(errs, "outline has no subtopics")
	}
	seen := make(map[string]bool, len(outline.Subtopics))
	for i, st := range outline.Subtopics {
		id := strings.TrimSpace(st.ID)
		if id == "" {
			errs = append(errs, fmt.Sprintf("subtopic %d: empty id", i+1))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Sprintf("subtopic %d: duplicate id %q", i+1, id))
		}
		seen[id] = true
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if n := len(outline.Subtopics); n < OutlineMinSubtopics || n > OutlineMaxSubtopics {
		log.Warn("outline subtopic count outside requested range", "count", n)
	}
	return &outline, nil
}

// ParseQuizQuestions validates and decodes a quiz response. Multiple-choice
// answers must be one of their options; true/false answers must be "true" or
// "false".
func ParseQuizQuestions(raw string, log *logger.Logger) ([]models.QuizQuestion, error) {
	var env quizEnvelope
	if err := decode(raw, QuizSchema, &env); err != nil {
		return nil, err
	}
	if len(env.Questions) == 0 {
		return nil, &ValidationError{Errors: []string{"no questions in response"}}
	}

	var errs []string
	for i, q := range env.Questions {
		qNum := i + 1
		switch q.Type {
		case models.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				errs = append(errs, fmt.Sprintf("question %d: multiple-choice needs options, got %d", qNum, len(q.Options)))
				continue
			}
			if !containsString(q.Options, q.CorrectAnswer) {
				errs = append(errs, fmt.Sprintf("question %d: correct answer %q is not one of the options", qNum, q.CorrectAnswer))
			}
		case models.QuestionTrueFalse:
			answer := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
			if answer != "true" && answer != "false" {
				errs = append(errs, fmt.Sprintf("question %d: true-false answer %q", qNum, q.CorrectAnswer))
			}
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	if len(env.Questions) != QuizQuestionCount {
		log.Warn("quiz question count differs from request", "count", len(env.Questions))
	}
	warnNearDuplicates(log, "quiz", questionTexts(env.Questions))
	return env.Questions, nil
}

// ParseFlashcards validates and decodes a flashcard response.
func ParseFlashcards(raw string, log *logger.Logger) ([]models.Flashcard, error) {
	var env flashcardEnvelope
	if err := decode(raw, FlashcardSchema, &env); err != nil {
		return nil, err
	}
	if len(env.Flashcards) == 0 {
		return nil, &ValidationError{Errors: []string{"no flashcards in response"}}
	}
	if len(env.Flashcards) != FlashcardCount {
		log.Warn("flashcard count differs from request", "count", len(env.Flashcards))
	}
	warnNearDuplicates(log, "flashcards", cardFronts(env.Flashcards))
	return env.Flashcards, nil
}

func ParseExplanation(raw string) (*models.Explanation, error) {
	var e models.Explanation
	if err := decode(raw, ExplanationSchema, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// decode strips code fences, checks raw against schema and unmarshals it into
// dst. Anything that is not valid JSON or breaks the schema is a
// *ValidationError.
func decode(raw string, schema *Schema, dst any) error {
	cleaned := stripCodeFences(raw)

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return &ValidationError{Errors: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return &ValidationError{Errors: []string{fmt.Sprintf("schema %s: %v", schema.Name, err)}}
	}

	if err := json.Unmarshal([]byte(cleaned), dst); err != nil {
		return &ValidationError{Errors: []string{fmt.Sprintf("decode %s: %v", schema.Name, err)}}
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// compiled schemas keyed by Schema.Name
var schemaCache sync.Map

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants plain decoded JSON, not Go ints or typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
