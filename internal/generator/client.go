package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DevSidd2006/learnquest/internal/config"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

// LLMClient is the interface every model backend satisfies.
type LLMClient interface {
	Generate(ctx context.Context, req Request) (*LLMResponse, error)
	ModelName() string
}

// Request is one single-turn generation call. When Schema is set the client
// asks the provider for JSON matching it.
type Request struct {
	System      string
	Prompt      string
	Schema      *Schema
	Temperature float64
	MaxTokens   int
}

// Schema is a JSON Schema definition plus the name used to cache its
// compiled form.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	Model        string
	PromptTokens int
	OutputTokens int
}

var ErrEmptyResponse = errors.New("empty response from model")

// ProviderError carries the HTTP status a model provider answered with.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (%d): %v", e.Provider, e.Status, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// GenerationError reports that a content type could not be produced. It wraps
// either the provider error or a *ValidationError.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator turns learning requests into validated content.
type Generator struct {
	llm     LLMClient
	timeout time.Duration
	log     *logger.Logger
}

// New wraps an existing client. A zero timeout disables the per-call bound.
func New(llm LLMClient, timeout time.Duration, log *logger.Logger) *Generator {
	return &Generator{llm: llm, timeout: timeout, log: log}
}

// NewGenerator builds the client selected by cfg.LLMProvider.
func NewGenerator(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Generator, error) {
	var (
		llm LLMClient
		err error
	)
	switch cfg.LLMProvider {
	case "mock":
		llm = NewMockClient()
	case "anthropic":
		llm, err = NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		llm, err = NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if err != nil {
		return nil, err
	}
	log.Info("content generator ready", "provider", cfg.LLMProvider, "model", llm.ModelName())
	return New(llm, cfg.GenerationTimeout, log), nil
}

func (g *Generator) ModelName() string {
	return g.llm.ModelName()
}

// call runs one model request under the generation timeout and returns the
// raw text. Provider failures and empty bodies become *GenerationError.
func (g *Generator) call(ctx context.Context, op string, req Request) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.llm.Generate(ctx, req)
	if err != nil {
		return "", &GenerationError{Op: op, Err: err}
	}
	g.log.Debug("model call finished",
		"op", op,
		"model", resp.Model,
		"prompt_tokens", resp.PromptTokens,
		"output_tokens", resp.OutputTokens,
		"elapsed", time.Since(start),
	)
	if strings.TrimSpace(resp.Content) == "" {
		return "", &GenerationError{Op: op, Err: ErrEmptyResponse}
	}
	return resp.Content, nil
}

func (g *Generator) GenerateOutline(ctx context.Context, topic string, difficulty models.Difficulty, style models.LearningStyle) (*models.Outline, error) {
	raw, err := g.call(ctx, "outline", Request{
		System:      OutlineSystemPrompt(difficulty, style),
		Prompt:      BuildOutlinePrompt(topic, difficulty, style),
		Schema:      OutlineSchema,
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		return nil, err
	}
	outline, err := ParseOutline(raw, g.log)
	if err != nil {
		return nil, &GenerationError{Op: "outline", Err: err}
	}
	return outline, nil
}

func (g *Generator) GenerateQuizQuestions(ctx context.Context, topic, subtopic string, difficulty models.Difficulty) ([]models.QuizQuestion, error) {
	raw, err := g.call(ctx, "quiz", Request{
		System:      QuizSystemPrompt(),
		Prompt:      BuildQuizPrompt(topic, subtopic, difficulty),
		Schema:      QuizSchema,
		Temperature: 0.7,
		MaxTokens:   6144,
	})
	if err != nil {
		return nil, err
	}
	questions, err := ParseQuizQuestions(raw, g.log)
	if err != nil {
		return nil, &GenerationError{Op: "quiz", Err: err}
	}
	return questions, nil
}

func (g *Generator) GenerateFlashcards(ctx context.Context, topic, subtopic string, difficulty models.Difficulty) ([]models.Flashcard, error) {
	raw, err := g.call(ctx, "flashcards", Request{
		System:      FlashcardSystemPrompt(),
		Prompt:      BuildFlashcardPrompt(topic, subtopic, difficulty),
		Schema:      FlashcardSchema,
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		return nil, err
	}
	cards, err := ParseFlashcards(raw, g.log)
	if err != nil {
		return nil, &GenerationError{Op: "flashcards", Err: err}
	}
	return cards, nil
}

func (g *Generator) GenerateExplanation(ctx context.Context, concept, topicContext string, difficulty models.Difficulty) (*models.Explanation, error) {
	raw, err := g.call(ctx, "explanation", Request{
		System:      ExplanationSystemPrompt(),
		Prompt:      BuildExplanationPrompt(concept, topicContext, difficulty),
		Schema:      ExplanationSchema,
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		return nil, err
	}
	explanation, err := ParseExplanation(raw)
	if err != nil {
		return nil, &GenerationError{Op: "explanation", Err: err}
	}
	return explanation, nil
}

// OptimizeForSpeech rewrites text so it reads naturally aloud. The result is
// plain text, not JSON.
func (g *Generator) OptimizeForSpeech(ctx context.Context, text string) (string, error) {
	raw, err := g.call(ctx, "speech", Request{
		System:      SpeechSystemPrompt(),
		Prompt:      BuildSpeechPrompt(text),
		Temperature: 0.3,
		MaxTokens:   4096,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stripCodeFences(raw)), nil
}
