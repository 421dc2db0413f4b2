package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/DevSidd2006/learnquest/internal/config"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

// slowClient blocks until the context ends.
type slowClient struct{}

func (slowClient) ModelName() string { return "slow" }

func (slowClient) Generate(ctx context.Context, _ Request) (*LLMResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGenerator_DefaultMockContent(t *testing.T) {
	mock := NewMockClient()
	g := New(mock, time.Second, logger.Nop())
	ctx := context.Background()

	outline, err := g.GenerateOutline(ctx, "Photosynthesis", models.DifficultyBeginner, models.StyleVisual)
	require.NoError(t, err)
	assert.Len(t, outline.Subtopics, 5)

	questions, err := g.GenerateQuizQuestions(ctx, "Photosynthesis", "Foundations", models.DifficultyBeginner)
	require.NoError(t, err)
	assert.Len(t, questions, QuizQuestionCount)

	cards, err := g.GenerateFlashcards(ctx, "Photosynthesis", "Foundations", models.DifficultyBeginner)
	require.NoError(t, err)
	assert.Len(t, cards, FlashcardCount)

	explanation, err := g.GenerateExplanation(ctx, "Chlorophyll", "Photosynthesis", models.DifficultyBeginner)
	require.NoError(t, err)
	assert.NotEmpty(t, explanation.SimpleExplanation)

	speech, err := g.OptimizeForSpeech(ctx, "CO2 + H2O")
	require.NoError(t, err)
	assert.Contains(t, speech, "CO2 + H2O")

	require.Equal(t, 5, mock.CallCount())
	assert.Equal(t, OutlineSchema, mock.Calls[0].Schema)
	assert.Contains(t, mock.Calls[0].Prompt, "Photosynthesis")
	assert.Nil(t, mock.Calls[4].Schema)
}

func TestGenerator_QueuedResponsesFirst(t *testing.T) {
	mock := NewMockClient(MockResponse{Content: "```json\n" + validOutlineJSON(6) + "\n```"})
	g := New(mock, 0, logger.Nop())

	outline, err := g.GenerateOutline(context.Background(), "Photosynthesis", models.DifficultyBeginner, models.StyleVisual)
	require.NoError(t, err)
	assert.Len(t, outline.Subtopics, 6)
	assert.Equal(t, "st-a", outline.Subtopics[0].ID)
}

func TestGenerator_Errors(t *testing.T) {
	providerErr := &ProviderError{Provider: "gemini", Status: 429, Err: errors.New("quota")}

	tests := []struct {
		name    string
		reply   MockResponse
		wantErr error
	}{
		{"empty", MockResponse{Content: "   "}, ErrEmptyResponse},
		{"provider", MockResponse{Err: providerErr}, providerErr},
		{"invalid", MockResponse{Content: `{"questions":"nope"}`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(NewMockClient(tt.reply), 0, logger.Nop())

			_, err := g.GenerateQuizQuestions(context.Background(), "Photosynthesis", "Foundations", models.DifficultyBeginner)
			require.Error(t, err)

			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, "quiz", genErr.Op)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
			}
		})
	}
}

func TestGenerator_Timeout(t *testing.T) {
	g := New(slowClient{}, 20*time.Millisecond, logger.Nop())

	_, err := g.GenerateExplanation(context.Background(), "Recursion", "Algorithms", models.DifficultyBeginner)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewGenerator_ProviderSelection(t *testing.T) {
	ctx := context.Background()

	g, err := NewGenerator(ctx, &config.Config{LLMProvider: "mock"}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "mock", g.ModelName())

	_, err = NewGenerator(ctx, &config.Config{LLMProvider: "anthropic"}, logger.Nop())
	assert.Error(t, err, "anthropic without key")

	_, err = NewGenerator(ctx, &config.Config{LLMProvider: "gemini"}, logger.Nop())
	assert.Error(t, err, "gemini without key")
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(QuizSchema.Definition)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"questions"}, schema.Required)

	questions := schema.Properties["questions"]
	require.NotNil(t, questions)
	assert.Equal(t, genai.TypeArray, questions.Type)
	require.NotNil(t, questions.MinItems)
	assert.Equal(t, int64(1), *questions.MinItems)

	item := questions.Items
	require.NotNil(t, item)
	assert.Equal(t, []string{"multiple-choice", "true-false"}, item.Properties["type"].Enum)
	assert.Equal(t, genai.TypeArray, item.Properties["options"].Type)
	assert.Equal(t, genai.TypeString, item.Properties["options"].Items.Type)
	assert.Contains(t, item.Required, "correctAnswer")
}
