package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MockResponse is a queued reply for MockClient.
type MockResponse struct {
	Content string
	Err     error
}

// MockClient serves local development and tests. Queued responses are
// returned first in FIFO order; after that it synthesizes valid content for
// whichever schema the request names. Every synthesized id carries the call
// number, so regenerated content is distinguishable from stored content.
type MockClient struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{responses: responses}
}

func (m *MockClient) ModelName() string { return "mock" }

// Enqueue appends replies to the queue.
func (m *MockClient) Enqueue(responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// CallCount returns the number of Generate calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockClient) Generate(_ context.Context, req Request) (*LLMResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	seq := len(m.Calls)
	var queued *MockResponse
	if len(m.responses) > 0 {
		r := m.responses[0]
		m.responses = m.responses[1:]
		queued = &r
	}
	m.mu.Unlock()

	if queued != nil {
		if queued.Err != nil {
			return nil, queued.Err
		}
		return &LLMResponse{Content: queued.Content, Model: "mock"}, nil
	}

	content, err := mockContent(req, seq)
	if err != nil {
		return nil, err
	}
	return &LLMResponse{
		Content:      content,
		Model:        "mock",
		PromptTokens: len(req.System+req.Prompt) / 4,
		OutputTokens: len(content) / 4,
	}, nil
}

func mockContent(req Request, seq int) (string, error) {
	if req.Schema == nil {
		return "[Mock] " + strings.TrimPrefix(req.Prompt, "Rewrite for speech:\n\n"), nil
	}

	var v any
	switch req.Schema.Name {
	case OutlineSchema.Name:
		v = mockOutline(seq)
	case QuizSchema.Name:
		v = mockQuiz(seq)
	case FlashcardSchema.Name:
		v = mockFlashcards(seq)
	case ExplanationSchema.Name:
		v = mockExplanation()
	default:
		return "", fmt.Errorf("mock client: no content for schema %q", req.Schema.Name)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mockOutline(seq int) map[string]any {
	titles := []string{"Foundations", "Core Concepts", "Working Examples", "Common Patterns", "Putting It Together"}
	subtopics := make([]map[string]any, len(titles))
	for i, title := range titles {
		subtopics[i] = map[string]any{
			"id":          fmt.Sprintf("subtopic-%d", i+1),
			"title":       title,
			"description": fmt.Sprintf("[Mock %d] %s of the topic.", seq, title),
			"duration":    "15 minutes",
			"order":       i + 1,
		}
	}
	return map[string]any{
		"topic":         "Mock Topic",
		"estimatedTime": "75 minutes",
		"difficulty":    "beginner",
		"subtopics":     subtopics,
	}
}

func mockQuiz(seq int) map[string]any {
	questions := make([]map[string]any, QuizQuestionCount)
	for i := range questions {
		id := fmt.Sprintf("q-%d-%d", seq, i+1)
		if i%2 == 0 {
			opts := []string{"Option A", "Option B", "Option C", "Option D"}
			questions[i] = map[string]any{
				"id":              id,
				"type":            "multiple-choice",
				"question":        fmt.Sprintf("[Mock] Which statement number %d holds?", i+1),
				"options":         opts,
				"correctAnswer":   opts[i%len(opts)],
				"explanation":     "[Mock] This option matches the definition.",
				"realLifeExample": "[Mock] You meet this when organising a bookshelf.",
			}
			continue
		}
		questions[i] = map[string]any{
			"id":              id,
			"type":            "true-false",
			"question":        fmt.Sprintf("[Mock] Claim number %d is accurate.", i+1),
			"correctAnswer":   "true",
			"explanation":     "[Mock] The claim follows from the basics.",
			"realLifeExample": "[Mock] Think of a recipe that always works.",
		}
	}
	return map[string]any{"questions": questions}
}

func mockFlashcards(seq int) map[string]any {
	cards := make([]map[string]any, FlashcardCount)
	for i := range cards {
		cards[i] = map[string]any{
			"id":      fmt.Sprintf("card-%d-%d", seq, i+1),
			"front":   fmt.Sprintf("[Mock] Term %d", i+1),
			"back":    fmt.Sprintf("[Mock] Definition %d", i+1),
			"hint":    "[Mock] Think back to the outline.",
			"example": "[Mock] A small worked example.",
		}
	}
	return map[string]any{"flashcards": cards}
}

func mockExplanation() map[string]any {
	return map[string]any{
		"concept":           "Mock Concept",
		"simpleExplanation": "[Mock] A short plain explanation.",
		"analogy":           "[Mock] It is like a library index.",
		"realLifeExamples":  []string{"[Mock] Sorting mail", "[Mock] Planning a trip"},
		"keyTakeaways":      []string{"[Mock] One", "[Mock] Two", "[Mock] Three"},
		"commonMistakes":    []string{"[Mock] Confusing the terms"},
	}
}
