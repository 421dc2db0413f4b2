package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyBeginner:     true,
	DifficultyIntermediate: true,
	DifficultyAdvanced:     true,
}

type LearningStyle string

const (
	StyleVisual     LearningStyle = "visual"
	StylePractical  LearningStyle = "practical"
	StyleConceptual LearningStyle = "conceptual"
)

var ValidLearningStyles = map[LearningStyle]bool{
	StyleVisual:     true,
	StylePractical:  true,
	StyleConceptual: true,
}

// LearningSession is one learner's progression through a generated outline.
// Outline holds the serialized Outline exactly as stored.
type LearningSession struct {
	ID            string        `json:"id"`
	UserID        *string       `json:"userId"`
	Topic         string        `json:"topic"`
	Difficulty    Difficulty    `json:"difficulty"`
	LearningStyle LearningStyle `json:"learningStyle"`
	Outline       string        `json:"outline"`
	CurrentStep   int           `json:"currentStep"`
	Completed     bool          `json:"completed"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// DecodeOutline parses the stored outline.
func (s *LearningSession) DecodeOutline() (*Outline, error) {
	var o Outline
	if err := json.Unmarshal([]byte(s.Outline), &o); err != nil {
		return nil, fmt.Errorf("decode outline for session %s: %w", s.ID, err)
	}
	return &o, nil
}

// NewSession is the input to Storage.CreateSession. There is deliberately no
// step or completion field: new sessions always start at step 0, incomplete.
type NewSession struct {
	UserID        *string
	Topic         string
	Difficulty    Difficulty
	LearningStyle LearningStyle
	Outline       string
}

// Quiz is the memoized question set for one (session, subtopic title) pair.
type Quiz struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	UserID         *string   `json:"userId"`
	Subtopic       string    `json:"subtopic"`
	Questions      string    `json:"questions"`
	Score          *int      `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Completed      bool      `json:"completed"`
	TimeSpent      *int      `json:"timeSpent"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (q *Quiz) DecodeQuestions() ([]QuizQuestion, error) {
	var out []QuizQuestion
	if err := json.Unmarshal([]byte(q.Questions), &out); err != nil {
		return nil, fmt.Errorf("decode questions for quiz %s: %w", q.ID, err)
	}
	return out, nil
}

type NewQuiz struct {
	SessionID      string
	UserID         *string
	Subtopic       string
	Questions      string
	TotalQuestions int
}

// FlashcardSet is the memoized card deck for one (session, subtopic title) pair.
type FlashcardSet struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"sessionId"`
	UserID         *string    `json:"userId"`
	Subtopic       string     `json:"subtopic"`
	Cards          string     `json:"cards"`
	ReviewedCount  int        `json:"reviewedCount"`
	TotalCards     int        `json:"totalCards"`
	LastReviewedAt *time.Time `json:"lastReviewedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (f *FlashcardSet) DecodeCards() ([]Flashcard, error) {
	var out []Flashcard
	if err := json.Unmarshal([]byte(f.Cards), &out); err != nil {
		return nil, fmt.Errorf("decode cards for set %s: %w", f.ID, err)
	}
	return out, nil
}

type NewFlashcardSet struct {
	SessionID  string
	UserID     *string
	Subtopic   string
	Cards      string
	TotalCards int
}
