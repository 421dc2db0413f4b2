// Package sessions runs the learning workflow: outline generation, memoized
// quizzes and flashcards per subtopic, and step-by-step session progress.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DevSidd2006/learnquest/internal/apierr"
	"github.com/DevSidd2006/learnquest/internal/gamification"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
	"github.com/DevSidd2006/learnquest/internal/storage"
)

// ContentGenerator produces validated learning content. *generator.Generator
// implements it.
type ContentGenerator interface {
	GenerateOutline(ctx context.Context, topic string, difficulty models.Difficulty, style models.LearningStyle) (*models.Outline, error)
	GenerateQuizQuestions(ctx context.Context, topic, subtopic string, difficulty models.Difficulty) ([]models.QuizQuestion, error)
	GenerateFlashcards(ctx context.Context, topic, subtopic string, difficulty models.Difficulty) ([]models.Flashcard, error)
	GenerateExplanation(ctx context.Context, concept, topicContext string, difficulty models.Difficulty) (*models.Explanation, error)
}

type Service struct {
	store storage.Storage
	gen   ContentGenerator
	gam   *gamification.Service
	log   *logger.Logger
}

func NewService(store storage.Storage, gen ContentGenerator, gam *gamification.Service, log *logger.Logger) *Service {
	return &Service{store: store, gen: gen, gam: gam, log: log.With("component", "sessions")}
}

var (
	errSessionNotFound  = apierr.NotFound("Session not found")
	errSubtopicNotFound = apierr.NotFound("Subtopic not found")
)

// ── Sessions ────────────────────────────────────────────

// CreateSession generates an outline for the topic and stores a new session
// at step 0. userID is nil for guests.
func (s *Service) CreateSession(ctx context.Context, userID *string, req models.CreateSessionRequest) (*models.LearningSession, error) {
	outline, err := s.gen.GenerateOutline(ctx, req.Topic, req.Difficulty, req.LearningStyle)
	if err != nil {
		return nil, fmt.Errorf("generate outline: %w", err)
	}
	data, err := json.Marshal(outline)
	if err != nil {
		return nil, fmt.Errorf("encode outline: %w", err)
	}

	session, err := s.store.CreateSession(ctx, models.NewSession{
		UserID:        userID,
		Topic:         req.Topic,
		Difficulty:    req.Difficulty,
		LearningStyle: req.LearningStyle,
		Outline:       string(data),
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.log.Info("session created", "session_id", session.ID, "topic", req.Topic, "subtopics", len(outline.Subtopics))
	s.awardAchievement(ctx, userID, gamification.FirstSession)
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*models.LearningSession, error) {
	session, err := s.store.GetSession(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// ListSessions returns the sessions owned by userID (guest sessions for nil),
// newest first.
func (s *Service) ListSessions(ctx context.Context, userID *string) ([]models.LearningSession, error) {
	list, err := s.store.GetAllSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if list == nil {
		list = []models.LearningSession{}
	}
	return list, nil
}

// subtopicRef is a resolved (session, subtopic) pair.
type subtopicRef struct {
	session  *models.LearningSession
	outline  *models.Outline
	subtopic *models.Subtopic
	index    int
}

func (s *Service) resolve(ctx context.Context, sessionID, subtopicID string) (*subtopicRef, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	outline, err := session.DecodeOutline()
	if err != nil {
		return nil, err
	}
	subtopic, idx := outline.FindSubtopic(subtopicID)
	if subtopic == nil {
		return nil, errSubtopicNotFound
	}
	return &subtopicRef{session: session, outline: outline, subtopic: subtopic, index: idx}, nil
}

func (r *subtopicRef) topic() string {
	if r.outline.Topic != "" {
		return r.outline.Topic
	}
	return r.session.Topic
}

// advance moves the session past subtopic index idx. The step never goes
// backwards, and clearing the last subtopic completes the session.
func (s *Service) advance(ctx context.Context, ref *subtopicRef) error {
	if ref.index >= ref.session.CurrentStep {
		if err := s.store.UpdateSessionProgress(ctx, ref.session.ID, ref.index+1); err != nil {
			return fmt.Errorf("update session progress: %w", err)
		}
	}
	if ref.index+1 >= len(ref.outline.Subtopics) && !ref.session.Completed {
		if err := s.store.CompleteSession(ctx, ref.session.ID); err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		s.log.Info("session completed", "session_id", ref.session.ID)
	}
	return nil
}

// ── Quizzes ─────────────────────────────────────────────

// Quiz returns the questions for a subtopic, generating and storing them on
// first access.
func (s *Service) Quiz(ctx context.Context, sessionID, subtopicID string) ([]models.QuizQuestion, error) {
	ref, err := s.resolve(ctx, sessionID, subtopicID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.store.GetQuiz(ctx, sessionID, ref.subtopic.Title)
	switch {
	case err == nil:
		return quiz.DecodeQuestions()
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	questions, err := s.gen.GenerateQuizQuestions(ctx, ref.topic(), ref.subtopic.Title, ref.session.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("encode questions: %w", err)
	}

	// A concurrent request may have stored a quiz first; serve whichever won.
	stored, err := s.store.CreateQuiz(ctx, models.NewQuiz{
		SessionID:      sessionID,
		UserID:         ref.session.UserID,
		Subtopic:       ref.subtopic.Title,
		Questions:      string(data),
		TotalQuestions: len(questions),
	})
	if err != nil {
		return nil, fmt.Errorf("store quiz: %w", err)
	}
	return stored.DecodeQuestions()
}

// SubmitQuiz records a quiz result, awards score*10 XP to the session owner
// and advances the session.
func (s *Service) SubmitQuiz(ctx context.Context, req models.SubmitQuizRequest) (*models.SubmitResult, error) {
	ref, err := s.resolve(ctx, req.SessionID, req.SubtopicID)
	if err != nil {
		return nil, err
	}
	score := *req.Score

	quiz, err := s.store.GetQuiz(ctx, req.SessionID, ref.subtopic.Title)
	switch {
	case err == nil:
		if quiz.TotalQuestions > 0 {
			score = min(score, quiz.TotalQuestions)
		}
		if err := s.store.UpdateQuizScore(ctx, quiz.ID, score, req.TimeSpent); err != nil {
			return nil, fmt.Errorf("update quiz score: %w", err)
		}
	case errors.Is(err, storage.ErrNotFound):
		quiz = nil
	default:
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	xp := gamification.QuizXP(score)
	if _, err := s.gam.AwardXP(ctx, ref.session.UserID, xp); err != nil {
		return nil, err
	}
	if err := s.advance(ctx, ref); err != nil {
		return nil, err
	}

	s.awardAchievement(ctx, ref.session.UserID, gamification.FirstQuiz)
	if quiz != nil && quiz.TotalQuestions > 0 && score >= quiz.TotalQuestions {
		s.awardAchievement(ctx, ref.session.UserID, gamification.PerfectQuiz)
	}
	return &models.SubmitResult{Success: true, XPEarned: xp}, nil
}

// ── Flashcards ──────────────────────────────────────────

// Flashcards returns the card deck for a subtopic, generating and storing it
// on first access.
func (s *Service) Flashcards(ctx context.Context, sessionID, subtopicID string) ([]models.Flashcard, error) {
	ref, err := s.resolve(ctx, sessionID, subtopicID)
	if err != nil {
		return nil, err
	}

	set, err := s.store.GetFlashcardSet(ctx, sessionID, ref.subtopic.Title)
	switch {
	case err == nil:
		return set.DecodeCards()
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("get flashcards: %w", err)
	}

	cards, err := s.gen.GenerateFlashcards(ctx, ref.topic(), ref.subtopic.Title, ref.session.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return nil, fmt.Errorf("encode flashcards: %w", err)
	}

	stored, err := s.store.CreateFlashcardSet(ctx, models.NewFlashcardSet{
		SessionID:  sessionID,
		UserID:     ref.session.UserID,
		Subtopic:   ref.subtopic.Title,
		Cards:      string(data),
		TotalCards: len(cards),
	})
	if err != nil {
		return nil, fmt.Errorf("store flashcards: %w", err)
	}
	return stored.DecodeCards()
}

// CompleteFlashcards marks the whole deck reviewed, awards totalCards*5 XP
// and advances the session. A deck that was never fetched earns no XP but
// still clears the subtopic.
func (s *Service) CompleteFlashcards(ctx context.Context, req models.CompleteFlashcardsRequest) (*models.SubmitResult, error) {
	ref, err := s.resolve(ctx, req.SessionID, req.SubtopicID)
	if err != nil {
		return nil, err
	}

	totalCards := 0
	set, err := s.store.GetFlashcardSet(ctx, req.SessionID, ref.subtopic.Title)
	switch {
	case err == nil:
		totalCards = set.TotalCards
		if err := s.store.UpdateFlashcardProgress(ctx, set.ID, set.TotalCards); err != nil {
			return nil, fmt.Errorf("update flashcard progress: %w", err)
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("get flashcards: %w", err)
	}

	xp := gamification.FlashcardXP(totalCards)
	if _, err := s.gam.AwardXP(ctx, ref.session.UserID, xp); err != nil {
		return nil, err
	}
	if err := s.advance(ctx, ref); err != nil {
		return nil, err
	}

	if set != nil {
		s.awardAchievement(ctx, ref.session.UserID, gamification.FirstFlashcard)
	}
	return &models.SubmitResult{Success: true, XPEarned: xp}, nil
}

// ── Explanations ────────────────────────────────────────

func (s *Service) Explain(ctx context.Context, req models.ExplanationRequest) (*models.Explanation, error) {
	e, err := s.gen.GenerateExplanation(ctx, req.Concept, req.Context, req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}
	return e, nil
}

// awardAchievement grants key to a registered owner. Failures are logged;
// the workflow step that earned it has already been stored.
func (s *Service) awardAchievement(ctx context.Context, userID *string, key string) {
	if userID == nil {
		return
	}
	if _, err := s.gam.AwardAchievement(ctx, *userID, key); err != nil {
		s.log.Warn("award achievement failed", "user_id", *userID, "achievement", key, "error", err)
	}
}
