// Package storage defines the persistence contract for learning sessions,
// generated content, progress and accounts, with an in-memory and a Postgres
// implementation.
package storage

import (
	"context"
	"errors"

	"github.com/DevSidd2006/learnquest/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Storage covers the learning workflow. A nil userID addresses the guest
// progress record and guest-owned sessions.
type Storage interface {
	// CreateSession always starts the session at step 0, not completed.
	CreateSession(ctx context.Context, in models.NewSession) (*models.LearningSession, error)
	GetSession(ctx context.Context, id string) (*models.LearningSession, error)
	// GetAllSessions returns the sessions owned by userID, newest first.
	GetAllSessions(ctx context.Context, userID *string) ([]models.LearningSession, error)
	// UpdateSessionProgress overwrites currentStep. Callers keep it monotonic.
	UpdateSessionProgress(ctx context.Context, id string, step int) error
	// CompleteSession marks the session completed and bumps the owner's
	// completedTopics the first time it is called for a session.
	CompleteSession(ctx context.Context, id string) error

	// CreateQuiz stores a quiz for (sessionID, subtopic). If one already
	// exists the stored quiz is returned and in is discarded.
	CreateQuiz(ctx context.Context, in models.NewQuiz) (*models.Quiz, error)
	GetQuiz(ctx context.Context, sessionID, subtopic string) (*models.Quiz, error)
	// UpdateQuizScore records the score, marks the quiz completed and bumps
	// the owner's quizzesCompleted and averageQuizScore.
	UpdateQuizScore(ctx context.Context, id string, score int, timeSpent *int) error

	// CreateFlashcardSet behaves like CreateQuiz.
	CreateFlashcardSet(ctx context.Context, in models.NewFlashcardSet) (*models.FlashcardSet, error)
	GetFlashcardSet(ctx context.Context, sessionID, subtopic string) (*models.FlashcardSet, error)
	// UpdateFlashcardProgress overwrites reviewedCount and adds reviewedCount
	// (not the difference) to the owner's flashcardsReviewed.
	UpdateFlashcardProgress(ctx context.Context, id string, reviewedCount int) error

	// GetProgress returns the progress record, creating a zeroed one if absent.
	GetProgress(ctx context.Context, userID *string) (*models.UserProgress, error)
	UpdateProgress(ctx context.Context, userID *string, u models.ProgressUpdate) (*models.UserProgress, error)
	// AddXP adds amount to totalXp and applies the daily streak rule.
	AddXP(ctx context.Context, userID *string, amount int) (*models.UserProgress, error)
	// GrantXP adds amount to totalXp without counting as daily activity.
	// Achievement rewards use it.
	GrantXP(ctx context.Context, userID *string, amount int) (*models.UserProgress, error)
	// IncrementStreak applies the daily streak rule without awarding XP.
	IncrementStreak(ctx context.Context, userID *string) (*models.UserProgress, error)

	// Name identifies the backend ("memory" or "postgres").
	Name() string
}

// UserStore covers accounts, credentials, auth sessions, preferences and
// achievements.
type UserStore interface {
	// CreateUser returns ErrDuplicate when the email or username is taken.
	CreateUser(ctx context.Context, in models.NewUser) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, u models.ProfileUpdate) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error

	CreateUserAuth(ctx context.Context, a models.UserAuth) (*models.UserAuth, error)
	GetUserAuth(ctx context.Context, userID, provider string) (*models.UserAuth, error)

	CreatePreferences(ctx context.Context, p models.UserPreferences) (*models.UserPreferences, error)
	GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, u models.PreferencesUpdate) (*models.UserPreferences, error)

	CreateUserSession(ctx context.Context, s models.UserSession) (*models.UserSession, error)
	// GetUserSession returns ErrNotFound for unknown or expired tokens.
	GetUserSession(ctx context.Context, token string) (*models.UserSession, error)
	DeleteUserSession(ctx context.Context, token string) error
	DeleteExpiredUserSessions(ctx context.Context) (int64, error)

	// CreateAchievement inserts a if the user does not already hold that
	// achievement type and reports whether a row was created.
	CreateAchievement(ctx context.Context, a models.UserAchievement) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
}

// Backend is everything the server needs from a storage implementation.
type Backend interface {
	Storage
	UserStore
	Close() error
}

// quizPercent converts a raw score into a percentage of total.
func quizPercent(score, total int) int {
	if total <= 0 {
		return 0
	}
	p := score * 100 / total
	if p > 100 {
		p = 100
	}
	return p
}
