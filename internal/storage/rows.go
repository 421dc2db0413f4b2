package storage

import (
	"time"

	"github.com/DevSidd2006/learnquest/internal/models"
)

// Row types mirror the snake_case tables one to one. Everything crossing the
// Postgres boundary goes through these so the models stay free of db tags.

type sessionRow struct {
	ID            string    `db:"id"`
	UserID        *string   `db:"user_id"`
	Topic         string    `db:"topic"`
	Difficulty    string    `db:"difficulty"`
	LearningStyle string    `db:"learning_style"`
	Outline       string    `db:"outline"`
	CurrentStep   int       `db:"current_step"`
	Completed     bool      `db:"completed"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const sessionColumns = `id, user_id, topic, difficulty, learning_style, outline,
	current_step, completed, created_at, updated_at`

func (r sessionRow) toModel() models.LearningSession {
	return models.LearningSession{
		ID:            r.ID,
		UserID:        r.UserID,
		Topic:         r.Topic,
		Difficulty:    models.Difficulty(r.Difficulty),
		LearningStyle: models.LearningStyle(r.LearningStyle),
		Outline:       r.Outline,
		CurrentStep:   r.CurrentStep,
		Completed:     r.Completed,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type quizRow struct {
	ID             string    `db:"id"`
	SessionID      string    `db:"session_id"`
	UserID         *string   `db:"user_id"`
	Subtopic       string    `db:"subtopic"`
	Questions      string    `db:"questions"`
	Score          *int      `db:"score"`
	TotalQuestions int       `db:"total_questions"`
	Completed      bool      `db:"completed"`
	TimeSpent      *int      `db:"time_spent"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

const quizColumns = `id, session_id, user_id, subtopic, questions, score,
	total_questions, completed, time_spent, created_at, updated_at`

func (r quizRow) toModel() models.Quiz {
	return models.Quiz{
		ID:             r.ID,
		SessionID:      r.SessionID,
		UserID:         r.UserID,
		Subtopic:       r.Subtopic,
		Questions:      r.Questions,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Completed:      r.Completed,
		TimeSpent:      r.TimeSpent,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type flashcardSetRow struct {
	ID             string     `db:"id"`
	SessionID      string     `db:"session_id"`
	UserID         *string    `db:"user_id"`
	Subtopic       string     `db:"subtopic"`
	Cards          string     `db:"cards"`
	ReviewedCount  int        `db:"reviewed_count"`
	TotalCards     int        `db:"total_cards"`
	LastReviewedAt *time.Time `db:"last_reviewed_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

const flashcardSetColumns = `id, session_id, user_id, subtopic, cards, reviewed_count,
	total_cards, last_reviewed_at, created_at, updated_at`

func (r flashcardSetRow) toModel() models.FlashcardSet {
	return models.FlashcardSet{
		ID:             r.ID,
		SessionID:      r.SessionID,
		UserID:         r.UserID,
		Subtopic:       r.Subtopic,
		Cards:          r.Cards,
		ReviewedCount:  r.ReviewedCount,
		TotalCards:     r.TotalCards,
		LastReviewedAt: r.LastReviewedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type progressRow struct {
	ID                 string    `db:"id"`
	UserID             *string   `db:"user_id"`
	TotalXP            int       `db:"total_xp"`
	CurrentLevel       int       `db:"current_level"`
	CurrentStreak      int       `db:"current_streak"`
	LongestStreak      int       `db:"longest_streak"`
	LastActivityDate   *string   `db:"last_activity_date"`
	CompletedTopics    int       `db:"completed_topics"`
	QuizzesCompleted   int       `db:"quizzes_completed"`
	FlashcardsReviewed int       `db:"flashcards_reviewed"`
	TotalStudyTime     int       `db:"total_study_time"`
	AverageQuizScore   int       `db:"average_quiz_score"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

const progressColumns = `id, user_id, total_xp, current_level, current_streak, longest_streak,
	last_activity_date, completed_topics, quizzes_completed, flashcards_reviewed,
	total_study_time, average_quiz_score, created_at, updated_at`

func (r progressRow) toModel() models.UserProgress {
	return models.UserProgress{
		ID:                 r.ID,
		UserID:             r.UserID,
		TotalXP:            r.TotalXP,
		CurrentLevel:       r.CurrentLevel,
		CurrentStreak:      r.CurrentStreak,
		LongestStreak:      r.LongestStreak,
		LastActivityDate:   r.LastActivityDate,
		CompletedTopics:    r.CompletedTopics,
		QuizzesCompleted:   r.QuizzesCompleted,
		FlashcardsReviewed: r.FlashcardsReviewed,
		TotalStudyTime:     r.TotalStudyTime,
		AverageQuizScore:   r.AverageQuizScore,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func progressRowFrom(p models.UserProgress) progressRow {
	return progressRow{
		ID:                 p.ID,
		UserID:             p.UserID,
		TotalXP:            p.TotalXP,
		CurrentLevel:       p.CurrentLevel,
		CurrentStreak:      p.CurrentStreak,
		LongestStreak:      p.LongestStreak,
		LastActivityDate:   p.LastActivityDate,
		CompletedTopics:    p.CompletedTopics,
		QuizzesCompleted:   p.QuizzesCompleted,
		FlashcardsReviewed: p.FlashcardsReviewed,
		TotalStudyTime:     p.TotalStudyTime,
		AverageQuizScore:   p.AverageQuizScore,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

type userRow struct {
	ID            string     `db:"id"`
	Email         string     `db:"email"`
	Username      *string    `db:"username"`
	FirstName     *string    `db:"first_name"`
	LastName      *string    `db:"last_name"`
	Avatar        *string    `db:"avatar"`
	EmailVerified bool       `db:"email_verified"`
	IsActive      bool       `db:"is_active"`
	LastLoginAt   *time.Time `db:"last_login_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

const userColumns = `id, email, username, first_name, last_name, avatar,
	email_verified, is_active, last_login_at, created_at, updated_at`

func (r userRow) toModel() models.User {
	return models.User{
		ID:            r.ID,
		Email:         r.Email,
		Username:      r.Username,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Avatar:        r.Avatar,
		EmailVerified: r.EmailVerified,
		IsActive:      r.IsActive,
		LastLoginAt:   r.LastLoginAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type userAuthRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Provider     string    `db:"provider"`
	ProviderID   *string   `db:"provider_id"`
	PasswordHash *string   `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const userAuthColumns = `id, user_id, provider, provider_id, password_hash, created_at, updated_at`

func (r userAuthRow) toModel() models.UserAuth {
	return models.UserAuth{
		ID:           r.ID,
		UserID:       r.UserID,
		Provider:     r.Provider,
		ProviderID:   r.ProviderID,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type userSessionRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	SessionToken string    `db:"session_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

const userSessionColumns = `id, user_id, session_token, expires_at, created_at`

func (r userSessionRow) toModel() models.UserSession {
	return models.UserSession{
		ID:           r.ID,
		UserID:       r.UserID,
		SessionToken: r.SessionToken,
		ExpiresAt:    r.ExpiresAt,
		CreatedAt:    r.CreatedAt,
	}
}

type preferencesRow struct {
	ID                   string    `db:"id"`
	UserID               string    `db:"user_id"`
	Theme                string    `db:"theme"`
	Language             string    `db:"language"`
	DefaultDifficulty    string    `db:"default_difficulty"`
	DefaultLearningStyle string    `db:"default_learning_style"`
	EmailNotifications   bool      `db:"email_notifications"`
	DailyGoalXP          int       `db:"daily_goal_xp"`
	WeeklyGoalSessions   int       `db:"weekly_goal_sessions"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

const preferencesColumns = `id, user_id, theme, language, default_difficulty,
	default_learning_style, email_notifications, daily_goal_xp, weekly_goal_sessions,
	created_at, updated_at`

func (r preferencesRow) toModel() models.UserPreferences {
	return models.UserPreferences{
		ID:                   r.ID,
		UserID:               r.UserID,
		Theme:                r.Theme,
		Language:             r.Language,
		DefaultDifficulty:    models.Difficulty(r.DefaultDifficulty),
		DefaultLearningStyle: models.LearningStyle(r.DefaultLearningStyle),
		EmailNotifications:   r.EmailNotifications,
		DailyGoalXP:          r.DailyGoalXP,
		WeeklyGoalSessions:   r.WeeklyGoalSessions,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

func preferencesRowFrom(p models.UserPreferences) preferencesRow {
	return preferencesRow{
		ID:                   p.ID,
		UserID:               p.UserID,
		Theme:                p.Theme,
		Language:             p.Language,
		DefaultDifficulty:    string(p.DefaultDifficulty),
		DefaultLearningStyle: string(p.DefaultLearningStyle),
		EmailNotifications:   p.EmailNotifications,
		DailyGoalXP:          p.DailyGoalXP,
		WeeklyGoalSessions:   p.WeeklyGoalSessions,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

type achievementRow struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	AchievementType string    `db:"achievement_type"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Icon            string    `db:"icon"`
	XPReward        int       `db:"xp_reward"`
	UnlockedAt      time.Time `db:"unlocked_at"`
}

const achievementColumns = `id, user_id, achievement_type, title, description, icon, xp_reward, unlocked_at`

func (r achievementRow) toModel() models.UserAchievement {
	return models.UserAchievement{
		ID:              r.ID,
		UserID:          r.UserID,
		AchievementType: r.AchievementType,
		Title:           r.Title,
		Description:     r.Description,
		Icon:            r.Icon,
		XPReward:        r.XPReward,
		UnlockedAt:      r.UnlockedAt,
	}
}
