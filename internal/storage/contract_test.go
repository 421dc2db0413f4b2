package storage

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevSidd2006/learnquest/internal/database"
	"github.com/DevSidd2006/learnquest/internal/models"
)

// runContract exercises behaviour both backends must share. Each call gets a
// fresh backend from newBackend.
func runContract(t *testing.T, newBackend func(t *testing.T) Backend) {
	ctx := context.Background()

	outline := func(n int) string {
		o := models.Outline{Topic: "Python"}
		for i := 0; i < n; i++ {
			o.Subtopics = append(o.Subtopics, models.Subtopic{ID: string(rune('a' + i)), Title: "T" + string(rune('a'+i)), Order: i + 1})
		}
		b, _ := json.Marshal(o)
		return string(b)
	}

	t.Run("session starts at step zero", func(t *testing.T) {
		b := newBackend(t)
		s1, err := b.CreateSession(ctx, models.NewSession{Topic: "Go", Difficulty: "beginner", LearningStyle: "visual", Outline: outline(3)})
		require.NoError(t, err)
		s2, err := b.CreateSession(ctx, models.NewSession{Topic: "Go", Difficulty: "beginner", LearningStyle: "visual", Outline: outline(3)})
		require.NoError(t, err)

		assert.Equal(t, 0, s1.CurrentStep)
		assert.False(t, s1.Completed)
		assert.NotEqual(t, s1.ID, s2.ID)

		got, err := b.GetSession(ctx, s1.ID)
		require.NoError(t, err)
		assert.Equal(t, s1.Outline, got.Outline)
	})

	t.Run("missing session", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.GetSession(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, b.UpdateSessionProgress(ctx, "00000000-0000-0000-0000-000000000000", 1), ErrNotFound)
	})

	t.Run("sessions listed newest first", func(t *testing.T) {
		b := newBackend(t)
		first, _ := b.CreateSession(ctx, models.NewSession{Topic: "one", Difficulty: "beginner", LearningStyle: "visual", Outline: outline(1)})
		time.Sleep(2 * time.Millisecond)
		second, _ := b.CreateSession(ctx, models.NewSession{Topic: "two", Difficulty: "beginner", LearningStyle: "visual", Outline: outline(1)})

		list, err := b.GetAllSessions(ctx, nil)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("complete session counts once", func(t *testing.T) {
		b := newBackend(t)
		s, _ := b.CreateSession(ctx, models.NewSession{Topic: "Go", Difficulty: "beginner", LearningStyle: "visual", Outline: outline(1)})
		require.NoError(t, b.CompleteSession(ctx, s.ID))
		require.NoError(t, b.CompleteSession(ctx, s.ID))

		got, _ := b.GetSession(ctx, s.ID)
		assert.True(t, got.Completed)
		p, err := b.GetProgress(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, p.CompletedTopics)
	})

	t.Run("quiz memoized per subtopic", func(t *testing.T) {
		b := newBackend(t)
		s, _ := b.CreateSession(ctx, models.NewSession{Topic: "Go", Difficulty: "beginner", LearningStyle: "visual", Outline: outline(2)})

		_, err := b.GetQuiz(ctx, s.ID, "Ta")
		assert.ErrorIs(t, err, ErrNotFound)

		q1, err := b.CreateQuiz(ctx, models.NewQuiz{SessionID: s.ID, Subtopic: "Ta", Questions: `[{"id":"q1"}]`, TotalQuestions: 5})
		require.NoError(t, err)
		q2, err := b.CreateQuiz(ctx, models.NewQuiz{SessionID: s.ID, Subtopic: "Ta", Questions: `[{"id":"other"}]`, TotalQuestions: 5})
		require.NoError(t, err)
		assert.Equal(t, q1.ID, q2.ID)
		assert.Equal(t, `[{"id":"q1"}]`, q2.Questions)
		assert.Nil(t, q1.Score)

		require.NoError(t, b.UpdateQuizScore(ctx, q1.ID, 4, nil))
		got, err := b.GetQuiz(ctx, s.ID, "Ta")
		require.NoError(t, err)
		require.NotNil(t, got.Score)
		assert.Equal(t, 4, *got.Score)
		assert.True(t, got.Completed)

		p, _ := b.GetProgress(ctx, nil)
		assert.Equal(t, 1, p.QuizzesCompleted)
		assert.Equal(t, 80, p.AverageQuizScore)
	})

	t.Run("flashcards add the passed count", func(t *testing.T) {
		b := newBackend(t)
		s, _ := b.CreateSession(ctx, models.NewSession{Topic: "Go", Difficulty: "beginner", LearningStyle: "visual", Outline: outline(2)})
		set, err := b.CreateFlashcardSet(ctx, models.NewFlashcardSet{SessionID: s.ID, Subtopic: "Ta", Cards: "[]", TotalCards: 8})
		require.NoError(t, err)
		assert.Equal(t, 0, set.ReviewedCount)
		assert.Nil(t, set.LastReviewedAt)

		require.NoError(t, b.UpdateFlashcardProgress(ctx, set.ID, 8))
		require.NoError(t, b.UpdateFlashcardProgress(ctx, set.ID, 8))

		got, _ := b.GetFlashcardSet(ctx, s.ID, "Ta")
		assert.Equal(t, 8, got.ReviewedCount)
		assert.NotNil(t, got.LastReviewedAt)
		p, _ := b.GetProgress(ctx, nil)
		assert.Equal(t, 16, p.FlashcardsReviewed)
	})

	t.Run("add xp keeps streak within a day", func(t *testing.T) {
		b := newBackend(t)
		p, err := b.AddXP(ctx, nil, 30)
		require.NoError(t, err)
		assert.Equal(t, 30, p.TotalXP)
		assert.Equal(t, 1, p.CurrentStreak)

		p, err = b.AddXP(ctx, nil, 40)
		require.NoError(t, err)
		assert.Equal(t, 70, p.TotalXP)
		assert.Equal(t, 1, p.CurrentStreak)
		assert.Equal(t, 1, p.LongestStreak)
	})

	t.Run("grant xp is not activity", func(t *testing.T) {
		b := newBackend(t)
		p, err := b.GrantXP(ctx, nil, 50)
		require.NoError(t, err)
		assert.Equal(t, 50, p.TotalXP)
		assert.Equal(t, 0, p.CurrentStreak)
		assert.Nil(t, p.LastActivityDate)
	})

	t.Run("increment streak once per day without xp", func(t *testing.T) {
		b := newBackend(t)
		p, err := b.IncrementStreak(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, p.CurrentStreak)
		assert.Equal(t, 1, p.LongestStreak)
		assert.Equal(t, 0, p.TotalXP)

		p, err = b.IncrementStreak(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, p.CurrentStreak, "same day")
	})

	t.Run("progress is per owner", func(t *testing.T) {
		b := newBackend(t)
		u, err := b.CreateUser(ctx, models.NewUser{Email: "owner@example.com"})
		require.NoError(t, err)

		_, err = b.AddXP(ctx, &u.ID, 50)
		require.NoError(t, err)

		guest, _ := b.GetProgress(ctx, nil)
		mine, _ := b.GetProgress(ctx, &u.ID)
		assert.Equal(t, 0, guest.TotalXP)
		assert.Equal(t, 50, mine.TotalXP)
		require.NotNil(t, mine.UserID)
		assert.Equal(t, u.ID, *mine.UserID)
	})

	t.Run("update progress overwrites listed fields", func(t *testing.T) {
		b := newBackend(t)
		level := 3
		p, err := b.UpdateProgress(ctx, nil, models.ProgressUpdate{CurrentLevel: &level})
		require.NoError(t, err)
		assert.Equal(t, 3, p.CurrentLevel)
		assert.Equal(t, 0, p.TotalXP)
	})

	t.Run("users and credentials", func(t *testing.T) {
		b := newBackend(t)
		u, err := b.CreateUser(ctx, models.NewUser{Email: "a@b.com"})
		require.NoError(t, err)
		_, err = b.CreateUser(ctx, models.NewUser{Email: "a@b.com"})
		assert.ErrorIs(t, err, ErrDuplicate)

		hash := "hash"
		_, err = b.CreateUserAuth(ctx, models.UserAuth{UserID: u.ID, Provider: models.ProviderEmail, ProviderID: &u.Email, PasswordHash: &hash})
		require.NoError(t, err)
		a, err := b.GetUserAuth(ctx, u.ID, models.ProviderEmail)
		require.NoError(t, err)
		assert.Equal(t, "hash", *a.PasswordHash)

		byEmail, err := b.GetUserByEmail(ctx, "A@B.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		require.NoError(t, b.TouchLastLogin(ctx, u.ID))
		got, _ := b.GetUserByID(ctx, u.ID)
		assert.NotNil(t, got.LastLoginAt)

		name := "Ada"
		updated, err := b.UpdateUser(ctx, u.ID, models.ProfileUpdate{FirstName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Ada", *updated.FirstName)
		assert.Nil(t, updated.LastName)
	})

	t.Run("preferences", func(t *testing.T) {
		b := newBackend(t)
		u, _ := b.CreateUser(ctx, models.NewUser{Email: "prefs@example.com"})
		p, err := b.CreatePreferences(ctx, models.DefaultPreferences(u.ID))
		require.NoError(t, err)
		assert.Equal(t, "light", p.Theme)
		assert.Equal(t, 100, p.DailyGoalXP)

		dark := "dark"
		adv := models.DifficultyAdvanced
		p, err = b.UpdatePreferences(ctx, u.ID, models.PreferencesUpdate{Theme: &dark, DefaultDifficulty: &adv})
		require.NoError(t, err)
		assert.Equal(t, "dark", p.Theme)
		assert.Equal(t, models.DifficultyAdvanced, p.DefaultDifficulty)
		assert.Equal(t, "en", p.Language)
	})

	t.Run("user sessions expire and revoke", func(t *testing.T) {
		b := newBackend(t)
		u, _ := b.CreateUser(ctx, models.NewUser{Email: "tok@example.com"})
		_, err := b.CreateUserSession(ctx, models.UserSession{UserID: u.ID, SessionToken: "live", ExpiresAt: time.Now().Add(time.Hour)})
		require.NoError(t, err)
		_, err = b.CreateUserSession(ctx, models.UserSession{UserID: u.ID, SessionToken: "stale", ExpiresAt: time.Now().Add(-time.Hour)})
		require.NoError(t, err)

		_, err = b.GetUserSession(ctx, "live")
		assert.NoError(t, err)
		_, err = b.GetUserSession(ctx, "stale")
		assert.ErrorIs(t, err, ErrNotFound)

		n, err := b.DeleteExpiredUserSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, b.DeleteUserSession(ctx, "live"))
		_, err = b.GetUserSession(ctx, "live")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("achievements are idempotent", func(t *testing.T) {
		b := newBackend(t)
		u, _ := b.CreateUser(ctx, models.NewUser{Email: "ach@example.com"})
		a := models.UserAchievement{UserID: u.ID, AchievementType: "first_registration", Title: "Welcome", XPReward: 50}

		created, err := b.CreateAchievement(ctx, a)
		require.NoError(t, err)
		assert.True(t, created)
		created, err = b.CreateAchievement(ctx, a)
		require.NoError(t, err)
		assert.False(t, created)

		list, err := b.ListAchievements(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestMemStorageContract(t *testing.T) {
	runContract(t, func(t *testing.T) Backend { return NewMemStorage() })
}

// TestPostgresStorageContract runs against a scratch database named by
// LEARNQUEST_TEST_DATABASE_URL. Every table is truncated between subtests.
func TestPostgresStorageContract(t *testing.T) {
	dsn := os.Getenv("LEARNQUEST_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LEARNQUEST_TEST_DATABASE_URL not set")
	}
	db, err := database.Connect(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	runContract(t, func(t *testing.T) Backend {
		_, err := db.Exec(`TRUNCATE users, user_progress, learning_sessions CASCADE`)
		require.NoError(t, err)
		return &postgresNoClose{NewPostgresStorage(db)}
	})
}

// postgresNoClose keeps the shared pool open across subtests.
type postgresNoClose struct{ *PostgresStorage }

func (postgresNoClose) Close() error { return nil }
