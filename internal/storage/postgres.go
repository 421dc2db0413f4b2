package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/DevSidd2006/learnquest/internal/models"
)

// PostgresStorage is the relational backend. Multi-row side effects (for
// example a quiz score plus the owner's counters) run in one transaction.
type PostgresStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresStorage(db *sqlx.DB) *PostgresStorage {
	return &PostgresStorage{db: db, now: time.Now}
}

func (s *PostgresStorage) Name() string { return "postgres" }

func (s *PostgresStorage) Close() error { return s.db.Close() }

// DB exposes the pool for migrations and health checks.
func (s *PostgresStorage) DB() *sqlx.DB { return s.db }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStorage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ── Learning sessions ───────────────────────────────────

func (s *PostgresStorage) CreateSession(ctx context.Context, in models.NewSession) (*models.LearningSession, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO learning_sessions (id, user_id, topic, difficulty, learning_style, outline, current_step, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, 0, FALSE)
		 RETURNING `+sessionColumns,
		uuid.NewString(), in.UserID, in.Topic, string(in.Difficulty), string(in.LearningStyle), in.Outline,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) GetSession(ctx context.Context, id string) (*models.LearningSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+sessionColumns+` FROM learning_sessions WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) GetAllSessions(ctx context.Context, userID *string) ([]models.LearningSession, error) {
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+sessionColumns+` FROM learning_sessions
		 WHERE user_id IS NOT DISTINCT FROM $1::uuid
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]models.LearningSession, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *PostgresStorage) UpdateSessionProgress(ctx context.Context, id string, step int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE learning_sessions SET current_step = $2, updated_at = NOW() WHERE id = $1`, id, step)
	if err != nil {
		return fmt.Errorf("update session progress: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStorage) CompleteSession(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var owner *string
		err := tx.GetContext(ctx, &owner,
			`UPDATE learning_sessions SET completed = TRUE, updated_at = NOW()
			 WHERE id = $1 AND completed = FALSE
			 RETURNING user_id`, id)
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.GetContext(ctx, &exists,
				`SELECT EXISTS (SELECT 1 FROM learning_sessions WHERE id = $1)`, id); err != nil {
				return fmt.Errorf("check session: %w", err)
			}
			if !exists {
				return ErrNotFound
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		return s.mutateProgress(ctx, tx, owner, func(p *models.UserProgress) {
			p.CompletedTopics++
		})
	})
}

// ── Quizzes ─────────────────────────────────────────────

func (s *PostgresStorage) CreateQuiz(ctx context.Context, in models.NewQuiz) (*models.Quiz, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, session_id, user_id, subtopic, questions, total_questions)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id, subtopic) DO NOTHING`,
		uuid.NewString(), in.SessionID, in.UserID, in.Subtopic, in.Questions, in.TotalQuestions,
	)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("insert quiz: session %s: %w", in.SessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("insert quiz: %w", err)
	}
	return s.GetQuiz(ctx, in.SessionID, in.Subtopic)
}

func (s *PostgresStorage) GetQuiz(ctx context.Context, sessionID, subtopic string) (*models.Quiz, error) {
	var row quizRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+quizColumns+` FROM quizzes WHERE session_id = $1 AND subtopic = $2`,
		sessionID, subtopic)
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) UpdateQuizScore(ctx context.Context, id string, score int, timeSpent *int) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var row quizRow
		err := tx.GetContext(ctx, &row,
			`UPDATE quizzes SET score = $2, completed = TRUE,
			        time_spent = COALESCE($3, time_spent), updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+quizColumns, id, score, timeSpent)
		if err != nil {
			return notFound(err)
		}
		return s.mutateProgress(ctx, tx, row.UserID, func(p *models.UserProgress) {
			p.QuizzesCompleted++
			p.RecordQuizScore(quizPercent(score, row.TotalQuestions))
			if timeSpent != nil {
				p.TotalStudyTime += *timeSpent
			}
		})
	})
}

// ── Flashcards ──────────────────────────────────────────

func (s *PostgresStorage) CreateFlashcardSet(ctx context.Context, in models.NewFlashcardSet) (*models.FlashcardSet, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flashcard_sets (id, session_id, user_id, subtopic, cards, total_cards)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id, subtopic) DO NOTHING`,
		uuid.NewString(), in.SessionID, in.UserID, in.Subtopic, in.Cards, in.TotalCards,
	)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("insert flashcard set: session %s: %w", in.SessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("insert flashcard set: %w", err)
	}
	return s.GetFlashcardSet(ctx, in.SessionID, in.Subtopic)
}

func (s *PostgresStorage) GetFlashcardSet(ctx context.Context, sessionID, subtopic string) (*models.FlashcardSet, error) {
	var row flashcardSetRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+flashcardSetColumns+` FROM flashcard_sets WHERE session_id = $1 AND subtopic = $2`,
		sessionID, subtopic)
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) UpdateFlashcardProgress(ctx context.Context, id string, reviewedCount int) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var owner *string
		err := tx.GetContext(ctx, &owner,
			`UPDATE flashcard_sets SET reviewed_count = $2, last_reviewed_at = NOW(), updated_at = NOW()
			 WHERE id = $1
			 RETURNING user_id`, id, reviewedCount)
		if err != nil {
			return notFound(err)
		}
		return s.mutateProgress(ctx, tx, owner, func(p *models.UserProgress) {
			p.FlashcardsReviewed += reviewedCount
		})
	})
}

// ── Progress ────────────────────────────────────────────

func (s *PostgresStorage) ensureProgress(ctx context.Context, q sqlx.ExecerContext, userID *string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO user_progress (id, user_id) VALUES ($1, $2::uuid) ON CONFLICT DO NOTHING`,
		uuid.NewString(), userID)
	if err != nil {
		return fmt.Errorf("create progress: %w", err)
	}
	return nil
}

// mutateProgress locks the owner's progress row, applies fn, and writes
// every column back.
func (s *PostgresStorage) mutateProgress(ctx context.Context, tx *sqlx.Tx, userID *string, fn func(p *models.UserProgress)) error {
	if err := s.ensureProgress(ctx, tx, userID); err != nil {
		return err
	}
	var row progressRow
	err := tx.GetContext(ctx, &row,
		`SELECT `+progressColumns+` FROM user_progress
		 WHERE user_id IS NOT DISTINCT FROM $1::uuid FOR UPDATE`, userID)
	if err != nil {
		return fmt.Errorf("lock progress: %w", err)
	}
	p := row.toModel()
	fn(&p)
	_, err = tx.NamedExecContext(ctx,
		`UPDATE user_progress SET
		    total_xp = :total_xp, current_level = :current_level,
		    current_streak = :current_streak, longest_streak = :longest_streak,
		    last_activity_date = :last_activity_date, completed_topics = :completed_topics,
		    quizzes_completed = :quizzes_completed, flashcards_reviewed = :flashcards_reviewed,
		    total_study_time = :total_study_time, average_quiz_score = :average_quiz_score,
		    updated_at = NOW()
		 WHERE id = :id`, progressRowFrom(p))
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetProgress(ctx context.Context, userID *string) (*models.UserProgress, error) {
	if err := s.ensureProgress(ctx, s.db, userID); err != nil {
		return nil, err
	}
	var row progressRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+progressColumns+` FROM user_progress WHERE user_id IS NOT DISTINCT FROM $1::uuid`, userID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) updateProgress(ctx context.Context, userID *string, fn func(p *models.UserProgress)) (*models.UserProgress, error) {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return s.mutateProgress(ctx, tx, userID, fn)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProgress(ctx, userID)
}

func (s *PostgresStorage) UpdateProgress(ctx context.Context, userID *string, u models.ProgressUpdate) (*models.UserProgress, error) {
	return s.updateProgress(ctx, userID, u.Apply)
}

func (s *PostgresStorage) AddXP(ctx context.Context, userID *string, amount int) (*models.UserProgress, error) {
	today := models.ActivityDate(s.now())
	return s.updateProgress(ctx, userID, func(p *models.UserProgress) {
		p.TotalXP += amount
		p.RecordActivity(today)
	})
}

func (s *PostgresStorage) GrantXP(ctx context.Context, userID *string, amount int) (*models.UserProgress, error) {
	return s.updateProgress(ctx, userID, func(p *models.UserProgress) {
		p.TotalXP += amount
	})
}

func (s *PostgresStorage) IncrementStreak(ctx context.Context, userID *string) (*models.UserProgress, error) {
	today := models.ActivityDate(s.now())
	return s.updateProgress(ctx, userID, func(p *models.UserProgress) {
		p.RecordActivity(today)
	})
}

// ── Users ───────────────────────────────────────────────

func (s *PostgresStorage) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO users (id, email, username, first_name, last_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		uuid.NewString(), in.Email, in.Username, in.FirstName, in.LastName)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert user: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) getUser(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.getUser(ctx, "id = $1", id)
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *PostgresStorage) UpdateUser(ctx context.Context, id string, u models.ProfileUpdate) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`UPDATE users SET
		    username = COALESCE($2, username),
		    first_name = COALESCE($3, first_name),
		    last_name = COALESCE($4, last_name),
		    avatar = COALESCE($5, avatar),
		    updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, u.Username, u.FirstName, u.LastName, u.Avatar)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("update user: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) TouchLastLogin(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return requireRow(res)
}

// ── Credentials ─────────────────────────────────────────

func (s *PostgresStorage) CreateUserAuth(ctx context.Context, a models.UserAuth) (*models.UserAuth, error) {
	var row userAuthRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO user_auth (id, user_id, provider, provider_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userAuthColumns,
		uuid.NewString(), a.UserID, a.Provider, a.ProviderID, a.PasswordHash)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert user auth: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user auth: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) GetUserAuth(ctx context.Context, userID, provider string) (*models.UserAuth, error) {
	var row userAuthRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+userAuthColumns+` FROM user_auth WHERE user_id = $1 AND provider = $2`,
		userID, provider)
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

// ── Preferences ─────────────────────────────────────────

func (s *PostgresStorage) CreatePreferences(ctx context.Context, p models.UserPreferences) (*models.UserPreferences, error) {
	p.ID = uuid.NewString()
	rows, err := s.db.NamedQueryContext(ctx,
		`INSERT INTO user_preferences (id, user_id, theme, language, default_difficulty,
		    default_learning_style, email_notifications, daily_goal_xp, weekly_goal_sessions)
		 VALUES (:id, :user_id, :theme, :language, :default_difficulty,
		    :default_learning_style, :email_notifications, :daily_goal_xp, :weekly_goal_sessions)
		 RETURNING `+preferencesColumns, preferencesRowFrom(p))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert preferences: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert preferences: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("insert preferences: %w", err)
		}
		return nil, fmt.Errorf("insert preferences: no row returned")
	}
	var row preferencesRow
	if err := rows.StructScan(&row); err != nil {
		return nil, fmt.Errorf("scan preferences: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var row preferencesRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+preferencesColumns+` FROM user_preferences WHERE user_id = $1`, userID)
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) UpdatePreferences(ctx context.Context, userID string, u models.PreferencesUpdate) (*models.UserPreferences, error) {
	var row preferencesRow
	err := s.db.GetContext(ctx, &row,
		`UPDATE user_preferences SET
		    theme = COALESCE($2, theme),
		    language = COALESCE($3, language),
		    default_difficulty = COALESCE($4, default_difficulty),
		    default_learning_style = COALESCE($5, default_learning_style),
		    email_notifications = COALESCE($6, email_notifications),
		    daily_goal_xp = COALESCE($7, daily_goal_xp),
		    weekly_goal_sessions = COALESCE($8, weekly_goal_sessions),
		    updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING `+preferencesColumns,
		userID, u.Theme, u.Language, (*string)(u.DefaultDifficulty), (*string)(u.DefaultLearningStyle),
		u.EmailNotifications, u.DailyGoalXP, u.WeeklyGoalSessions)
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

// ── Auth sessions ───────────────────────────────────────

func (s *PostgresStorage) CreateUserSession(ctx context.Context, us models.UserSession) (*models.UserSession, error) {
	var row userSessionRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO user_sessions (id, user_id, session_token, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userSessionColumns,
		uuid.NewString(), us.UserID, us.SessionToken, us.ExpiresAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("insert user session: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user session: %w", err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) GetUserSession(ctx context.Context, token string) (*models.UserSession, error) {
	var row userSessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+userSessionColumns+` FROM user_sessions
		 WHERE session_token = $1 AND expires_at > $2`, token, s.now())
	if err != nil {
		return nil, notFound(err)
	}
	out := row.toModel()
	return &out, nil
}

func (s *PostgresStorage) DeleteUserSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE session_token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete user session: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteExpiredUserSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge user sessions: %w", err)
	}
	return res.RowsAffected()
}

// ── Achievements ────────────────────────────────────────

func (s *PostgresStorage) CreateAchievement(ctx context.Context, a models.UserAchievement) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user_achievements (id, user_id, achievement_type, title, description, icon, xp_reward)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, achievement_type) DO NOTHING`,
		uuid.NewString(), a.UserID, a.AchievementType, a.Title, a.Description, a.Icon, a.XPReward)
	if err != nil {
		return false, fmt.Errorf("insert achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *PostgresStorage) ListAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var rows []achievementRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+achievementColumns+` FROM user_achievements
		 WHERE user_id = $1 ORDER BY unlocked_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out := make([]models.UserAchievement, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}
