package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DevSidd2006/learnquest/internal/models"
)

// MemStorage keeps everything in process memory. It is safe for concurrent
// use but not shareable across processes.
type MemStorage struct {
	mu  sync.Mutex
	now func() time.Time

	sessions   map[string]*models.LearningSession
	order      []string
	quizzes    map[string]*models.Quiz
	quizKeys   map[string]string
	flashcards map[string]*models.FlashcardSet
	setKeys    map[string]string
	progress   map[string]*models.UserProgress

	users        map[string]*models.User
	auths        map[string]*models.UserAuth
	userSessions map[string]*models.UserSession
	preferences  map[string]*models.UserPreferences
	achievements map[string][]models.UserAchievement
}

func NewMemStorage() *MemStorage {
	return NewMemStorageWithClock(time.Now)
}

// NewMemStorageWithClock lets tests control "today" for streak handling.
func NewMemStorageWithClock(now func() time.Time) *MemStorage {
	return &MemStorage{
		now:          now,
		sessions:     make(map[string]*models.LearningSession),
		quizzes:      make(map[string]*models.Quiz),
		quizKeys:     make(map[string]string),
		flashcards:   make(map[string]*models.FlashcardSet),
		setKeys:      make(map[string]string),
		progress:     make(map[string]*models.UserProgress),
		users:        make(map[string]*models.User),
		auths:        make(map[string]*models.UserAuth),
		userSessions: make(map[string]*models.UserSession),
		preferences:  make(map[string]*models.UserPreferences),
		achievements: make(map[string][]models.UserAchievement),
	}
}

func (m *MemStorage) Name() string { return "memory" }

func (m *MemStorage) Close() error { return nil }

func contentKey(sessionID, subtopic string) string {
	return sessionID + "\x00" + subtopic
}

func ownerKey(userID *string) string {
	if userID == nil {
		return ""
	}
	return *userID
}

func sameOwner(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// The clone helpers copy a record together with the values behind its pointer
// fields so callers never alias stored state.

func cloneSession(s *models.LearningSession) *models.LearningSession {
	out := *s
	out.UserID = copyPtr(s.UserID)
	return &out
}

func cloneQuiz(q *models.Quiz) *models.Quiz {
	out := *q
	out.UserID = copyPtr(q.UserID)
	out.Score = copyPtr(q.Score)
	out.TimeSpent = copyPtr(q.TimeSpent)
	return &out
}

func cloneFlashcardSet(f *models.FlashcardSet) *models.FlashcardSet {
	out := *f
	out.UserID = copyPtr(f.UserID)
	out.LastReviewedAt = copyPtr(f.LastReviewedAt)
	return &out
}

func cloneProgress(p *models.UserProgress) *models.UserProgress {
	out := *p
	out.UserID = copyPtr(p.UserID)
	out.LastActivityDate = copyPtr(p.LastActivityDate)
	return &out
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.Username = copyPtr(u.Username)
	out.FirstName = copyPtr(u.FirstName)
	out.LastName = copyPtr(u.LastName)
	out.Avatar = copyPtr(u.Avatar)
	out.LastLoginAt = copyPtr(u.LastLoginAt)
	return &out
}

func cloneUserAuth(a *models.UserAuth) *models.UserAuth {
	out := *a
	out.ProviderID = copyPtr(a.ProviderID)
	out.PasswordHash = copyPtr(a.PasswordHash)
	return &out
}

// ── Learning sessions ───────────────────────────────────

func (m *MemStorage) CreateSession(_ context.Context, in models.NewSession) (*models.LearningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &models.LearningSession{
		ID:            uuid.NewString(),
		UserID:        copyPtr(in.UserID),
		Topic:         in.Topic,
		Difficulty:    in.Difficulty,
		LearningStyle: in.LearningStyle,
		Outline:       in.Outline,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.sessions[s.ID] = s
	m.order = append(m.order, s.ID)
	return cloneSession(s), nil
}

func (m *MemStorage) GetSession(_ context.Context, id string) (*models.LearningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(s), nil
}

func (m *MemStorage) GetAllSessions(_ context.Context, userID *string) ([]models.LearningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.LearningSession, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		s := m.sessions[m.order[i]]
		if sameOwner(s.UserID, userID) {
			out = append(out, *cloneSession(s))
		}
	}
	return out, nil
}

func (m *MemStorage) UpdateSessionProgress(_ context.Context, id string, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.CurrentStep = step
	s.UpdatedAt = m.now()
	return nil
}

func (m *MemStorage) CompleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.Completed {
		return nil
	}
	s.Completed = true
	s.UpdatedAt = m.now()
	p := m.progressLocked(s.UserID)
	p.CompletedTopics++
	p.UpdatedAt = s.UpdatedAt
	return nil
}

// ── Quizzes ─────────────────────────────────────────────

func (m *MemStorage) CreateQuiz(_ context.Context, in models.NewQuiz) (*models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := contentKey(in.SessionID, in.Subtopic)
	if id, ok := m.quizKeys[key]; ok {
		return cloneQuiz(m.quizzes[id]), nil
	}
	if _, ok := m.sessions[in.SessionID]; !ok {
		return nil, fmt.Errorf("create quiz: session %s: %w", in.SessionID, ErrNotFound)
	}
	now := m.now()
	q := &models.Quiz{
		ID:             uuid.NewString(),
		SessionID:      in.SessionID,
		UserID:         copyPtr(in.UserID),
		Subtopic:       in.Subtopic,
		Questions:      in.Questions,
		TotalQuestions: in.TotalQuestions,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	m.quizzes[q.ID] = q
	m.quizKeys[key] = q.ID
	return cloneQuiz(q), nil
}

func (m *MemStorage) GetQuiz(_ context.Context, sessionID, subtopic string) (*models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.quizKeys[contentKey(sessionID, subtopic)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneQuiz(m.quizzes[id]), nil
}

func (m *MemStorage) UpdateQuizScore(_ context.Context, id string, score int, timeSpent *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.quizzes[id]
	if !ok {
		return ErrNotFound
	}
	q.Score = &score
	q.Completed = true
	if timeSpent != nil {
		q.TimeSpent = copyPtr(timeSpent)
	}
	q.UpdatedAt = m.now()

	p := m.progressLocked(q.UserID)
	p.QuizzesCompleted++
	p.RecordQuizScore(quizPercent(score, q.TotalQuestions))
	if timeSpent != nil {
		p.TotalStudyTime += *timeSpent
	}
	p.UpdatedAt = q.UpdatedAt
	return nil
}

// ── Flashcards ──────────────────────────────────────────

func (m *MemStorage) CreateFlashcardSet(_ context.Context, in models.NewFlashcardSet) (*models.FlashcardSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := contentKey(in.SessionID, in.Subtopic)
	if id, ok := m.setKeys[key]; ok {
		return cloneFlashcardSet(m.flashcards[id]), nil
	}
	if _, ok := m.sessions[in.SessionID]; !ok {
		return nil, fmt.Errorf("create flashcard set: session %s: %w", in.SessionID, ErrNotFound)
	}
	now := m.now()
	f := &models.FlashcardSet{
		ID:         uuid.NewString(),
		SessionID:  in.SessionID,
		UserID:     copyPtr(in.UserID),
		Subtopic:   in.Subtopic,
		Cards:      in.Cards,
		TotalCards: in.TotalCards,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.flashcards[f.ID] = f
	m.setKeys[key] = f.ID
	return cloneFlashcardSet(f), nil
}

func (m *MemStorage) GetFlashcardSet(_ context.Context, sessionID, subtopic string) (*models.FlashcardSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.setKeys[contentKey(sessionID, subtopic)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneFlashcardSet(m.flashcards[id]), nil
}

func (m *MemStorage) UpdateFlashcardProgress(_ context.Context, id string, reviewedCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flashcards[id]
	if !ok {
		return ErrNotFound
	}
	now := m.now()
	f.ReviewedCount = reviewedCount
	f.LastReviewedAt = &now
	f.UpdatedAt = now

	p := m.progressLocked(f.UserID)
	p.FlashcardsReviewed += reviewedCount
	p.UpdatedAt = now
	return nil
}

// ── Progress ────────────────────────────────────────────

// progressLocked returns the live record for userID, creating it if needed.
// m.mu must be held.
func (m *MemStorage) progressLocked(userID *string) *models.UserProgress {
	key := ownerKey(userID)
	if p, ok := m.progress[key]; ok {
		return p
	}
	now := m.now()
	p := &models.UserProgress{
		ID:           uuid.NewString(),
		UserID:       copyPtr(userID),
		CurrentLevel: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.progress[key] = p
	return p
}

func (m *MemStorage) GetProgress(_ context.Context, userID *string) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneProgress(m.progressLocked(userID)), nil
}

func (m *MemStorage) UpdateProgress(_ context.Context, userID *string, u models.ProgressUpdate) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.progressLocked(userID)
	u.Apply(p)
	p.UpdatedAt = m.now()
	return cloneProgress(p), nil
}

func (m *MemStorage) AddXP(_ context.Context, userID *string, amount int) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p := m.progressLocked(userID)
	p.TotalXP += amount
	p.RecordActivity(models.ActivityDate(now))
	p.UpdatedAt = now
	return cloneProgress(p), nil
}

func (m *MemStorage) GrantXP(_ context.Context, userID *string, amount int) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.progressLocked(userID)
	p.TotalXP += amount
	p.UpdatedAt = m.now()
	return cloneProgress(p), nil
}

func (m *MemStorage) IncrementStreak(_ context.Context, userID *string) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p := m.progressLocked(userID)
	p.RecordActivity(models.ActivityDate(now))
	p.UpdatedAt = now
	return cloneProgress(p), nil
}

// ── Users ───────────────────────────────────────────────

func (m *MemStorage) CreateUser(_ context.Context, in models.NewUser) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, in.Email) {
			return nil, fmt.Errorf("create user: email: %w", ErrDuplicate)
		}
		if in.Username != nil && u.Username != nil && *u.Username == *in.Username {
			return nil, fmt.Errorf("create user: username: %w", ErrDuplicate)
		}
	}
	now := m.now()
	u := &models.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Username:  copyPtr(in.Username),
		FirstName: copyPtr(in.FirstName),
		LastName:  copyPtr(in.LastName),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.users[u.ID] = u
	return cloneUser(u), nil
}

func (m *MemStorage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *MemStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemStorage) UpdateUser(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Username != nil {
		for _, other := range m.users {
			if other.ID != id && other.Username != nil && *other.Username == *upd.Username {
				return nil, fmt.Errorf("update user: username: %w", ErrDuplicate)
			}
		}
	}
	upd.Apply(u)
	u.UpdatedAt = m.now()
	return cloneUser(u), nil
}

func (m *MemStorage) TouchLastLogin(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	now := m.now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return nil
}

// ── Credentials ─────────────────────────────────────────

func (m *MemStorage) CreateUserAuth(_ context.Context, a models.UserAuth) (*models.UserAuth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.auths {
		if existing.UserID == a.UserID && existing.Provider == a.Provider {
			return nil, fmt.Errorf("create user auth: %w", ErrDuplicate)
		}
		if a.ProviderID != nil && existing.ProviderID != nil &&
			existing.Provider == a.Provider && *existing.ProviderID == *a.ProviderID {
			return nil, fmt.Errorf("create user auth: provider id: %w", ErrDuplicate)
		}
	}
	now := m.now()
	a.ID = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	m.auths[a.ID] = cloneUserAuth(&a)
	return cloneUserAuth(&a), nil
}

func (m *MemStorage) GetUserAuth(_ context.Context, userID, provider string) (*models.UserAuth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.auths {
		if a.UserID == userID && a.Provider == provider {
			return cloneUserAuth(a), nil
		}
	}
	return nil, ErrNotFound
}

// ── Preferences ─────────────────────────────────────────

func (m *MemStorage) CreatePreferences(_ context.Context, p models.UserPreferences) (*models.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.preferences[p.UserID]; ok {
		return nil, fmt.Errorf("create preferences: %w", ErrDuplicate)
	}
	now := m.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	stored := p
	m.preferences[p.UserID] = &stored
	return &p, nil
}

func (m *MemStorage) GetPreferences(_ context.Context, userID string) (*models.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.preferences[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (m *MemStorage) UpdatePreferences(_ context.Context, userID string, u models.PreferencesUpdate) (*models.UserPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.preferences[userID]
	if !ok {
		return nil, ErrNotFound
	}
	u.Apply(p)
	p.UpdatedAt = m.now()
	out := *p
	return &out, nil
}

// ── Auth sessions ───────────────────────────────────────

func (m *MemStorage) CreateUserSession(_ context.Context, s models.UserSession) (*models.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.userSessions[s.SessionToken]; ok {
		return nil, fmt.Errorf("create user session: %w", ErrDuplicate)
	}
	s.ID = uuid.NewString()
	s.CreatedAt = m.now()
	stored := s
	m.userSessions[s.SessionToken] = &stored
	return &s, nil
}

func (m *MemStorage) GetUserSession(_ context.Context, token string) (*models.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.userSessions[token]
	if !ok || !s.ExpiresAt.After(m.now()) {
		return nil, ErrNotFound
	}
	out := *s
	return &out, nil
}

func (m *MemStorage) DeleteUserSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.userSessions, token)
	return nil
}

func (m *MemStorage) DeleteExpiredUserSessions(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var n int64
	for token, s := range m.userSessions {
		if !s.ExpiresAt.After(now) {
			delete(m.userSessions, token)
			n++
		}
	}
	return n, nil
}

// ── Achievements ────────────────────────────────────────

func (m *MemStorage) CreateAchievement(_ context.Context, a models.UserAchievement) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.achievements[a.UserID] {
		if existing.AchievementType == a.AchievementType {
			return false, nil
		}
	}
	a.ID = uuid.NewString()
	a.UnlockedAt = m.now()
	m.achievements[a.UserID] = append(m.achievements[a.UserID], a)
	return true, nil
}

func (m *MemStorage) ListAchievements(_ context.Context, userID string) ([]models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.UserAchievement, len(m.achievements[userID]))
	copy(out, m.achievements[userID])
	return out, nil
}
