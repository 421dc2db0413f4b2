// Package auth handles accounts: registration, password login, bearer
// session tokens, profiles and preferences.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/DevSidd2006/learnquest/internal/gamification"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
	"github.com/DevSidd2006/learnquest/internal/storage"
)

const BcryptCost = 12

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Store is what the auth service needs from the storage backend.
type Store interface {
	storage.UserStore
	GetProgress(ctx context.Context, userID *string) (*models.UserProgress, error)
}

type Service struct {
	store  Store
	gam    *gamification.Service
	secret []byte
	cost   int
	now    func() time.Time
	log    *logger.Logger
}

func NewService(store Store, gam *gamification.Service, secret []byte, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		gam:    gam,
		secret: secret,
		cost:   BcryptCost,
		now:    time.Now,
		log:    log.With("component", "auth"),
	}
}

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *Service) SetHashCost(cost int) {
	s.cost = cost
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ── Registration / Login ────────────────────────────────

// Register creates the account with its credential, default preferences and
// an empty progress record, then signs the user in. The writes are not
// transactional: a failure part-way leaves the earlier rows behind.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, models.NewUser{
		Email:     email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if errors.Is(err, storage.ErrDuplicate) {
		// the email was free a moment ago, so this is usually the username
		if _, lookupErr := s.store.GetUserByEmail(ctx, email); lookupErr == nil {
			return nil, ErrEmailTaken
		}
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hashStr := string(hash)
	if _, err := s.store.CreateUserAuth(ctx, models.UserAuth{
		UserID:       user.ID,
		Provider:     models.ProviderEmail,
		ProviderID:   &email,
		PasswordHash: &hashStr,
	}); err != nil {
		return nil, fmt.Errorf("create credentials: %w", err)
	}

	prefs, err := s.store.CreatePreferences(ctx, models.DefaultPreferences(user.ID))
	if err != nil {
		return nil, fmt.Errorf("create preferences: %w", err)
	}
	if _, err := s.store.GetProgress(ctx, &user.ID); err != nil {
		return nil, fmt.Errorf("create progress: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gam.AwardAchievement(ctx, user.ID, gamification.FirstRegistration); err != nil {
		s.log.Warn("registration achievement failed", "user_id", user.ID, "error", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return &models.AuthResponse{User: *user, Session: *session, Preferences: *prefs}, nil
}

// Login checks the password and issues a new session. Existing sessions of
// the user stay valid.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	cred, err := s.store.GetUserAuth(ctx, user.ID, models.ProviderEmail)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup credentials: %w", err)
	}
	if cred.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*cred.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.preferences(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// re-read so lastLoginAt is current
	if fresh, err := s.store.GetUserByID(ctx, user.ID); err == nil {
		user = fresh
	}
	return &models.AuthResponse{User: *user, Session: *session, Preferences: *prefs}, nil
}

func (s *Service) createSession(ctx context.Context, userID string) (*models.UserSession, error) {
	token, expiresAt, err := s.generateToken(userID, s.now())
	if err != nil {
		return nil, err
	}
	session, err := s.store.CreateUserSession(ctx, models.UserSession{
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return session, nil
}

// ── Sessions ────────────────────────────────────────────

// ValidateSession accepts a token only if its signature and expiry check out
// and its session row still exists.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	session, err := s.store.GetUserSession(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidSession
	}
	return user, nil
}

// Logout revokes one token. Other sessions of the same user are untouched.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.store.DeleteUserSession(ctx, token); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes every session row past its expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredUserSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// ── Profile ─────────────────────────────────────────────

func (s *Service) Profile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	prefs, err := s.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.gam.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	if achievements == nil {
		achievements = []models.UserAchievement{}
	}
	return &models.ProfileResponse{User: *user, Preferences: *prefs, Achievements: achievements}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, u models.ProfileUpdate) (*models.User, error) {
	user, err := s.store.UpdateUser(ctx, userID, u)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, u models.PreferencesUpdate) (*models.UserPreferences, error) {
	if _, err := s.preferences(ctx, userID); err != nil {
		return nil, err
	}
	prefs, err := s.store.UpdatePreferences(ctx, userID, u)
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return prefs, nil
}

// preferences returns the user's preferences, creating the defaults for
// accounts that predate them.
func (s *Service) preferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	prefs, err := s.store.GetPreferences(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		prefs, err = s.store.CreatePreferences(ctx, models.DefaultPreferences(userID))
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}
