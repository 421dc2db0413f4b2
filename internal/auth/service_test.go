package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DevSidd2006/learnquest/internal/gamification"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
	"github.com/DevSidd2006/learnquest/internal/storage"
)

var testSecret = []byte("test-signing-secret")

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *storage.MemStorage, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	mem := storage.NewMemStorageWithClock(c.Now)
	gam := gamification.NewService(mem, 1000, logger.Nop())
	svc := NewService(mem, gam, testSecret, logger.Nop())
	svc.SetHashCost(bcrypt.MinCost)
	svc.now = c.Now
	return svc, mem, c
}

func register(t *testing.T, svc *Service, email, password string) *models.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), models.RegisterRequest{Email: email, Password: password})
	require.NoError(t, err)
	return resp
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newTestService(t)

	reg := register(t, svc, "a@b.com", "secret1")
	assert.Equal(t, "a@b.com", reg.User.Email)
	assert.Equal(t, "light", reg.Preferences.Theme)
	assert.NotEmpty(t, reg.Session.SessionToken)

	login, err := svc.Login(ctx, models.LoginRequest{Email: "A@B.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Session.SessionToken, login.Session.SessionToken)
	assert.NotNil(t, login.User.LastLoginAt)

	user, err := svc.ValidateSession(ctx, login.Session.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	// login does not revoke earlier sessions
	_, err = svc.ValidateSession(ctx, reg.Session.SessionToken)
	assert.NoError(t, err)

	cred, err := mem.GetUserAuth(ctx, reg.User.ID, models.ProviderEmail)
	require.NoError(t, err)
	require.NotNil(t, cred.PasswordHash)
	assert.NotEqual(t, "secret1", *cred.PasswordHash)
}

func TestRegister_CreatesProgressAndAchievement(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newTestService(t)

	reg := register(t, svc, "new@example.com", "secret1")

	achievements, err := mem.ListAchievements(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, gamification.FirstRegistration, achievements[0].AchievementType)

	p, err := mem.GetProgress(ctx, &reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalXP)

	// awarding it again changes nothing
	a, err := svc.gam.AwardAchievement(ctx, reg.User.ID, gamification.FirstRegistration)
	require.NoError(t, err)
	assert.Nil(t, a)
	p, _ = mem.GetProgress(ctx, &reg.User.ID)
	assert.Equal(t, 50, p.TotalXP)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc, "dup@example.com", "secret1")

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: " DUP@example.com", Password: "other12"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)
	name := "learner"
	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "one@example.com", Password: "secret1", Username: &name})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), models.RegisterRequest{Email: "two@example.com", Password: "secret1", Username: &name})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc, mem, _ := newTestService(t)
	reg := register(t, svc, "a@b.com", "secret1")

	tests := []struct {
		name string
		req  models.LoginRequest
	}{
		{"wrong password", models.LoginRequest{Email: "a@b.com", Password: "secret2"}},
		{"unknown email", models.LoginRequest{Email: "x@b.com", Password: "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, tt.req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Nil(t, resp)
		})
	}

	// only the registration session exists
	n, err := mem.DeleteExpiredUserSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = svc.ValidateSession(ctx, reg.Session.SessionToken)
	assert.NoError(t, err)
}

func TestValidateSession_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, _, c := newTestService(t)
	reg := register(t, svc, "a@b.com", "secret1")
	token := reg.Session.SessionToken

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateSession(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("other secret", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID:           reg.User.ID,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour))},
		})
		signed, err := forged.SignedString([]byte("someone-else"))
		require.NoError(t, err)
		_, err = svc.ValidateSession(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			UserID:           reg.User.ID,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour))},
		})
		signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateSession(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("valid signature without row", func(t *testing.T) {
		signed, _, err := svc.generateToken(reg.User.ID, c.t)
		require.NoError(t, err)
		_, err = svc.ValidateSession(ctx, signed)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("logout revokes", func(t *testing.T) {
		login, err := svc.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "secret1"})
		require.NoError(t, err)
		require.NoError(t, svc.Logout(ctx, login.Session.SessionToken))

		_, err = svc.ValidateSession(ctx, login.Session.SessionToken)
		assert.ErrorIs(t, err, ErrInvalidSession)
		_, err = svc.ValidateSession(ctx, token)
		assert.NoError(t, err, "logout removes one session only")
	})

	t.Run("expired", func(t *testing.T) {
		c.t = c.t.Add(SessionTTL + time.Minute)
		_, err := svc.ValidateSession(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidSession)

		n, err := svc.PurgeExpiredSessions(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestProfileAndPreferences(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	reg := register(t, svc, "a@b.com", "secret1")

	first := "Ada"
	user, err := svc.UpdateProfile(ctx, reg.User.ID, models.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Ada", *user.FirstName)

	theme := "dark"
	goal := 250
	prefs, err := svc.UpdatePreferences(ctx, reg.User.ID, models.PreferencesUpdate{Theme: &theme, DailyGoalXP: &goal})
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Equal(t, 250, prefs.DailyGoalXP)
	assert.Equal(t, "en", prefs.Language, "unlisted fields keep their value")

	profile, err := svc.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "dark", profile.Preferences.Theme)
	assert.Len(t, profile.Achievements, 1)
}
