package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/middleware"
	"github.com/DevSidd2006/learnquest/internal/models"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	svc, _, _ := newTestService(t)
	am := middleware.NewAuthMiddleware(logger.Nop(), svc)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	protected := api.NewRoute().Subrouter()
	protected.Use(am.RequireAuth)
	NewHandler(svc, logger.Nop()).Register(api, protected)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RegisterValidation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"bad email", map[string]string{"email": "nope", "password": "secret1"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@b.com", "password": "123"}, http.StatusBadRequest},
		{"valid", map[string]string{"email": "a@b.com", "password": "secret1"}, http.StatusCreated},
		{"duplicate", map[string]string{"email": "a@b.com", "password": "secret1"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_SessionLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "learner@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "learner@example.com", "password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "Invalid email or password", errResp.Error)

	rec = doJSON(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "learner@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login models.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&login))
	token := login.Session.SessionToken

	rec = doJSON(t, r, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.ProfileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&profile))
	assert.Equal(t, "learner@example.com", profile.User.Email)
	assert.Len(t, profile.Achievements, 1)

	rec = doJSON(t, r, http.MethodPut, "/api/auth/preferences", token, map[string]string{"theme": "neon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPut, "/api/auth/preferences", token, map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs struct {
		Preferences models.UserPreferences `json:"preferences"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&prefs))
	assert.Equal(t, "dark", prefs.Preferences.Theme)

	rec = doJSON(t, r, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_LogoutWithoutToken(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
