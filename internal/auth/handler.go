package auth

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DevSidd2006/learnquest/internal/apierr"
	"github.com/DevSidd2006/learnquest/internal/httpjson"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/middleware"
	"github.com/DevSidd2006/learnquest/internal/models"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Register mounts the auth routes. protected must already run RequireAuth.
func (h *Handler) Register(public, protected *mux.Router) {
	public.HandleFunc("/auth/register", h.RegisterUser).Methods("POST")
	public.HandleFunc("/auth/login", h.Login).Methods("POST")
	public.HandleFunc("/auth/logout", h.Logout).Methods("POST")

	protected.HandleFunc("/auth/me", h.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/auth/profile", h.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/auth/preferences", h.UpdatePreferences).Methods("PUT")
}

// publicError maps auth sentinels onto HTTP errors.
func publicError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return apierr.Conflict("An account with this email already exists")
	case errors.Is(err, ErrUsernameTaken):
		return apierr.Conflict("Username is already taken")
	case errors.Is(err, ErrInvalidCredentials):
		return apierr.Unauthorized("Invalid email or password")
	case errors.Is(err, ErrInvalidSession):
		return apierr.Unauthorized("Invalid or expired session")
	}
	return err
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "register", err, "Invalid request data")
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpjson.Error(w, h.log, "register", publicError(err), "Registration failed")
		return
	}
	httpjson.Write(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "login", err, "Invalid request data")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		httpjson.Error(w, h.log, "login", publicError(err), "Login failed")
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// Logout revokes the presented token. A request without one still succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			httpjson.Error(w, h.log, "logout", err, "Logout failed")
			return
		}
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	resp, err := h.service.Profile(r.Context(), user.ID)
	if err != nil {
		httpjson.Error(w, h.log, "get current user", err, "Failed to get user profile")
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req models.ProfileUpdate
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "update profile", err, "Invalid request data")
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		httpjson.Error(w, h.log, "update profile", publicError(err), "Failed to update profile")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]*models.User{"user": updated})
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var req models.PreferencesUpdate
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "update preferences", err, "Invalid request data")
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), user.ID, req)
	if err != nil {
		httpjson.Error(w, h.log, "update preferences", err, "Failed to update preferences")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]*models.UserPreferences{"preferences": prefs})
}
