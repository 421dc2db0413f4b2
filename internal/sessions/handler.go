package sessions

import (
	"net/http"

	"github.com/gorilla/mux"

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

// Register mounts the learning routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	r.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	r.HandleFunc("/quiz/submit", h.SubmitQuiz).Methods("POST")
	r.HandleFunc("/quiz/{sessionId}/{subtopicId}", h.GetQuiz).Methods("GET")
	r.HandleFunc("/flashcards/complete", h.CompleteFlashcards).Methods("POST")
	r.HandleFunc("/flashcards/{sessionId}/{subtopicId}", h.GetFlashcards).Methods("GET")
	r.HandleFunc("/explanation", h.Explain).Methods("POST")
}

// ── Sessions ────────────────────────────────────────────

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "create session", err, "Invalid request data")
		return
	}

	session, err := h.service.CreateSession(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		httpjson.Error(w, h.log, "create session", err, "Failed to create learning session")
		return
	}
	httpjson.Write(w, http.StatusCreated, session)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpjson.Error(w, h.log, "get session", err, "Failed to fetch session")
		return
	}
	httpjson.Write(w, http.StatusOK, session)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListSessions(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		httpjson.Error(w, h.log, "list sessions", err, "Failed to fetch sessions")
		return
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ── Quizzes ─────────────────────────────────────────────

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	questions, err := h.service.Quiz(r.Context(), vars["sessionId"], vars["subtopicId"])
	if err != nil {
		httpjson.Error(w, h.log, "get quiz", err, "Failed to generate quiz")
		return
	}
	httpjson.Write(w, http.StatusOK, questions)
}

func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitQuizRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "submit quiz", err, "Invalid request data")
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), req)
	if err != nil {
		httpjson.Error(w, h.log, "submit quiz", err, "Failed to submit quiz")
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

// ── Flashcards ──────────────────────────────────────────

func (h *Handler) GetFlashcards(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cards, err := h.service.Flashcards(r.Context(), vars["sessionId"], vars["subtopicId"])
	if err != nil {
		httpjson.Error(w, h.log, "get flashcards", err, "Failed to generate flashcards")
		return
	}
	httpjson.Write(w, http.StatusOK, cards)
}

func (h *Handler) CompleteFlashcards(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteFlashcardsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "complete flashcards", err, "Invalid request data")
		return
	}

	result, err := h.service.CompleteFlashcards(r.Context(), req)
	if err != nil {
		httpjson.Error(w, h.log, "complete flashcards", err, "Failed to complete flashcards")
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

// ── Explanations ────────────────────────────────────────

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req models.ExplanationRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "explain", err, "Invalid request data")
		return
	}

	explanation, err := h.service.Explain(r.Context(), req)
	if err != nil {
		httpjson.Error(w, h.log, "explain", err, "Failed to generate explanation")
		return
	}
	httpjson.Write(w, http.StatusOK, explanation)
}
