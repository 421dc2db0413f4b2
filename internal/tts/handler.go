package tts

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/DevSidd2006/learnquest/internal/httpjson"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/tts", h.Synthesize).Methods("POST")
}

func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req models.TTSRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, h.log, "tts", err, "Invalid request data")
		return
	}

	resp, err := h.service.Speak(r.Context(), req)
	if err != nil {
		httpjson.Error(w, h.log, "tts", err, "Failed to generate speech")
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}
