package gamification

import (
	"net/http"

	"github.com/DevSidd2006/learnquest/internal/httpjson"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/middleware"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetProgress returns the caller's progress, or the guest aggregate when the
// request is anonymous.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Progress(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		httpjson.Error(w, h.log, "get progress", err, "Failed to fetch progress")
		return
	}
	httpjson.Write(w, http.StatusOK, resp)
}
