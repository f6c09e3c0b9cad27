package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/vikor/internal/ranker"
)

type AdminHandler struct {
	svc *ranker.Service
}

func NewAdminHandler(svc *ranker.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Stats handles GET /api/v1/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}
