package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/vikor/internal/config"
	"github.com/MikeSquared-Agency/vikor/internal/ranker"
	"github.com/MikeSquared-Agency/vikor/internal/report"
)

type RankHandler struct {
	svc    *ranker.Service
	limits config.LimitsConfig
	logger *slog.Logger
}

func NewRankHandler(svc *ranker.Service, limits config.LimitsConfig, logger *slog.Logger) *RankHandler {
	return &RankHandler{svc: svc, limits: limits, logger: logger}
}

type BatchRequest struct {
	Problems []ranker.Problem `json:"problems"`
}

type BatchResponse struct {
	Items []ranker.BatchItem `json:"items"`
}

// Rank handles POST /api/v1/rank
func (h *RankHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var p ranker.Problem
	if !h.decode(w, r, &p) {
		return
	}
	if p.RequestID == "" {
		p.RequestID = chiMiddleware.GetReqID(r.Context())
	}

	run, err := h.svc.Rank(r.Context(), p)
	if err != nil {
		writeRankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Batch handles POST /api/v1/rank/batch
func (h *RankHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Problems) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "problems required"})
		return
	}
	if len(req.Problems) > h.limits.MaxBatchSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("batch of %d exceeds the limit of %d", len(req.Problems), h.limits.MaxBatchSize),
		})
		return
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	for i := range req.Problems {
		if req.Problems[i].RequestID == "" && reqID != "" {
			req.Problems[i].RequestID = reqID + "-" + strconv.Itoa(i)
		}
	}

	writeJSON(w, http.StatusOK, BatchResponse{Items: h.svc.RankBatch(r.Context(), req.Problems)})
}

// Upload handles POST /api/v1/rank/upload with multipart files "data" and
// "criteria" and an optional "v" field.
func (h *RankHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.limits.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	dataFile, _, err := r.FormFile("data")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "data file required"})
		return
	}
	defer dataFile.Close()

	criteriaFile, _, err := r.FormFile("criteria")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "criteria file required"})
		return
	}
	defer criteriaFile.Close()

	matrix, err := report.ParseData(dataFile)
	if err != nil {
		writeParseError(w, "data", err)
		return
	}
	specs, err := report.ParseCriteria(criteriaFile)
	if err != nil {
		writeParseError(w, "criteria", err)
		return
	}

	p := ranker.NewProblem(matrix, specs)
	p.RequestID = chiMiddleware.GetReqID(r.Context())
	if raw := r.FormValue("v"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid v"})
			return
		}
		p.V = &v
	}

	run, err := h.svc.Rank(r.Context(), p)
	if err != nil {
		writeRankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Export handles POST /api/v1/rank/export and responds with a zip holding
// one CSV per pipeline stage.
func (h *RankHandler) Export(w http.ResponseWriter, r *http.Request) {
	var p ranker.Problem
	if !h.decode(w, r, &p) {
		return
	}
	if p.RequestID == "" {
		p.RequestID = chiMiddleware.GetReqID(r.Context())
	}

	run, err := h.svc.Rank(r.Context(), p)
	if err != nil {
		writeRankError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="vikor_results.zip"`)
	w.Header().Set("X-Run-ID", run.ID.String())
	w.WriteHeader(http.StatusOK)
	if err := run.Report.WriteZip(w); err != nil {
		h.logger.Error("failed to write export", "run_id", run.ID, "error", err)
	}
}

func (h *RankHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, h.limits.MaxUploadBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
