package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/vikor/internal/ranker"
	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRankError maps engine and service errors to a status code and a body
// that points at the offending field, row or column.
func writeRankError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{
		"error": err.Error(),
		"kind":  ranker.ErrorKind(err),
	}

	var inv *vikor.InvalidInputError
	var degen *vikor.DegenerateCriterionError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &inv):
		status = http.StatusBadRequest
		body["field"] = inv.Field
		if inv.Row >= 0 {
			body["row"] = inv.Row
		}
		if inv.Column >= 0 {
			body["column"] = inv.Column
		}
	case errors.As(err, &degen):
		status = http.StatusUnprocessableEntity
		body["criterion"] = degen.Criterion
		body["column"] = degen.Column
	case ranker.ErrorKind(err) == ranker.KindCanceled:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

// writeParseError reports a CSV table that could not be turned into engine input.
func writeParseError(w http.ResponseWriter, table string, err error) {
	if errors.Is(err, vikor.ErrInvalidInput) {
		writeRankError(w, err)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": table + ": " + err.Error()})
}
