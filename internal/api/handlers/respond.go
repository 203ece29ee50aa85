package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// DatasetSource yields the dataset currently served, nil when none is loaded
type DatasetSource interface {
	Dataset() *contracts.Dataset
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// currentDataset writes 503 and returns nil when nothing is loaded yet
func currentDataset(w http.ResponseWriter, source DatasetSource) *contracts.Dataset {
	ds := source.Dataset()
	if ds == nil {
		respondError(w, http.StatusServiceUnavailable, "Dataset not loaded yet")
	}
	return ds
}

// queryInt parses an integer query parameter, def when absent
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// queryList splits a comma-separated query parameter, nil when absent
func queryList(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
