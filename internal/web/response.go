package web

import (
	"encoding/json"
	"net/http"
)

type response struct {
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type summaryData struct {
	Summary    string `json:"summary"`
	Source     string `json:"source"`
	SourceKind string `json:"sourceKind"`
}

func writeJSON(w http.ResponseWriter, statusCode int, resp response) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, data any) error {
	return writeJSON(w, http.StatusOK, response{
		Status: "success",
		Data:   data,
	})
}

func writeError(w http.ResponseWriter, statusCode int, kind string, message string) error {
	return writeJSON(w, statusCode, response{
		Status: "error",
		Kind:   kind,
		Error:  message,
	})
}
