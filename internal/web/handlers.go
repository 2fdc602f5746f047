package web

import (
	"encoding/json"
	"net/http"
	"urlsummarizer/internal/pipeline"
)

type pageData struct {
	URL     string
	Outcome pipeline.Outcome
}

type summarizeRequest struct {
	APIKey string `json:"apiKey"`
	URL    string `json:"url"`
}

// handleIndex renders the empty form. No key has been entered yet, so the
// page opens with the missing credential warning.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, pageData{
		Outcome: pipeline.Present(pipeline.Result{}, pipeline.Validate("", "")),
	})
}

func (s *Server) handleSummarizeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, pageData{
			Outcome: pipeline.Present(pipeline.Result{}, err),
		})
		return
	}

	req := pipeline.Request{
		Credential: r.PostForm.Get("api_key"),
		URL:        r.PostForm.Get("url"),
	}

	res, err := s.run(r, req)

	// The credential is never echoed back into the page.
	s.renderPage(w, r, http.StatusOK, pageData{
		URL:     req.URL,
		Outcome: pipeline.Present(res, err),
	})
}

func (s *Server) handleSummarizeAPI(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var payload summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeJSONError(w, r, http.StatusBadRequest, "", "invalid JSON payload")
		return
	}

	res, err := s.run(r, pipeline.Request{
		Credential: payload.APIKey,
		URL:        payload.URL,
	})

	out := pipeline.Present(res, err)
	if !out.Failed {
		if writeErr := writeSuccess(w, summaryData{
			Summary:    res.Summary,
			Source:     res.Source,
			SourceKind: res.Kind.String(),
		}); writeErr != nil {
			s.log.ErrorContext(r.Context(), "Failed to write response",
				"error", writeErr,
				"requestID", requestID(r.Context()))
		}
		return
	}

	message := out.Warning
	if message == "" {
		message = out.Error
	}

	s.writeJSONError(w, r, statusForKind(out.Kind), out.Kind.String(), message)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, statusCode int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := s.page.Execute(w, data); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page",
			"error", err,
			"requestID", requestID(r.Context()))
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, statusCode int, kind string, message string) {
	if err := writeError(w, statusCode, kind, message); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to write response",
			"error", err,
			"requestID", requestID(r.Context()))
	}
}

func statusForKind(kind pipeline.Kind) int {
	switch {
	case kind.IsValidation():
		return http.StatusBadRequest
	case kind == pipeline.KindLoad, kind == pipeline.KindSummarization:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
