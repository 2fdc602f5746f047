package web_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"urlsummarizer/internal/domain"
	"urlsummarizer/internal/loader"
	"urlsummarizer/internal/pipeline"
	"urlsummarizer/internal/summarizer"
	"urlsummarizer/internal/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	calls int
	docs  []domain.Document
	err   error
}

func (s *stubSource) LoadPage(_ context.Context, _ string) ([]domain.Document, error) {
	s.calls++
	return s.docs, s.err
}

func (s *stubSource) LoadTranscript(_ context.Context, _ string) ([]domain.Document, error) {
	s.calls++
	return s.docs, s.err
}

type stubCompleter struct {
	prompts []string
	reply   string
}

func (s *stubCompleter) Complete(_ context.Context, _ string, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, nil
}

type fixture struct {
	pages       *stubSource
	transcripts *stubSource
	completer   *stubCompleter
	server      *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		pages:       &stubSource{},
		transcripts: &stubSource{},
		completer:   &stubCompleter{},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.New(
		loader.NewDispatcher(f.transcripts, f.pages, log),
		summarizer.New(f.completer, log),
		log,
	)

	s, err := web.New(p, log)
	require.NoError(t, err)

	f.server = httptest.NewServer(s.Handler())
	t.Cleanup(f.server.Close)

	return f
}

func (f *fixture) postForm(t *testing.T, apiKey string, rawURL string) string {
	t.Helper()

	resp, err := f.server.Client().PostForm(f.server.URL+"/", url.Values{
		"api_key": {apiKey},
		"url":     {rawURL},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

func TestIndexRendersBlankForm(t *testing.T) {
	f := newFixture(t)

	resp, err := f.server.Client().Get(f.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `type="password"`)
	assert.Contains(t, string(body), `name="url"`)
	assert.Contains(t, string(body), "This app summarizes the content of a given URL using Groq LLM.")
	assert.Contains(t, string(body), "Please enter your API key.")
	assert.NotContains(t, string(body), "An error occurred")
	assert.NotContains(t, string(body), "Summary:")
	assert.Zero(t, f.pages.calls)
	assert.Empty(t, f.completer.prompts)
}

func TestFormSummarizesArticle(t *testing.T) {
	f := newFixture(t)
	f.pages.docs = []domain.Document{domain.NewDocument("Hello world.", "https://example.com/article")}
	f.completer.reply = "A greeting."

	body := f.postForm(t, "valid-key", "https://example.com/article")

	require.Len(t, f.completer.prompts, 1)
	assert.Equal(t, "Summarize the following content in a concise manner:\n\nHello world.", f.completer.prompts[0])
	assert.Contains(t, body, "A greeting.")
	assert.Contains(t, body, "Summary:")
	assert.Contains(t, body, `value="https://example.com/article"`)
	assert.NotContains(t, body, "valid-key")
}

func TestFormMissingCredential(t *testing.T) {
	f := newFixture(t)

	body := f.postForm(t, "", "https://example.com")

	assert.Contains(t, body, "Please enter your API key.")
	assert.NotContains(t, body, "Summary:")
	assert.Zero(t, f.pages.calls)
	assert.Empty(t, f.completer.prompts)
}

func TestFormMalformedURL(t *testing.T) {
	f := newFixture(t)

	body := f.postForm(t, "valid-key", "not-a-url")

	assert.Contains(t, body, "Please enter a valid URL.")
	assert.Zero(t, f.pages.calls)
}

func TestFormVideoWithoutTranscript(t *testing.T) {
	f := newFixture(t)
	f.transcripts.err = loader.ErrTranscriptUnavailable

	body := f.postForm(t, "valid-key", "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

	assert.Contains(t, body, "An error occurred: load error")
	assert.NotContains(t, body, "Summary:")
	assert.Equal(t, 1, f.transcripts.calls)
	assert.Empty(t, f.completer.prompts)
}

func TestFormEscapesSummary(t *testing.T) {
	f := newFixture(t)
	f.pages.docs = []domain.Document{domain.NewDocument("text", "https://example.com")}
	f.completer.reply = "<script>alert(1)</script>"

	body := f.postForm(t, "valid-key", "https://example.com")

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func postJSON(t *testing.T, f *fixture, payload string) (int, map[string]any) {
	t.Helper()

	resp, err := f.server.Client().Post(f.server.URL+"/api/summarize", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp.StatusCode, decoded
}

func TestAPISummarize(t *testing.T) {
	f := newFixture(t)
	f.pages.docs = []domain.Document{domain.NewDocument("Hello world.", "https://example.com/article")}
	f.completer.reply = "A greeting."

	status, body := postJSON(t, f, `{"apiKey": "valid-key", "url": "https://example.com/article"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A greeting.", data["summary"])
	assert.Equal(t, "https://example.com/article", data["source"])
	assert.Equal(t, "web", data["sourceKind"])
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *fixture)
		payload    string
		wantStatus int
		wantKind   string
	}{
		{
			name:       "missing credential",
			payload:    `{"url": "https://example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "missing credential",
		},
		{
			name:       "missing URL",
			payload:    `{"apiKey": "valid-key"}`,
			wantStatus: http.StatusBadRequest,
			wantKind:   "missing URL",
		},
		{
			name: "load error",
			setup: func(f *fixture) {
				f.pages.err = &loader.StatusError{Code: http.StatusNotFound}
			},
			payload:    `{"apiKey": "valid-key", "url": "https://example.com/missing"}`,
			wantStatus: http.StatusBadGateway,
			wantKind:   "load error",
		},
		{
			name:       "invalid JSON",
			payload:    `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			if test.setup != nil {
				test.setup(f)
			}

			status, body := postJSON(t, f, test.payload)

			assert.Equal(t, test.wantStatus, status)
			assert.Equal(t, "error", body["status"])
			assert.NotEmpty(t, body["error"])
			if test.wantKind != "" {
				assert.Equal(t, test.wantKind, body["kind"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, err := f.server.Client().Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodDelete, f.server.URL+"/", nil)
	require.NoError(t, err)

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
