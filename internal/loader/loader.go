package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"urlsummarizer/internal/domain"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"
)

var (
	ErrNoContent             = errors.New("no content to summarize")
	ErrTranscriptUnavailable = errors.New("transcript is unavailable")
	ErrUnsupportedContent    = errors.New("unsupported content type")
	ErrContentTooLarge       = errors.New("content is too large")
)

// Error is returned by Dispatcher.Load for every loading failure.
type Error struct {
	URL  string
	Kind domain.SourceKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("load %s content (URL = %s): %v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response from a content source.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

type TranscriptLoader interface {
	LoadTranscript(ctx context.Context, rawURL string) ([]domain.Document, error)
}

type PageLoader interface {
	LoadPage(ctx context.Context, rawURL string) ([]domain.Document, error)
}

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var videoHosts = map[string]struct{}{
	"youtube.com":          {},
	"youtu.be":             {},
	"youtube-nocookie.com": {},
}

// Classify picks the loading strategy for a URL. It never performs I/O.
func Classify(rawURL string) domain.SourceKind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return domain.SourceWeb
	}

	if _, ok := videoHosts[normalizeHost(u.Hostname())]; ok {
		return domain.SourceVideo
	}

	return domain.SourceWeb
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	for _, prefix := range []string{"www.", "m.", "music."} {
		if trimmed, ok := strings.CutPrefix(host, prefix); ok {
			return trimmed
		}
	}

	return host
}

type Dispatcher struct {
	transcripts TranscriptLoader
	pages       PageLoader
	log         *slog.Logger
}

func NewDispatcher(
	transcripts TranscriptLoader,
	pages PageLoader,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		transcripts: transcripts,
		pages:       pages,
		log:         log,
	}
}

// Load fetches the documents behind rawURL using the strategy Classify selects.
// An empty or blank result is reported as ErrNoContent.
func (d *Dispatcher) Load(ctx context.Context, rawURL string) ([]domain.Document, error) {
	kind := Classify(rawURL)

	var (
		docs []domain.Document
		err  error
	)

	switch kind {
	case domain.SourceVideo:
		docs, err = d.transcripts.LoadTranscript(ctx, rawURL)
	default:
		docs, err = d.pages.LoadPage(ctx, rawURL)
	}
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: kind, Err: err}
	}

	if !hasContent(docs) {
		return nil, &Error{URL: rawURL, Kind: kind, Err: ErrNoContent}
	}

	d.log.DebugContext(ctx, "Content is loaded",
		"url", rawURL,
		"sourceKind", kind.String(),
		"documentsCount", len(docs))

	return docs, nil
}

func hasContent(docs []domain.Document) bool {
	for _, doc := range docs {
		if !doc.IsBlank() {
			return true
		}
	}

	return false
}
