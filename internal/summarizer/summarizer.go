package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"urlsummarizer/internal/domain"
)

const (
	PromptTemplate     = "Summarize the following content in a concise manner:\n\n{content}"
	contentPlaceholder = "{content}"
	documentSeparator  = "\n\n"
)

// Completer sends one prompt to an LLM and returns the raw response text.
type Completer interface {
	Complete(ctx context.Context, credential string, prompt string) (string, error)
}

// Error is returned by Summarize for every summarization failure.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarize: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Summarizer stuffs all documents into a single prompt and asks the
// completer once.
type Summarizer struct {
	completer Completer
	log       *slog.Logger
}

func New(completer Completer, log *slog.Logger) *Summarizer {
	return &Summarizer{
		completer: completer,
		log:       log,
	}
}

// BuildPrompt embeds the text of every document into PromptTemplate.
func BuildPrompt(docs []domain.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if text := strings.TrimSpace(doc.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Replace(PromptTemplate, contentPlaceholder, strings.Join(parts, documentSeparator), 1)
}

func (s *Summarizer) Summarize(
	ctx context.Context,
	docs []domain.Document,
	credential string,
) (string, error) {
	prompt := BuildPrompt(docs)

	s.log.DebugContext(ctx, "Requesting summary",
		"documentsCount", len(docs),
		"promptLen", len(prompt))

	summary, err := s.completer.Complete(ctx, credential, prompt)
	if err != nil {
		return "", &Error{Err: err}
	}

	return summary, nil
}
