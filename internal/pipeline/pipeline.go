package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"urlsummarizer/internal/domain"
	"urlsummarizer/internal/loader"
	"urlsummarizer/internal/summarizer"
)

// Stage is a state of a single run.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageLoading
	StageSummarizing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageValidating:
		return "validating"
	case StageLoading:
		return "loading"
	case StageSummarizing:
		return "summarizing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "idle"
	}
}

type ContentLoader interface {
	Load(ctx context.Context, rawURL string) ([]domain.Document, error)
}

type DocumentSummarizer interface {
	Summarize(ctx context.Context, docs []domain.Document, credential string) (string, error)
}

// StageObserver is notified on every stage transition of a run.
type StageObserver func(ctx context.Context, stage Stage)

// Request carries the inputs of one user action. It is never stored.
type Request struct {
	Credential string
	URL        string
}

type Result struct {
	Summary   string
	Source    string
	Kind      domain.SourceKind
	Documents int
}

type Pipeline struct {
	loader     ContentLoader
	summarizer DocumentSummarizer
	observers  []StageObserver
	log        *slog.Logger
}

func New(
	l ContentLoader,
	s DocumentSummarizer,
	log *slog.Logger,
	observers ...StageObserver,
) *Pipeline {
	return &Pipeline{
		loader:     l,
		summarizer: s,
		observers:  observers,
		log:        log,
	}
}

// Run validates the request, loads its content and summarizes it. Every
// failure is returned as *Error and stops the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (res Result, err error) {
	stage := StageIdle

	enter := func(next Stage) {
		stage = next
		p.log.DebugContext(ctx, "Pipeline stage is entered",
			"stage", next.String())

		for _, observe := range p.observers {
			observe(ctx, next)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindUnexpected, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			enter(StageFailed)
		}
	}()

	credential := strings.TrimSpace(req.Credential)
	rawURL := strings.TrimSpace(req.URL)

	enter(StageValidating)
	if err = Validate(credential, rawURL); err != nil {
		return Result{}, err
	}

	enter(StageLoading)
	docs, err := p.loader.Load(ctx, rawURL)
	if err != nil {
		return Result{}, classify(err, StageLoading)
	}

	enter(StageSummarizing)
	summary, err := p.summarizer.Summarize(ctx, docs, credential)
	if err != nil {
		return Result{}, classify(err, StageSummarizing)
	}

	enter(StageDone)

	return Result{
		Summary:   summary,
		Source:    rawURL,
		Kind:      loader.Classify(rawURL),
		Documents: len(docs),
	}, nil
}

func classify(err error, stage Stage) error {
	var (
		loadErr *loader.Error
		sumErr  *summarizer.Error
	)

	switch {
	case errors.As(err, &loadErr):
		return &Error{Kind: KindLoad, Stage: stage, Err: err}
	case errors.As(err, &sumErr):
		return &Error{Kind: KindSummarization, Stage: stage, Err: err}
	default:
		return &Error{Kind: KindUnexpected, Stage: stage, Err: err}
	}
}
