package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"
	"urlsummarizer/internal/pipeline"

	"github.com/gorilla/mux"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	maxFormBytes      = 64 * 1024
)

//go:embed templates/*.html
var templatesFS embed.FS

// Runner executes one summarization run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

type Server struct {
	runner Runner
	page   *template.Template
	router *mux.Router
	log    *slog.Logger
}

func New(runner Runner, log *slog.Logger) (*Server, error) {
	page, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		runner: runner,
		page:   page,
		router: mux.NewRouter(),
		log:    log,
	}

	s.router.Use(requestIDMiddleware)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleSummarizeForm).Methods(http.MethodPost)
	s.router.HandleFunc("/api/summarize", s.handleSummarizeAPI).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is done and then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// run executes the pipeline on a context that outlives client
// disconnects, since an in-flight run cannot be aborted.
func (s *Server) run(r *http.Request, req pipeline.Request) (pipeline.Result, error) {
	ctx := context.WithoutCancel(r.Context())
	start := time.Now()

	res, err := s.runner.Run(ctx, req)
	if err != nil {
		pipeline.LogFailure(ctx, s.log, err, time.Since(start),
			"requestID", requestID(ctx))
		return res, err
	}

	s.log.InfoContext(ctx, "Summary is produced",
		"requestID", requestID(ctx),
		"sourceKind", res.Kind.String(),
		"documentsCount", res.Documents,
		"summaryLen", len(res.Summary),
		"durationSeconds", time.Since(start).Seconds())

	return res, nil
}
