package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"urlsummarizer/internal/bot"
	"urlsummarizer/internal/config"
	"urlsummarizer/internal/loader"
	"urlsummarizer/internal/pipeline"
	"urlsummarizer/internal/summarizer"
	"urlsummarizer/internal/web"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config",
			"error", err)

		return
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := initPipeline(cfg, log)
	log.InfoContext(ctx, "Pipeline is initialized",
		"llmBaseURL", cfg.LLMBaseURL,
		"llmModel", cfg.LLMModel,
		"httpClientTimeout", cfg.HTTPClientTimeout.String(),
		"transcriptLanguages", cfg.TranscriptLanguages)

	server, err := web.New(p, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize web server",
			"error", err)

		return
	}

	if botInst := initBot(ctx, cfg, p, log); botInst != nil {
		defer botInst.Stop()

		go botInst.Start(ctx)
		log.InfoContext(ctx, "Bot is started",
			"updateTimeoutSeconds", bot.BotUpdateTimeout,
			"allowedUsersCount", len(cfg.AllowedUsers))
	}

	log.InfoContext(ctx, "Web server is starting",
		"addr", cfg.HTTPAddr)

	if err = server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		log.ErrorContext(ctx, "Web server failed",
			"error", err,
			"addr", cfg.HTTPAddr)

		return
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initPipeline(cfg config.Config, log *slog.Logger) *pipeline.Pipeline {
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}

	dispatcher := loader.NewDispatcher(
		loader.NewYouTubeLoader(httpClient, cfg.TranscriptLanguages, log),
		loader.NewHTMLPageLoader(httpClient, cfg.MaxPageBytes, log),
		log,
	)

	completer := summarizer.NewOpenAICompleter(cfg.LLMBaseURL, cfg.LLMModel, httpClient)

	return pipeline.New(dispatcher, summarizer.New(completer, log), log)
}

func initBot(ctx context.Context, cfg config.Config, p *pipeline.Pipeline, log *slog.Logger) *bot.Bot {
	if !cfg.TelegramEnabled() {
		log.InfoContext(ctx, "TELEGRAM_TOKEN is missing so bot is disabled",
			"envVar", "TELEGRAM_TOKEN")

		return nil
	}

	if cfg.LLMAPIKey == "" {
		log.WarnContext(ctx, "LLM_API_KEY is missing so bot requests will fail validation",
			"envVar", "LLM_API_KEY")
	}

	botInst, err := bot.New(cfg.TelegramToken, p, cfg.LLMAPIKey, cfg.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot so only web server will run",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return nil
	}

	return botInst
}
