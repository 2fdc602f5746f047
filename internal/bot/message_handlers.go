package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"urlsummarizer/internal/markdown"
	"urlsummarizer/internal/pipeline"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = `🤖 *Welcome to URL Summarizer\!*

Send me a link to a web page or a YouTube video and I will reply with a concise summary of its content\.`

const summaryHeader = "📝 *Summary*\n\n"

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.sendMessage(chatID, welcomeText)
	default:
		return b.withSpinner(ctx, chatID, func() error {
			return b.handleSummarize(ctx, text, chatID)
		})
	}
}

func (b *Bot) handleSummarize(ctx context.Context, text string, chatID int64) error {
	rawURL := b.findURL(text)
	start := time.Now()

	res, err := b.runner.Run(ctx, pipeline.Request{
		Credential: b.credential,
		URL:        rawURL,
	})
	out := pipeline.Present(res, err)

	if out.Failed {
		pipeline.LogFailure(ctx, b.log, err, time.Since(start),
			"chatID", chatID)
	} else {
		b.log.InfoContext(ctx, "Summary is produced",
			"chatID", chatID,
			"sourceKind", res.Kind.String(),
			"summaryLen", len(res.Summary),
			"durationSeconds", time.Since(start).Seconds())
	}

	switch {
	case out.Warning != "":
		return b.sendMessage(chatID, "⚠️ "+markdown.EscapeV2(out.Warning))
	case out.Error != "":
		return b.sendMessage(chatID, "❌ "+markdown.EscapeV2(out.Error))
	default:
		return b.sendSummary(chatID, out.Summary)
	}
}

// findURL returns the first http(s) URL in text, or the trimmed text
// itself so validation can report what is wrong with it.
func (b *Bot) findURL(text string) string {
	if found := b.urlRe.FindString(text); found != "" {
		return found
	}

	return strings.TrimSpace(text)
}

func (b *Bot) sendSummary(chatID int64, summary string) error {
	chunks := markdown.Split(strings.TrimSpace(summary), summaryChunkBytes)
	if len(chunks) == 0 {
		return b.sendMessage(chatID, "❌ "+markdown.EscapeV2("The summary is empty."))
	}

	var errs []error

	for i, chunk := range chunks {
		text := markdown.EscapeV2(chunk)
		if i == 0 {
			text = summaryHeader + text
		}

		if err := b.sendMessage(chatID, text); err != nil {
			errs = append(errs, fmt.Errorf("send summary chunk %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
