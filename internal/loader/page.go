package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"urlsummarizer/internal/domain"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const pageAccept = "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5"

var (
	whitespaceRe = regexp.MustCompile(`[ \t\f\r]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)

	chromeSelectors = strings.Join([]string{
		"script", "style", "noscript", "iframe", "svg", "template",
		"header", "footer", "nav", "aside", "form",
		"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}, ", ")
	mainSelectors = "article, main, [role=main], .post-content, .article-content, #content"
)

// HTMLPageLoader fetches a web page and extracts its readable text.
type HTMLPageLoader struct {
	client   *http.Client
	maxBytes int64
	log      *slog.Logger
}

func NewHTMLPageLoader(client *http.Client, maxBytes int64, log *slog.Logger) *HTMLPageLoader {
	return &HTMLPageLoader{
		client:   client,
		maxBytes: maxBytes,
		log:      log,
	}
}

func (l *HTMLPageLoader) LoadPage(ctx context.Context, rawURL string) ([]domain.Document, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", pageAccept)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			l.log.WarnContext(ctx, "Failed to close response body",
				"error", closeErr,
				"url", rawURL)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if int64(len(body)) > l.maxBytes {
		return nil, fmt.Errorf("%w (limit = %d bytes)", ErrContentTooLarge, l.maxBytes)
	}

	mediaType := contentMediaType(resp.Header.Get("Content-Type"), body)

	var title, text string

	switch mediaType {
	case "text/html", "application/xhtml+xml":
		title, text, err = l.extractHTML(ctx, body, pageURL)
		if err != nil {
			return nil, fmt.Errorf("extract HTML: %w", err)
		}
	case "text/plain", "text/markdown":
		text = normalizeText(string(body))
	default:
		return nil, fmt.Errorf("%w (type = %s)", ErrUnsupportedContent, mediaType)
	}

	if text == "" {
		return nil, ErrNoContent
	}

	doc := domain.NewDocument(text, rawURL)
	if title = strings.TrimSpace(title); title != "" {
		doc.Metadata[domain.MetaTitle] = title
	}

	return []domain.Document{doc}, nil
}

func contentMediaType(header string, body []byte) string {
	if header == "" {
		header = http.DetectContentType(body)
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(header, ";")[0]))
	}

	return mediaType
}

// extractHTML runs readability first and falls back to goquery when it
// fails or yields nothing.
func (l *HTMLPageLoader) extractHTML(
	ctx context.Context,
	body []byte,
	pageURL *url.URL,
) (string, string, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		text := articleText(article.Content, article.TextContent)
		if text != "" {
			return article.Title, text, nil
		}
	} else {
		l.log.DebugContext(ctx, "Readability failed so goquery fallback will be used",
			"error", err,
			"url", pageURL.String())
	}

	return extractWithGoquery(body)
}

func articleText(contentHTML string, textContent string) string {
	md, err := htmltomarkdown.ConvertString(contentHTML)
	if err != nil || strings.TrimSpace(md) == "" {
		return normalizeText(textContent)
	}

	return normalizeText(md)
}

func extractWithGoquery(body []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).First().Attr("content")
	}

	doc.Find(chromeSelectors).Remove()

	content := doc.Find(mainSelectors).First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}

	return title, normalizeText(content.Text()), nil
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = whitespaceRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
