package loader

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"urlsummarizer/internal/domain"
)

const (
	youTubeBaseURL             = "https://www.youtube.com"
	playerResponseMarker       = "ytInitialPlayerResponse = "
	maxWatchPageBytes    int64 = 6 * 1024 * 1024
	maxTimedTextBytes    int64 = 2 * 1024 * 1024
	autoGeneratedKind          = "asr"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	VideoDetails struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	} `json:"videoDetails"`
}

type timedTextLine struct {
	Text string `xml:",chardata"`
}

// timedText covers both the legacy <transcript><text> layout and the
// format 3 <timedtext><body><p> layout.
type timedText struct {
	Lines []timedTextLine `xml:"text"`
	Body  struct {
		Paragraphs []timedTextLine `xml:"p"`
	} `xml:"body"`
}

// YouTubeLoader loads video transcripts from caption tracks advertised on
// the watch page.
type YouTubeLoader struct {
	client    *http.Client
	baseURL   string
	languages []string
	log       *slog.Logger
}

func NewYouTubeLoader(client *http.Client, languages []string, log *slog.Logger) *YouTubeLoader {
	return &YouTubeLoader{
		client:    client,
		baseURL:   youTubeBaseURL,
		languages: languages,
		log:       log,
	}
}

// WithBaseURL points the loader at a different watch page host.
func (l *YouTubeLoader) WithBaseURL(baseURL string) *YouTubeLoader {
	l.baseURL = strings.TrimSuffix(baseURL, "/")
	return l
}

// VideoID extracts the video identifier from the common YouTube URL shapes.
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	var id string
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch {
	case normalizeHost(u.Hostname()) == "youtu.be":
		id = parts[0]
	case u.Query().Get("v") != "":
		id = u.Query().Get("v")
	case len(parts) >= 2:
		switch parts[0] {
		case "shorts", "embed", "live", "v":
			id = parts[1]
		}
	}

	if !videoIDRe.MatchString(id) {
		return "", fmt.Errorf("video ID is not found (URL = %s)", rawURL)
	}

	return id, nil
}

func (l *YouTubeLoader) LoadTranscript(ctx context.Context, rawURL string) ([]domain.Document, error) {
	videoID, err := VideoID(rawURL)
	if err != nil {
		return nil, err
	}

	player, err := l.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch player response: %w", err)
	}

	if player.Captions == nil || len(player.Captions.Renderer.CaptionTracks) == 0 {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrTranscriptUnavailable, player.PlayabilityStatus.Reason)
		}

		return nil, ErrTranscriptUnavailable
	}

	track := pickBestTrack(player.Captions.Renderer.CaptionTracks, l.languages)

	text, err := l.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch timed text: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: caption track is empty", ErrTranscriptUnavailable)
	}

	l.log.DebugContext(ctx, "Transcript is loaded",
		"videoID", videoID,
		"language", track.LanguageCode,
		"autoGenerated", track.Kind == autoGeneratedKind,
		"textLen", len(text))

	doc := domain.NewDocument(text, rawURL)
	doc.Metadata[domain.MetaVideoID] = videoID
	doc.Metadata[domain.MetaLanguage] = track.LanguageCode
	if title := strings.TrimSpace(player.VideoDetails.Title); title != "" {
		doc.Metadata[domain.MetaTitle] = title
	}

	return []domain.Document{doc}, nil
}

func (l *YouTubeLoader) fetchPlayerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	watchURL := l.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	body, err := l.get(ctx, watchURL, maxWatchPageBytes)
	if err != nil {
		return nil, err
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return nil, fmt.Errorf("%w: player response is not found", ErrTranscriptUnavailable)
	}

	raw := extractJSONObject(body[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("player response is truncated")
	}

	var player playerResponse
	if err = json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}

	return &player, nil
}

func (l *YouTubeLoader) fetchTimedText(ctx context.Context, trackURL string) (string, error) {
	body, err := l.get(ctx, trackURL, maxTimedTextBytes)
	if err != nil {
		return "", err
	}

	var tt timedText
	if err = xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("decode timed text: %w", err)
	}

	lines := tt.Lines
	if len(lines) == 0 {
		lines = tt.Body.Paragraphs
	}

	var b strings.Builder
	for _, line := range lines {
		// Caption payloads are HTML-escaped inside the XML text.
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}

	return b.String(), nil
}

func (l *YouTubeLoader) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			l.log.WarnContext(ctx, "Failed to close response body",
				"error", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first track.
func pickBestTrack(tracks []captionTrack, languages []string) captionTrack {
	for _, lang := range languages {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != autoGeneratedKind {
				return t
			}
		}
	}

	for _, lang := range languages {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t
			}
		}
	}

	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}

	return tracks[0]
}

// extractJSONObject returns the leading balanced JSON object of data.
func extractJSONObject(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	depth := 0
	inString := false
	escaped := false

	for i, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return data[:i+1]
			}
		}
	}

	return nil
}
