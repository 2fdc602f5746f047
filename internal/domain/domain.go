package domain

import "strings"

// Document metadata keys.
const (
	MetaSource   = "source"
	MetaTitle    = "title"
	MetaVideoID  = "video_id"
	MetaLanguage = "language"
)

// SourceKind tells which loading strategy serves a URL.
type SourceKind int

const (
	SourceWeb SourceKind = iota
	SourceVideo
)

func (k SourceKind) String() string {
	switch k {
	case SourceVideo:
		return "video"
	default:
		return "web"
	}
}

// Document is a unit of loaded text with its source metadata.
type Document struct {
	Text     string
	Metadata map[string]string
}

func NewDocument(text string, source string) Document {
	return Document{
		Text:     text,
		Metadata: map[string]string{MetaSource: source},
	}
}

func (d Document) Source() string {
	return d.Metadata[MetaSource]
}

func (d Document) IsBlank() bool {
	return strings.TrimSpace(d.Text) == ""
}
