package markdown_test

import (
	"strings"
	"testing"
	"unicode/utf8"
	"urlsummarizer/internal/markdown"

	"github.com/stretchr/testify/assert"
)

func TestEscapeV2(t *testing.T) {
	assert.Equal(t, "plain text", markdown.EscapeV2("plain text"))
	assert.Equal(t, `A greeting\.`, markdown.EscapeV2("A greeting."))
	assert.Equal(t, `\*bold\* \[link\]\(x\) a\\b`, markdown.EscapeV2(`*bold* [link](x) a\b`))
}

func TestSplitShortText(t *testing.T) {
	assert.Equal(t, []string{"short"}, markdown.Split("short", 100))
	assert.Nil(t, markdown.Split("", 100))
}

func TestSplitPrefersLineBreaks(t *testing.T) {
	text := "first line\nsecond line\nthird line"

	chunks := markdown.Split(text, 15)

	assert.Equal(t, []string{"first line", "second line", "third line"}, chunks)
}

func TestSplitKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("ж", 10)

	chunks := markdown.Split(text, 5)

	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
		assert.LessOrEqual(t, len(chunk), 5)
	}
}
