package pipeline_test

import (
	"testing"
	"urlsummarizer/internal/pipeline"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		url        string
		wantKind   pipeline.Kind
		wantOK     bool
	}{
		{"valid", "valid-key", "https://example.com/article", 0, true},
		{"valid http with port", "valid-key", "http://localhost:8080/x", 0, true},
		{"valid IP", "valid-key", "http://127.0.0.1/x", 0, true},
		{"fully qualified host", "valid-key", "https://example.com./", 0, true},
		{"empty credential", "", "https://example.com", pipeline.KindMissingCredential, false},
		{"blank credential", "   ", "https://example.com", pipeline.KindMissingCredential, false},
		{"empty credential and URL", "", "", pipeline.KindMissingCredential, false},
		{"empty URL", "valid-key", "", pipeline.KindMissingURL, false},
		{"blank URL", "valid-key", " \t", pipeline.KindMissingURL, false},
		{"sentence", "valid-key", "not a url", pipeline.KindMalformedURL, false},
		{"dashed word", "valid-key", "not-a-url", pipeline.KindMalformedURL, false},
		{"no scheme", "valid-key", "example.com/article", pipeline.KindMalformedURL, false},
		{"ftp scheme", "valid-key", "ftp://example.com/file", pipeline.KindMalformedURL, false},
		{"no host", "valid-key", "https:///path", pipeline.KindMalformedURL, false},
		{"single label host", "valid-key", "https://example", pipeline.KindMalformedURL, false},
		{"double trailing dot", "valid-key", "https://example.com../", pipeline.KindMalformedURL, false},
		{"empty label", "valid-key", "https://example..com/", pipeline.KindMalformedURL, false},
		{"space in host", "valid-key", "https://exa mple.com", pipeline.KindMalformedURL, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := pipeline.Validate(test.credential, test.url)
			if test.wantOK {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			assert.Equal(t, test.wantKind, pipeline.KindOf(err))
			assert.True(t, pipeline.KindOf(err).IsValidation())
		})
	}
}
