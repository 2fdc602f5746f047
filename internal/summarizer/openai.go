package summarizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAICompleter talks to any OpenAI-compatible chat completion API.
// The client is built per call because the credential belongs to the caller.
type OpenAICompleter struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOpenAICompleter(baseURL string, model string, httpClient *http.Client) *OpenAICompleter {
	return &OpenAICompleter{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}
}

func (c *OpenAICompleter) Model() string {
	return c.model
}

func (c *OpenAICompleter) Complete(
	ctx context.Context,
	credential string,
	prompt string,
) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	if c.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(c.httpClient))
	}

	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("do request (status = %d): %w", apiErr.StatusCode, err)
		}

		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response has no choices (model = %s)", resp.Model)
	}

	return resp.Choices[0].Message.Content, nil
}
