package complete

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sells-group/leadscout/internal/resilience"
)

// OpenAICompleter generates qualifications with OpenAI chat completions.
// The JSON response format keeps the model from wrapping output in prose.
type OpenAICompleter struct {
	client    *openai.Client
	model     string
	maxTokens int
	retry     resilience.RetryConfig
}

// NewOpenAI returns a completer using the given API key and model.
func NewOpenAI(apiKey, model string, maxTokens int) *OpenAICompleter {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("openai", "complete")
	return &OpenAICompleter{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
		retry:     cfg,
	}
}

func (c *OpenAICompleter) Name() string {
	return "openai"
}

func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return resp, classifyOpenAIError(err)
		}
		return resp, nil
	})
	if err != nil {
		return "", eris.Wrap(err, "complete: openai chat completion")
	}

	if len(resp.Choices) == 0 {
		return "", eris.New("complete: openai returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", eris.New("complete: openai returned empty response")
	}
	return text, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.HTTPStatusCode) {
		return resilience.NewTransientError(err, apiErr.HTTPStatusCode)
	}
	if resilience.IsTimeout(err) {
		return resilience.NewTransientError(err, 0)
	}
	return err
}
