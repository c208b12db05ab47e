package complete

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/resilience"
	"github.com/sells-group/leadscout/pkg/anthropic"
)

// AnthropicCompleter generates qualifications with the Anthropic API.
type AnthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// NewAnthropic returns a completer using the given client and model.
func NewAnthropic(client anthropic.Client, model string, maxTokens int) *AnthropicCompleter {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("anthropic", "complete")
	return &AnthropicCompleter{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
		retry:     cfg,
	}
}

func (c *AnthropicCompleter) Name() string {
	return "anthropic"
}

func (c *AnthropicCompleter) Complete(ctx context.Context, req Request) (string, error) {
	msgReq := anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(req.System),
		Messages:  []anthropic.Message{{Role: "user", Content: req.Prompt}},
	}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		resp, err := c.client.CreateMessage(ctx, msgReq)
		if err != nil {
			if resilience.IsTimeout(err) || isTransientAPIError(err) {
				return nil, resilience.NewTransientError(err, 0)
			}
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", eris.Wrap(err, "complete: anthropic message")
	}

	resp.Usage.LogCost(c.model, "analysis")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("complete: anthropic returned empty response")
	}
	return text, nil
}

// isTransientAPIError spots rate-limit and overload responses from the
// SDK's error strings.
func isTransientAPIError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range []string{"429", "rate limit", "overloaded", "500", "502", "503", "529"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
