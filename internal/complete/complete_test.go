package complete

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/anthropic"
)

// fakeAnthropicClient scripts CreateMessage responses.
type fakeAnthropicClient struct {
	responses []*anthropic.MessageResponse
	errs      []error
	calls     int
	lastReq   anthropic.MessageRequest
}

func (f *fakeAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return f.responses[len(f.responses)-1], nil
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func TestAnthropicComplete(t *testing.T) {
	fake := &fakeAnthropicClient{responses: []*anthropic.MessageResponse{textResponse(`{"lead_score":80}`)}}
	c := NewAnthropic(fake, "claude-3-5-sonnet-20241022", 2048)

	out, err := c.Complete(context.Background(), Request{
		System: "You are a lead analyst.",
		Prompt: "Analyze this company.",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"lead_score":80}`, out)

	assert.Equal(t, "claude-3-5-sonnet-20241022", fake.lastReq.Model)
	assert.Equal(t, int64(2048), fake.lastReq.MaxTokens)
	require.Len(t, fake.lastReq.System, 1)
	assert.Equal(t, "You are a lead analyst.", fake.lastReq.System[0].Text)
}

func TestAnthropicCompleteRetriesOverload(t *testing.T) {
	fake := &fakeAnthropicClient{
		errs:      []error{fmt.Errorf("anthropic: 529 overloaded")},
		responses: []*anthropic.MessageResponse{nil, textResponse("recovered")},
	}
	c := NewAnthropic(fake, "claude-3-5-sonnet-20241022", 2048)
	c.retry.InitialBackoff = 1
	c.retry.MaxBackoff = 1

	out, err := c.Complete(context.Background(), Request{Prompt: "go"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 2, fake.calls)
}

func TestAnthropicCompleteEmptyResponse(t *testing.T) {
	fake := &fakeAnthropicClient{responses: []*anthropic.MessageResponse{textResponse("  ")}}
	c := NewAnthropic(fake, "claude-3-5-sonnet-20241022", 2048)

	_, err := c.Complete(context.Background(), Request{Prompt: "go"})
	require.Error(t, err)
}

func TestOfflineCompleteDeterministic(t *testing.T) {
	c := NewOffline()
	req := Request{
		Prompt: "# TechFlow Solutions\nsome scraped content",
		URL:    "https://techflow.example",
	}

	first, err := c.Complete(context.Background(), req)
	require.NoError(t, err)
	second, err := c.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOfflineCompleteShape(t *testing.T) {
	c := NewOffline()

	out, err := c.Complete(context.Background(), Request{
		Prompt: "# Acme Widgets\ncontent",
		URL:    "https://acme.example",
	})
	require.NoError(t, err)

	var q model.Qualification
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	require.NoError(t, q.Validate())

	assert.GreaterOrEqual(t, q.LeadScore, 45)
	assert.LessOrEqual(t, q.LeadScore, 94)
	assert.Equal(t, "Acme Widgets", q.CompanyName)
	assert.NotEmpty(t, q.Industry)
	assert.NotEmpty(t, q.PersonalizedEmail)
	assert.NotEmpty(t, q.SMSDraft)

	// Action is consistent with the score thresholds.
	switch {
	case q.LeadScore >= model.QualifiedScore:
		assert.Equal(t, string(model.ActionQualified), q.RecommendedAction)
	case q.LeadScore >= model.WarmScore:
		assert.Equal(t, string(model.ActionFurtherResearch), q.RecommendedAction)
	default:
		assert.Equal(t, string(model.ActionDisqualified), q.RecommendedAction)
	}
}

func TestOfflineCompleteFallbackCompanyName(t *testing.T) {
	c := NewOffline()

	out, err := c.Complete(context.Background(), Request{
		Prompt: "no heading here",
		URL:    "https://nameless.example",
	})
	require.NoError(t, err)

	var q model.Qualification
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, "Test Company", q.CompanyName)
}

func TestOfflineScoresVaryAcrossURLs(t *testing.T) {
	c := NewOffline()
	scores := map[int]bool{}
	for i := 0; i < 20; i++ {
		out, err := c.Complete(context.Background(), Request{
			Prompt: "# X\ncontent",
			URL:    fmt.Sprintf("https://site-%d.example", i),
		})
		require.NoError(t, err)
		var q model.Qualification
		require.NoError(t, json.Unmarshal([]byte(out), &q))
		scores[q.LeadScore] = true
	}
	assert.Greater(t, len(scores), 3, "scores vary across URLs")
}
