package embed

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sells-group/leadscout/internal/resilience"
)

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAI returns an embedder for the given model and output dimensions.
func NewOpenAI(apiKey, model string, dimensions int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
	}
}

func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed requests one vector per input text in a single API call,
// retrying on transient failures.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("openai", "embeddings")

	resp, err := resilience.DoVal(ctx, cfg,
		func(ctx context.Context) (openai.EmbeddingResponse, error) {
			resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
				Input:      texts,
				Model:      openai.EmbeddingModel(e.model),
				Dimensions: e.dimensions,
			})
			if err != nil {
				return resp, classifyOpenAIError(err)
			}
			return resp, nil
		})
	if err != nil {
		return nil, eris.Wrap(err, "embed: create embeddings")
	}

	if len(resp.Data) != len(texts) {
		return nil, eris.Errorf("embed: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, eris.Errorf("embed: vector index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// classifyOpenAIError marks rate-limit and server errors as transient so
// the retry loop handles them.
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
