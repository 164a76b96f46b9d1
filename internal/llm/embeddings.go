package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"assistant-ai/internal/contextutil"
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL string
	APIKey  string
	Model   string

	attempts uint
	delay    time.Duration
	client   *http.Client
}

// EmbeddingsOption configures an EmbeddingsClient.
type EmbeddingsOption func(*EmbeddingsClient)

// WithRetry sets the total number of attempts and the delay between them.
// Only transient failures are retried.
func WithRetry(attempts uint, delay time.Duration) EmbeddingsOption {
	return func(c *EmbeddingsClient) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.delay = delay
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) EmbeddingsOption {
	return func(c *EmbeddingsClient) {
		c.client = client
	}
}

// NewEmbeddingsClient creates a new embeddings client.
func NewEmbeddingsClient(baseURL, apiKey, model string, opts ...EmbeddingsOption) *EmbeddingsClient {
	c := &EmbeddingsClient{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Model:    model,
		attempts: 1,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithModel returns a copy of the client that embeds with model.
func (c *EmbeddingsClient) WithModel(model string) *EmbeddingsClient {
	clone := *c
	clone.Model = model
	return &clone
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts.
// Returns a slice of float32 vectors, one per input text, all of the same size.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	payload := EmbeddingsRequest{
		Model: c.Model,
		Input: texts,
	}

	embeddingsResp, err := retry.DoWithData(
		func() (EmbeddingsResponse, error) {
			var resp EmbeddingsResponse
			err := postJSON(ctx, c.client, c.BaseURL+"/v1/embeddings", c.APIKey, payload, &resp)
			return resp, err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsTransient),
		retry.OnRetry(func(n uint, err error) {
			logger.WarnContext(ctx, "retrying embeddings request", "attempt", n+1, "model", c.Model, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to embed texts: %w", err)
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	// Convert []float64 to []float32 and check every vector has the same size
	result := make([][]float32, len(embeddingsResp.Data))
	size := len(embeddingsResp.Data[0].Embedding)
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) == 0 || len(data.Embedding) != size {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), size)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}
