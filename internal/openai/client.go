// Package openai provides a thin wrapper around the official OpenAI Go SDK
// for query embeddings and generative recommendation summaries.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"golang.org/x/time/rate"

	"github.com/bookfinder/recommender/internal/models"
)

var (
	// ErrEmptyInput is returned when CreateEmbedding is called with empty input.
	ErrEmptyInput = errors.New("openai: input text is empty")
	// ErrInvalidDims is returned when dimensions is not positive.
	ErrInvalidDims = errors.New("openai: embedding dimensions must be positive")
	// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
	ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")
	// ErrDimensionMismatch is returned when the response embedding length does not match configured dimensions.
	ErrDimensionMismatch = errors.New("openai: embedding dimension mismatch")
	// ErrNoCompletionInResponse is returned when a chat response contains no choices.
	ErrNoCompletionInResponse = errors.New("openai: no completion in response")
)

const (
	defaultDimension      = 1536
	defaultEmbeddingModel = string(openaisdk.EmbeddingModelTextEmbedding3Small)
	defaultSummaryModel   = openaisdk.ChatModelGPT4oMini
	defaultSummaryTimeout = 10 * time.Second

	summaryTemperature = 0.7
	summaryMaxTokens   = 160
)

// Client calls the OpenAI embeddings and chat completions APIs via the
// official SDK.
type Client struct {
	sdk            openaisdk.Client
	embeddingModel string
	summaryModel   string
	dimensions     int
	summaryTimeout time.Duration
	limiter        *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithDimensions sets the requested embedding dimension (must match the
// precomputed catalog embeddings).
func WithDimensions(dim int) ClientOption {
	return func(c *Client) {
		c.dimensions = dim
	}
}

// WithEmbeddingModel sets the embedding model name. Empty uses the default.
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.embeddingModel = model
		}
	}
}

// WithSummaryModel sets the chat model for generative summaries. Empty uses the default.
func WithSummaryModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.summaryModel = model
		}
	}
}

// WithSummaryTimeout bounds each generative summary call. A slow provider
// must not stall recommendation serving.
func WithSummaryTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.summaryTimeout = timeout
		}
	}
}

// WithRateLimiter throttles outbound API calls. Nil disables throttling.
func WithRateLimiter(limiter *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient creates an OpenAI client using the official SDK.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		sdk:            openaisdk.NewClient(option.WithAPIKey(apiKey)),
		embeddingModel: defaultEmbeddingModel,
		summaryModel:   defaultSummaryModel,
		dimensions:     defaultDimension,
		summaryTimeout: defaultSummaryTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// CreateEmbedding returns the embedding vector for the given text.
// The returned slice length equals the configured dimensions.
func (c *Client) CreateEmbedding(ctx context.Context, input string) ([]float32, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}

	if c.dimensions <= 0 {
		return nil, ErrInvalidDims
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(input),
		},
		Model:      openaisdk.EmbeddingModel(c.embeddingModel),
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	if len(emb) != c.dimensions {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb), c.dimensions)
	}

	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}

// GenerateSummary issues one bounded chat completion asking why the book fits
// the query. No retries: callers treat any error as "tier unavailable" and
// fall back to the deterministic template.
func (c *Client) GenerateSummary(ctx context.Context, query string, book models.Book) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.summaryTimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.summaryModel),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(
				"You explain book recommendations. Write exactly 2 sentences in second person " +
					"linking specific themes from the synopsis to the reader's query. " +
					"Do not summarize the plot. Do not use the word 'delve'."),
			openaisdk.UserMessage(summaryPrompt(query, book)),
		},
		Temperature:         param.NewOpt(summaryTemperature),
		MaxCompletionTokens: param.NewOpt(int64(summaryMaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai summary: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletionInResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func summaryPrompt(query string, book models.Book) string {
	var b strings.Builder

	b.WriteString("Reader's query: " + query + "\n")
	b.WriteString("Book title: " + book.Title + "\n")

	if len(book.Authors) > 0 {
		b.WriteString("Author(s): " + strings.Join(book.Authors, ", ") + "\n")
	}

	if book.Description != "" {
		b.WriteString("Synopsis: " + book.Description + "\n")
	}

	b.WriteString("Explain why this book matches the query.")

	return b.String()
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("openai rate limit: %w", err)
	}

	return nil
}
