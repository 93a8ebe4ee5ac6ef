package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedClient wraps a GraphAIClient and gates every provider call
// behind a shared calls-per-minute limiter, so the concurrency budget of
// the pipeline can never push the provider past its rate limit.
type RateLimitedClient struct {
	inner   GraphAIClient
	limiter *rate.Limiter
}

// NewRateLimitedClient wraps inner with a limiter allowing
// callsPerMinute requests per minute (burst 1). A non-positive value
// disables limiting.
func NewRateLimitedClient(inner GraphAIClient, callsPerMinute int) *RateLimitedClient {
	var limiter *rate.Limiter
	if callsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMinute)), 1)
	}
	return &RateLimitedClient{inner: inner, limiter: limiter}
}

func (c *RateLimitedClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *RateLimitedClient) GenerateCompletion(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	return c.inner.GenerateCompletion(ctx, prompt, opts...)
}

func (c *RateLimitedClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...GenerateOption,
) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.inner.GenerateCompletionWithFormat(ctx, name, description, prompt, out, opts...)
}

func (c *RateLimitedClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.GenerateEmbedding(ctx, input)
}

func (c *RateLimitedClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.GenerateEmbeddings(ctx, inputs)
}

func (c *RateLimitedClient) ResetMetrics() {
	c.inner.ResetMetrics()
}

func (c *RateLimitedClient) GetMetrics() ModelMetrics {
	return c.inner.GetMetrics()
}
