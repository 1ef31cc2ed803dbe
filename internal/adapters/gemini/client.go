// Package gemini is the completion client backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/xyd945/travel-ai-agent/internal/adapters/observability"
	"github.com/xyd945/travel-ai-agent/internal/domain"
)

const (
	DefaultModel = "gemini-1.5-flash"
	service      = "gemini"
	endpoint     = "generateContent"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string       // optional, overrides the public endpoint
	HTTP    *http.Client // optional
}

type Client struct {
	ai    *genai.Client
	model string
	gen   *genai.GenerateContentConfig
}

// New builds the client. Without a key it still succeeds, but every
// Complete call returns domain.ErrMissingCredential.
func New(ctx context.Context, cfg Config) (*Client, error) {
	c := &Client{
		model: cfg.Model,
		gen: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.7),
			TopK:            genai.Ptr[float32](40),
			TopP:            genai.Ptr[float32](0.95),
			MaxOutputTokens: 2048,
		},
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTP,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	ai, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	c.ai = ai
	return c, nil
}

// Complete sends one non-streaming generation request and returns the text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.ai == nil {
		return "", domain.ErrMissingCredential
	}

	ctx, span := otel.Tracer("github.com/xyd945/travel-ai-agent/internal/adapters/gemini").Start(ctx, "gemini.Complete", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", c.model),
	))
	defer span.End()

	start := time.Now()
	resp, err := c.ai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.gen)
	if err != nil {
		err = classify(ctx, err)
		observability.ObserveExternal(service, endpoint, statusOf(err), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", err
	}
	observability.ObserveExternal(service, endpoint, http.StatusOK, time.Since(start))

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		err := &domain.UpstreamError{Service: service, Status: http.StatusBadGateway, Message: "completion has no text"}
		span.SetStatus(codes.Error, err.Message)
		return "", err
	}
	span.SetAttributes(attribute.Int("completion.length", len(text)))
	return text, nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{Service: service, Status: apiErr.Code, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &domain.UpstreamError{Service: service, Status: apiErrPtr.Code, Message: apiErrPtr.Message}
	}
	return &domain.NetworkError{Service: service, Err: err}
}

func statusOf(err error) int {
	var up *domain.UpstreamError
	if errors.As(err, &up) {
		return up.Status
	}
	return 0
}
