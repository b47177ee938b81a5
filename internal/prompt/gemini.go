package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"LiveDraws/internal/config"
	"LiveDraws/internal/tracer"
)

var (
	ErrNotConfigured = errors.New("gemini API key is not configured")
	ErrUnavailable   = errors.New("failed to communicate with the AI model")
)

// Suggester produces a short drawing idea.
type Suggester interface {
	Suggest(ctx context.Context) (string, error)
}

const (
	ideaPrompt = "Give me a simple, fun, and creative drawing idea. Be concise and provide only the idea itself. " +
		"For example: 'A robot drinking coffee on the moon' or 'A dragon knitting a scarf'."
	maxResponseBody = 1 << 20
)

// GeminiClient asks the Gemini generateContent endpoint for drawing ideas.
type GeminiClient struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewGeminiClient(cfg config.PromptConfig, logger *slog.Logger) *GeminiClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GeminiClient{
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Suggest implements Suggester.
func (g *GeminiClient) Suggest(ctx context.Context) (string, error) {
	if g.apiKey == "" {
		return "", ErrNotConfigured
	}

	ctx, span := tracer.StartSpan(ctx, "prompt.suggest",
		trace.WithAttributes(tracer.StringAttr("prompt.model", g.model)),
	)
	defer span.End()

	idea, err := g.generate(ctx)
	if err != nil {
		tracer.RecordError(span, err)
		g.logger.Error("drawing prompt failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	tracer.SetOK(span)
	g.logger.Debug("drawing prompt", "idea", idea)
	return idea, nil
}

func (g *GeminiClient) generate(ctx context.Context) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: ideaPrompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     1,
			TopP:            0.95,
			MaxOutputTokens: 50,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var gr geminiResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	idea := Clean(gr.text())
	if idea == "" {
		return "", errors.New("empty response")
	}
	return idea, nil
}

// Clean trims the model's reply and strips quotes and markdown emphasis.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer(`"`, "", "*", "").Replace(s)
}

// Message is the toast text for a suggestion result.
func Message(idea string, err error) string {
	if err != nil {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Let's draw %q!", idea)
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
