// Package enrich asks a generative model to guess company facts from a
// company name. Results are heuristic and never written to the store by
// this package; the caller applies them through the normal update path if
// it wants to.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Kind classifies why a suggestion could not be produced.
type Kind string

const (
	// KindUnavailable: no model is configured (missing API key).
	KindUnavailable Kind = "unavailable"
	// KindParseFailure: the model answered but not in the expected shape.
	KindParseFailure Kind = "parse_failure"
	// KindProviderError: the model call itself failed (timeout, rejection).
	KindProviderError Kind = "provider_error"
)

// GatewayError is returned by Suggest instead of a Suggestion. It is not
// fatal to any create/update flow; callers surface Reason and move on.
type GatewayError struct {
	Kind   Kind
	Reason string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("enrichment %s: %s", e.Kind, e.Reason)
}

// Suggestion carries the fields the model guessed. Every field is
// independently optional and none is authoritative.
type Suggestion struct {
	Industry   *string `json:"industry"`
	JobType    *string `json:"job_type"`
	Location   *string `json:"location"`
	Salary     *string `json:"salary"`
	WebsiteURL *string `json:"website_url"`
}

// textGenerator is the one capability the gateway needs from a provider.
type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway wraps a text generator with the company-info prompt, a per-call
// timeout and response-shape normalization. The zero provider (nil) means
// the capability is unavailable, not broken.
type Gateway struct {
	gen     textGenerator
	timeout time.Duration
	log     *slog.Logger
}

// NewGateway builds a Gateway backed by the Gemini API. An empty apiKey
// yields a gateway whose Suggest always reports Unavailable, so the rest
// of the service runs without AI configured.
func NewGateway(ctx context.Context, apiKey, model string, timeout time.Duration, log *slog.Logger) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}
	g := &Gateway{timeout: timeout, log: log.With("cmp", "enrich")}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	g.gen = &geminiGenerator{client: client, model: model}
	return g, nil
}

// NewGatewayWithGenerator is for tests and alternative providers.
func NewGatewayWithGenerator(gen textGenerator, timeout time.Duration, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{gen: gen, timeout: timeout, log: log.With("cmp", "enrich")}
}

func (g *Gateway) Available() bool { return g.gen != nil }

// Suggest asks the model about companyName. It holds no store state and
// is bounded by the gateway timeout; a timed-out or failed call maps to a
// ProviderError, an unparseable answer to a ParseFailure.
func (g *Gateway) Suggest(ctx context.Context, companyName string) (*Suggestion, error) {
	if g.gen == nil {
		return nil, &GatewayError{
			Kind:   KindUnavailable,
			Reason: "AI service is not configured; set GEMINI_API_KEY",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.gen.Generate(ctx, buildPrompt(companyName))
	if err != nil {
		g.log.Warn("enrich_provider_error", "company_name", companyName, "err", err)
		return nil, &GatewayError{Kind: KindProviderError, Reason: err.Error()}
	}

	s, err := parseSuggestion(raw)
	if err != nil {
		g.log.Warn("enrich_parse_failure", "company_name", companyName, "err", err)
		return nil, &GatewayError{Kind: KindParseFailure, Reason: "could not interpret the AI response"}
	}
	return s, nil
}

func buildPrompt(companyName string) string {
	return fmt.Sprintf(`You are helping a job-hunting student research an employer.
For the company below, answer with a single JSON object and nothing else
(no code fences, no commentary):

{
  "industry": "main industry, e.g. IT/software, finance, manufacturing",
  "job_type": "typical entry-level role, e.g. engineer, sales, consultant",
  "location": "main office location(s)",
  "salary": "approximate starting salary, e.g. ¥250,000/month",
  "website_url": "official website URL if you can infer it"
}

Use null for any field you do not know. If the company is not a real one
you recognize, give a reasonable general guess.

Company: %s`, companyName)
}

// parseSuggestion tolerates the object being wrapped in a Markdown code
// fence, which Gemini does even when told not to.
func parseSuggestion(raw string) (*Suggestion, error) {
	text := strings.TrimSpace(raw)
	if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
		text = strings.TrimPrefix(text, "json")
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
		text = strings.TrimSpace(text)
	}

	// Extra keys are ignored; anything that is not a JSON object with
	// string-or-null values for the known keys fails to decode.
	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("decode suggestion: %w", err)
	}
	return &s, nil
}

// geminiGenerator adapts the genai client to textGenerator.
type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (p *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from %s", p.model)
	}
	return text, nil
}
