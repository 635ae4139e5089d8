package summary

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"halo-summarizer/internal/llm"
	"halo-summarizer/internal/markdown"
)

// Request is one user-initiated generate action.
type Request struct {
	Text       string
	Style      Style
	Provider   llm.ProviderName
	Credential string
}

// Pipeline validates a request, dispatches it to the matching provider and
// normalizes the generated text. It keeps no state between calls.
type Pipeline struct {
	log       *slog.Logger
	metrics   MetricsRecorder
	providers map[llm.ProviderName]llm.Provider
}

// NewPipeline registers providers by name. A nil recorder disables metrics.
func NewPipeline(log *slog.Logger, metrics MetricsRecorder, providers ...llm.Provider) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	registry := make(map[llm.ProviderName]llm.Provider, len(providers))
	for _, p := range providers {
		registry[p.Name()] = p
	}
	return &Pipeline{log: log, metrics: metrics, providers: registry}
}

// Summarize returns the cleaned summary or a classified error. Input checks
// run before any network activity; provider errors are returned unchanged.
func (p *Pipeline) Summarize(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := p.summarize(ctx, req)
	kind := KindOf(err)
	p.metrics.Observe(metricsLabel(req.Provider), kind, time.Since(start))

	log := p.log.With("provider", req.Provider, "style", req.Style, "duration_ms", time.Since(start).Milliseconds())
	switch kind {
	case KindNone:
		log.Info("summary generated", "chars", utf8.RuneCountInString(out))
	case KindValidation, KindMissingCredential:
		log.Debug("summary rejected", "kind", kind, "err", err)
	default:
		log.Warn("summary failed", "kind", kind, "err", err)
	}
	return out, err
}

func (p *Pipeline) summarize(ctx context.Context, req Request) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", &ValidationError{Reason: "Please paste some text to summarize."}
	}
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", &ValidationError{Reason: "Please provide more text (at least 100 characters) for a meaningful summary."}
	}
	if !req.Style.Valid() {
		return "", &ValidationError{Reason: "Unknown summary style: " + string(req.Style)}
	}
	if strings.TrimSpace(req.Credential) == "" {
		return "", &MissingCredentialError{Provider: req.Provider}
	}

	provider, ok := p.providers[req.Provider]
	if !ok {
		return "", &UnsupportedProviderError{Provider: req.Provider}
	}

	raw, err := provider.Call(ctx, BuildPrompt(req.Style, text), req.Credential)
	if err != nil {
		return "", err
	}
	return markdown.Normalize(raw), nil
}

// metricsLabel keeps the provider label set bounded.
func metricsLabel(name llm.ProviderName) string {
	if !name.Known() {
		return "unknown"
	}
	return string(name)
}
