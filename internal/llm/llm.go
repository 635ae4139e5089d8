package llm

import (
	"context"
	"unicode"
	"unicode/utf8"
)

// ProviderName identifies a supported text-generation service.
type ProviderName string

const (
	ProviderGemini ProviderName = "gemini"
	ProviderGroq   ProviderName = "groq"
)

// DefaultProvider is used when no provider has been chosen yet.
const DefaultProvider = ProviderGemini

// Known reports whether p is one of the supported providers.
func (p ProviderName) Known() bool {
	switch p {
	case ProviderGemini, ProviderGroq:
		return true
	default:
		return false
	}
}

// DisplayName is the human-facing label used in error messages.
func (p ProviderName) DisplayName() string {
	switch p {
	case ProviderGemini:
		return "Gemini"
	case ProviderGroq:
		return "Groq"
	default:
		if p == "" {
			return "AI"
		}
		r, size := utf8.DecodeRuneInString(string(p))
		return string(unicode.ToUpper(r)) + string(p[size:])
	}
}

// Provider sends one prompt to a remote service and returns the generated text.
// Implementations make a single attempt per call.
type Provider interface {
	Name() ProviderName
	Call(ctx context.Context, prompt, credential string) (string, error)
}
