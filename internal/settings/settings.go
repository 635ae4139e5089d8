package settings

import (
	"context"
	"errors"
	"fmt"

	"halo-summarizer/internal/llm"
)

// Settings are the user's provider choice and API keys.
type Settings struct {
	Provider     llm.ProviderName `json:"aiProvider"`
	GeminiAPIKey string           `json:"geminiApiKey"`
	GroqAPIKey   string           `json:"groqApiKey"`
}

// Store persists Settings. Get returns Defaults when nothing has been saved.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
	Close() error
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid settings")

// Defaults is what an empty store reports.
func Defaults() Settings {
	return Settings{Provider: llm.DefaultProvider}
}

// Credential returns the key configured for provider, or "".
func (s Settings) Credential(provider llm.ProviderName) string {
	switch provider {
	case llm.ProviderGemini:
		return s.GeminiAPIKey
	case llm.ProviderGroq:
		return s.GroqAPIKey
	default:
		return ""
	}
}

// Validate requires a known provider with a non-empty key.
func (s Settings) Validate() error {
	if !s.Provider.Known() {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalid, s.Provider)
	}
	if s.Credential(s.Provider) == "" {
		return fmt.Errorf("%w: Please enter a %s API key", ErrInvalid, s.Provider.DisplayName())
	}
	return nil
}

func (s Settings) withDefaults() Settings {
	if s.Provider == "" {
		s.Provider = llm.DefaultProvider
	}
	return s
}

// Seed saves initial if the store holds no key yet. It reports whether it wrote.
func Seed(ctx context.Context, st Store, initial Settings) (bool, error) {
	if initial.GeminiAPIKey == "" && initial.GroqAPIKey == "" {
		return false, nil
	}
	current, err := st.Get(ctx)
	if err != nil {
		return false, err
	}
	if current.GeminiAPIKey != "" || current.GroqAPIKey != "" {
		return false, nil
	}
	initial = initial.withDefaults()
	if err := st.Save(ctx, initial); err != nil {
		return false, err
	}
	return true, nil
}
