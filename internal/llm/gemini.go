package llm

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-2.0-flash"

	geminiTextPath = "candidates.0.content.parts.0.text"
)

// GeminiClient calls the Gemini generateContent endpoint. The credential
// travels as the "key" query parameter.
type GeminiClient struct {
	baseURL string
	model   string
	http    *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// NewGeminiClient builds a client; empty arguments fall back to defaults.
func NewGeminiClient(baseURL, model string, httpClient *http.Client) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    httpClient,
	}
}

func (c *GeminiClient) Name() ProviderName { return ProviderGemini }

func (c *GeminiClient) Call(ctx context.Context, prompt, credential string) (string, error) {
	endpoint := c.baseURL + "/models/" + url.PathEscape(c.model) + ":generateContent?key=" + url.QueryEscape(credential)
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	body, err := postJSON(ctx, c.http, ProviderGemini, endpoint, payload)
	if err != nil {
		return "", err
	}
	return extractText(ProviderGemini, body, geminiTextPath)
}
