package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"
	DefaultGroqModel   = "llama-3.1-70b-versatile"

	groqTemperature = 0.7
	groqMaxTokens   = 1000
)

// GroqClient calls Groq's OpenAI-compatible Chat Completions API. The key is
// supplied per call, so one client serves whatever the user configured.
type GroqClient struct {
	model  openai.ChatModel
	client *openai.Client
}

// NewGroqClient builds a client; empty arguments fall back to defaults.
func NewGroqClient(baseURL, model string, httpClient *http.Client) *GroqClient {
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	if model == "" {
		model = DefaultGroqModel
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	cli := openai.NewClient(
		option.WithBaseURL(strings.TrimRight(baseURL, "/")),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)
	return &GroqClient{
		model:  openai.ChatModel(model),
		client: &cli,
	}
}

func (c *GroqClient) Name() ProviderName { return ProviderGroq }

func (c *GroqClient) Call(ctx context.Context, prompt, credential string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(groqTemperature),
		MaxTokens:   openai.Int(groqMaxTokens),
	}, option.WithAPIKey(credential))
	if err != nil {
		return "", groqError(err)
	}
	if len(resp.Choices) == 0 {
		return "", malformed(ProviderGroq, "no choices returned")
	}
	msg := resp.Choices[0].Message
	if !msg.JSON.Content.Valid() {
		return "", malformed(ProviderGroq, "choices.0.message.content missing")
	}
	return msg.Content, nil
}

// groqError maps SDK failures onto the adapter error types. Anything that is
// neither an API status nor a transport fault is an undecodable response.
func groqError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = fmt.Sprintf("%s API error: %d", ProviderGroq.DisplayName(), apiErr.StatusCode)
		}
		return &RemoteError{Provider: ProviderGroq, Status: apiErr.StatusCode, Message: msg}
	}
	var ue *url.Error
	if errors.As(err, &ue) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return transportError(ProviderGroq, err)
	}
	return malformed(ProviderGroq, err.Error())
}
