package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	maxResponseBytes   = 4 << 20
)

// NewHTTPClient returns the client shared by the adapters. Its timeout bounds
// each provider call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// postJSON sends payload and returns the raw body of a 2xx response.
// Non-2xx statuses become *RemoteError and network failures *TransportError.
func postJSON(ctx context.Context, client *http.Client, provider ProviderName, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(provider, err)
	}
	defer func(closer io.ReadCloser) { _ = closer.Close() }(resp.Body)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Provider: provider, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{
			Provider: provider,
			Status:   resp.StatusCode,
			Message:  remoteMessage(provider, resp.StatusCode, respBody),
		}
	}
	return respBody, nil
}

// transportError wraps a failed round trip. The query string of the request
// URL is dropped from *url.Error because Gemini carries its key there.
func transportError(provider ProviderName, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = redactQuery(ue.URL)
	}
	return &TransportError{Provider: provider, Err: err}
}

func redactQuery(raw string) string {
	base, _, found := strings.Cut(raw, "?")
	if !found {
		return raw
	}
	return base + "?[redacted]"
}

// remoteMessage prefers the provider's {"error":{"message":...}} text and
// falls back to a message carrying the status code.
func remoteMessage(provider ProviderName, status int, body []byte) string {
	if gjson.ValidBytes(body) {
		msg := gjson.GetBytes(body, "error.message")
		if msg.Type == gjson.String && msg.String() != "" {
			return msg.String()
		}
	}
	return fmt.Sprintf("%s API error: %d", provider.DisplayName(), status)
}

// extractText reads the string at path from a successful response body.
func extractText(provider ProviderName, body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", malformed(provider, "response is not JSON")
	}
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", malformed(provider, path+" missing")
	}
	if result.Type != gjson.String {
		return "", malformed(provider, path+" is not a string")
	}
	return result.String(), nil
}
