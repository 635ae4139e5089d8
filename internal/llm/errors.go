package llm

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is wrapped when a provider answers 2xx but the
// generated text cannot be found in the body.
var ErrMalformedResponse = errors.New("could not parse response")

// RemoteError is a non-success HTTP status returned by a provider.
type RemoteError struct {
	Provider ProviderName
	Status   int
	Message  string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Provider ProviderName
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider.DisplayName(), e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func malformed(provider ProviderName, detail string) error {
	return fmt.Errorf("%s: %w: %s", provider.DisplayName(), ErrMalformedResponse, detail)
}
