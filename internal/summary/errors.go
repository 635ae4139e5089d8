package summary

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"halo-summarizer/internal/llm"
)

// ValidationError rejects input before any provider is contacted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// MissingCredentialError means no API key is configured for the provider.
type MissingCredentialError struct {
	Provider llm.ProviderName
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("Please configure your %s API key first.", e.Provider.DisplayName())
}

// UnsupportedProviderError means no adapter is registered under the name.
type UnsupportedProviderError struct {
	Provider llm.ProviderName
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("Unknown AI provider: %s", e.Provider)
}

// Kind classifies a pipeline failure for callers and metrics.
type Kind string

const (
	KindNone                Kind = ""
	KindValidation          Kind = "validation_error"
	KindMissingCredential   Kind = "missing_credential"
	KindUnsupportedProvider Kind = "unsupported_provider"
	KindRemote              Kind = "remote_error"
	KindMalformedResponse   Kind = "malformed_response"
	KindTransport           Kind = "transport_error"
	KindInternal            Kind = "internal_error"
)

// KindOf maps err onto the failure taxonomy. A nil error is KindNone.
func KindOf(err error) Kind {
	var (
		validation  *ValidationError
		credential  *MissingCredentialError
		unsupported *UnsupportedProviderError
		remote      *llm.RemoteError
		transport   *llm.TransportError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &credential):
		return KindMissingCredential
	case errors.As(err, &unsupported):
		return KindUnsupportedProvider
	case errors.As(err, &remote):
		return KindRemote
	case errors.Is(err, llm.ErrMalformedResponse):
		return KindMalformedResponse
	case errors.As(err, &transport), errors.Is(err, context.DeadlineExceeded):
		return KindTransport
	default:
		return KindInternal
	}
}

// HTTPStatus is the status a gateway responds with for a failure kind.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNone:
		return http.StatusOK
	case KindValidation, KindMissingCredential, KindUnsupportedProvider:
		return http.StatusBadRequest
	case KindRemote, KindMalformedResponse:
		return http.StatusBadGateway
	case KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
