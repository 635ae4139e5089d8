package summary

import "errors"

// State is what a caller should currently display.
type State string

const (
	StateLoading State = "loading"
	StateResult  State = "result"
	StateError   State = "error"
)

// Outcome is the rendered form of a pipeline result.
type Outcome struct {
	State   State  `json:"state"`
	Summary string `json:"summary,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// Loading is shown while a request is in flight.
func Loading() Outcome {
	return Outcome{State: StateLoading, Message: "Generating summary..."}
}

// Present turns a pipeline result into a result or error outcome.
func Present(text string, err error) Outcome {
	if err == nil {
		return Outcome{State: StateResult, Summary: text}
	}
	kind := KindOf(err)
	msg := err.Error()
	switch kind {
	case KindMalformedResponse:
		msg = "Error: could not parse response from the AI provider."
	case KindInternal:
		msg = "Error: something went wrong while generating the summary."
	case KindRemote, KindTransport:
		msg = "Error: " + msg
	}
	return Outcome{State: StateError, Kind: kind, Message: msg}
}

// IsUserError reports whether the user can fix err by editing input or settings.
func IsUserError(err error) bool {
	var (
		validation *ValidationError
		credential *MissingCredentialError
	)
	return errors.As(err, &validation) || errors.As(err, &credential)
}
