package types

import "errors"

// ErrorKind classifies provider-level failures that are recovered inside
// the adapter boundary and surfaced only as warnings.
type ErrorKind string

const (
	// ErrorKindUnavailable covers transport errors, timeouts and missing
	// credentials.
	ErrorKindUnavailable ErrorKind = "provider_unavailable"
	// ErrorKindMalformed covers responses that could not be parsed.
	ErrorKindMalformed ErrorKind = "malformed_response"
)

// ProviderError is a recovered adapter failure. It never escapes the
// aggregation call as an error return.
type ProviderError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ProviderError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// The only two conditions that fail an aggregate call outright: they mean
// the request cannot be meaningfully executed at all.
var (
	ErrLocationUnresolvable = errors.New("location could not be resolved by any geocoder or fallback")
	ErrNoProvidersSelected  = errors.New("no configured provider supports the requested category")
)
