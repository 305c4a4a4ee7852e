package ai

import (
	"errors"
	"fmt"
)

// ErrUnknownProvider is returned by the registry for an unrecognized name.
var ErrUnknownProvider = errors.New("unknown ai provider")

// ConfigError reports missing or invalid provider configuration. It is
// always raised before any network call, so callers can still reject the
// request cleanly instead of truncating a stream.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// UpstreamError reports a non-2xx response or malformed result from a
// remote provider.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
}
