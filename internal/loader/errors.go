package loader

import (
	"errors"
	"fmt"
	"strconv"
)

// ConfigError reports an unusable descriptor list. It is returned before any
// retrieval starts.
type ConfigError struct {
	Reason string
	Name   string
}

func (e *ConfigError) Error() string {
	if e.Name == "" {
		return "invalid resource configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid resource configuration: %s: %q", e.Reason, e.Name)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// StatusError is returned by the HTTP fetcher for non-2xx responses.
type StatusError struct {
	Code     int
	Location string
}

func (e *StatusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.Code) + " from " + e.Location
}

// StatusCode exposes the upstream status.
func (e *StatusError) StatusCode() int { return e.Code }

// Validate checks descriptors for the configuration errors Load refuses.
func Validate(descs []Descriptor) error {
	if len(descs) == 0 {
		return &ConfigError{Reason: "no resources configured"}
	}
	seen := make(map[string]struct{}, len(descs))
	for _, d := range descs {
		if d.Name == "" {
			return &ConfigError{Reason: "resource with empty name"}
		}
		if d.Location == "" {
			return &ConfigError{Reason: "resource without location", Name: d.Name}
		}
		if _, dup := seen[d.Name]; dup {
			return &ConfigError{Reason: "duplicate resource name", Name: d.Name}
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}
