package field

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration indicates a source that cannot be discretized.
var ErrInvalidConfiguration = errors.New("field: invalid configuration")

// ConfigError wraps ErrInvalidConfiguration with the offending setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfiguration.Error(), e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

func invalid(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
