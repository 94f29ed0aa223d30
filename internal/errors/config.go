package errors

import "errors"

// ConfigurationError is fatal: the process must stop before serving requests.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration " + e.Key + ": " + e.Reason
}

// NewConfigurationError creates a ConfigurationError for key.
func NewConfigurationError(key, reason string) *ConfigurationError {
	return &ConfigurationError{Key: key, Reason: reason}
}

// IsConfigurationError reports whether err is a ConfigurationError (even when wrapped).
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
