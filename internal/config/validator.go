package config

import (
	"fmt"
	"net/url"

	"go.uber.org/zap/zapcore"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.ServerURL == "" {
		errs = append(errs, ValidationError{Field: "server_url", Message: "server URL is required"})
	} else if u, err := url.Parse(c.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{Field: "server_url", Message: "must be an absolute http(s) URL"})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "server_url", Message: "scheme must be http or https"})
	}

	if c.StatePath == "" {
		errs = append(errs, ValidationError{Field: "state_path", Message: "state path is required"})
	}
	if c.LogPath == "" {
		errs = append(errs, ValidationError{Field: "log_path", Message: "log path is required"})
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)})
	}

	if c.ToastDuration <= 0 {
		errs = append(errs, ValidationError{Field: "toast_duration", Message: "must be positive"})
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, ValidationError{Field: "request_timeout", Message: "must not be negative"})
	}

	return errs
}
