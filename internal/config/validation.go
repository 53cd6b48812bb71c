package config

import (
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

// maxHashLength is the hex length of the 256-bit digests both algorithms produce.
const maxHashLength = 64

// ValidateConfig checks a normalized, defaulted configuration.
func ValidateConfig(c *Config) error {
	if c.HashLength < 1 || c.HashLength > maxHashLength {
		return errors.ValidationError("hash_length must be between 1 and 64").
			WithContext("hash_length", c.HashLength).
			Build()
	}
	for _, rule := range c.Ignore {
		if expr, ok := strings.CutPrefix(rule, "re:"); ok {
			if _, err := regexp.Compile(expr); err != nil {
				return errors.WrapError(err, errors.CategoryValidation, "invalid ignore pattern").
					WithContext("pattern", rule).
					UserAction().
					Build()
			}
		}
	}
	if c.RootDir != "" && c.OutputDir != "" && sameDir(c.RootDir, c.OutputDir) {
		return errors.ValidationError("output_dir must differ from root_dir").
			WithContext("root_dir", c.RootDir).
			Build()
	}
	if err := validateDuration("watch.debounce", c.Watch.Debounce, false); err != nil {
		return err
	}
	if err := validateDuration("watch.resync", c.Watch.Resync, true); err != nil {
		return err
	}
	if err := validateDuration("notify.timeout", c.Notify.Timeout, false); err != nil {
		return err
	}
	if c.Notify.Retries < 0 {
		return errors.ValidationError("notify.retries cannot be negative").
			WithContext("retries", c.Notify.Retries).
			Build()
	}
	if c.Notify.URL != "" && strings.TrimSpace(c.Notify.Subject) == "" {
		return errors.ValidationError("notify.subject is required when notify.url is set").Build()
	}
	return nil
}

func validateDuration(field, value string, optional bool) error {
	if value == "" && optional {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid duration").
			WithContext("field", field).
			WithContext("value", value).
			UserAction().
			Build()
	}
	if d <= 0 {
		return errors.ValidationError("duration must be positive").
			WithContext("field", field).
			WithContext("value", value).
			Build()
	}
	return nil
}

func sameDir(a, b string) bool {
	clean := func(p string) string {
		return strings.TrimRight(strings.ReplaceAll(p, `\`, "/"), "/")
	}
	return clean(a) == clean(b)
}
