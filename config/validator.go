package config

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a configuration value that can not be used
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration for impossible values.  All problems
// are reported together.
func (c *Config) Validate() error {

	var errs []error

	unit := []struct {
		name string
		val  float64
	}{
		{"detect.confidence", c.Detect.Confidence},
		{"detect.nms_threshold", c.Detect.NMSThreshold},
		{"tracker.track_thresh", c.Tracker.TrackThresh},
		{"tracker.high_thresh", c.Tracker.HighThresh},
		{"tracker.match_thresh", c.Tracker.MatchThresh},
	}

	for _, u := range unit {
		if !(u.val >= 0 && u.val <= 1) {
			errs = append(errs, &ValidationError{
				Field:  u.name,
				Reason: fmt.Sprintf("must be between 0.0 and 1.0, got %g", u.val),
			})
		}
	}

	if c.Model.Path == "" {
		errs = append(errs, &ValidationError{Field: "model.path", Reason: "must be set"})
	}

	if c.Detect.MaxObjects <= 0 {
		errs = append(errs, &ValidationError{
			Field:  "detect.max_objects",
			Reason: fmt.Sprintf("must be positive, got %d", c.Detect.MaxObjects),
		})
	}

	if c.Tracker.TrackBuffer <= 0 {
		errs = append(errs, &ValidationError{
			Field:  "tracker.track_buffer",
			Reason: fmt.Sprintf("must be positive, got %d", c.Tracker.TrackBuffer),
		})
	}

	if c.Output.Suffix == "" {
		errs = append(errs, &ValidationError{Field: "output.suffix", Reason: "must be set"})
	}

	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		errs = append(errs, &ValidationError{
			Field:  "output.suffix",
			Reason: fmt.Sprintf("must not contain a path separator, got %q", c.Output.Suffix),
		})
	}

	if c.Notify.Brokers != "" && c.Notify.Topic == "" {
		errs = append(errs, &ValidationError{Field: "notify.topic", Reason: "must be set when brokers are configured"})
	}

	return errors.Join(errs...)
}
