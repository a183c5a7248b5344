package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/eventlog"
	"github.com/moby/patternmatcher"
)

// Validate checks the semantic rules the schema cannot express.
func (c *Config) Validate() error {
	switch c.StartMethod {
	case "", "thread", "process":
	default:
		return errors.New(errors.ErrCodeConfigValidation,
			fmt.Sprintf("start_method must be 'thread' or 'process', got '%s'", c.StartMethod)).
			WithDetail("field", "start_method")
	}

	if c.DeletedLevel != "" {
		if _, err := eventlog.ParseLevel(c.DeletedLevel); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid deleted_level").
				WithDetail("field", "deleted_level")
		}
	}

	if c.JoinInterval != "" {
		d, err := time.ParseDuration(c.JoinInterval)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid join_interval").
				WithDetail("field", "join_interval")
		}
		if d <= 0 {
			return errors.New(errors.ErrCodeConfigValidation, "join_interval must be positive").
				WithDetail("field", "join_interval")
		}
	}

	for i, w := range c.Watches {
		if strings.TrimSpace(w.Path) == "" {
			return errors.New(errors.ErrCodeConfigValidation, fmt.Sprintf("watches[%d].path cannot be empty", i)).
				WithDetail("field", fmt.Sprintf("watches[%d].path", i))
		}
	}

	seen := make(map[string]bool)
	for _, w := range c.Watches {
		if w.Name == "" {
			continue
		}
		if seen[w.Name] {
			return errors.DuplicateWatchName(w.Name)
		}
		seen[w.Name] = true
	}

	if len(c.Ignore) > 0 {
		if _, err := patternmatcher.New(c.Ignore); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid ignore pattern").
				WithDetail("field", "ignore")
		}
	}

	if c.Rotation.MaxSizeMB < 0 || c.Rotation.MaxBackups < 0 || c.Rotation.MaxAgeDays < 0 {
		return errors.New(errors.ErrCodeConfigValidation, "rotation values cannot be negative").
			WithDetail("field", "rotation")
	}
	if c.Rotation.MaxSizeMB > 0 && c.StartMethod == "process" {
		return errors.New(errors.ErrCodeConfigValidation,
			"rotation requires start_method 'thread'; process workers share the event log").
			WithDetail("field", "rotation.max_size_mb")
	}

	return nil
}
