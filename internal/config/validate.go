package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // export.timezone must resolve without system zoneinfo
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically; it also fills the derived fields.
func (c *Config) Validate() error {
	timeout, err := time.ParseDuration(strings.TrimSpace(c.Tracker.TimeoutRaw))
	if err != nil {
		return fmt.Errorf("tracker.timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("tracker.timeout must be > 0 (got %s)", timeout)
	}
	c.Tracker.Timeout = timeout

	if c.Tracker.Path == "" {
		return errors.New("tracker.path must not be empty")
	}

	if err := c.Vocab.validate(); err != nil {
		return fmt.Errorf("vocabulary: %w", err)
	}

	switch c.Telegram.Keyboard {
	case "inline", "reply":
	default:
		return fmt.Errorf("telegram.keyboard must be inline or reply (got %q)", c.Telegram.Keyboard)
	}
	switch c.Telegram.Reply {
	case "text", "image":
	default:
		return fmt.Errorf("telegram.reply must be text or image (got %q)", c.Telegram.Reply)
	}

	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return fmt.Errorf("export.timezone: %w", err)
	}
	c.Export.Location = loc
	if c.Export.TargetMinutes < 0 {
		return fmt.Errorf("export.target_minutes must be >= 0 (got %d)", c.Export.TargetMinutes)
	}

	return nil
}

// ValidateBot checks the settings that only `twb serve` needs.
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram.token is required")
	}
	if c.Telegram.OperatorID <= 0 {
		return fmt.Errorf("telegram.operator_id must be > 0 (got %d)", c.Telegram.OperatorID)
	}
	return nil
}

func (v VocabConfig) validate() error {
	types := make(map[string]bool, len(v.Types))
	for _, t := range v.Types {
		types[t] = true
	}
	for _, t := range v.Tasks {
		if types[t] {
			return fmt.Errorf("%q is both a type and a task; vocabularies must be disjoint", t)
		}
	}
	if v.DefaultType != "" && !types[v.DefaultType] {
		return fmt.Errorf("default_type %q is not a configured type", v.DefaultType)
	}
	if v.DefaultTask != "" && !slices.Contains(v.Tasks, v.DefaultTask) {
		return fmt.Errorf("default_task %q is not a configured task", v.DefaultTask)
	}
	return nil
}
