package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validatePublicData(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateInterview(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":            c.LLM.TimeoutSeconds,
		"public_data.timeout_seconds":    c.PublicData.TimeoutSeconds,
		"pipeline.phase_timeout_seconds": c.Pipeline.PhaseTimeoutSeconds,
		"notifications.request_timeout":  c.Notifications.RequestTimeout,
		"interview.slot_days":            c.Interview.SlotDays,
	})
}

func (c *Config) validatePublicData() error {
	switch c.PublicData.Mode {
	case PublicDataSynthetic, PublicDataDisabled:
		return nil
	case PublicDataHTTP:
		if c.PublicData.BaseURL == "" {
			return errors.New("public_data.base_url must be set when public_data.mode is http")
		}
		return nil
	default:
		return fmt.Errorf("public_data.mode must be one of synthetic, http, disabled (got %q)", c.PublicData.Mode)
	}
}

func (c *Config) validateScoring() error {
	weights := map[string]float64{
		"scoring.founder_weight":         c.Scoring.FounderWeight,
		"scoring.market_weight":          c.Scoring.MarketWeight,
		"scoring.differentiation_weight": c.Scoring.DifferentiationWeight,
		"scoring.traction_weight":        c.Scoring.TractionWeight,
	}
	for key, value := range weights {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	switch c.Scoring.RiskTolerance {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("scoring.risk_tolerance must be low, medium or high (got %q)", c.Scoring.RiskTolerance)
	}
	return nil
}

func (c *Config) validateInterview() error {
	if !strings.HasPrefix(c.Interview.MeetingBaseURL, "http://") && !strings.HasPrefix(c.Interview.MeetingBaseURL, "https://") {
		return errors.New("interview.meeting_base_url must be an http(s) URL")
	}
	if c.Interview.Timezone != "" {
		if _, err := time.LoadLocation(c.Interview.Timezone); err != nil {
			return fmt.Errorf("interview.timezone %q: %w", c.Interview.Timezone, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
