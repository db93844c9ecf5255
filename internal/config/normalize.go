package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizePublicData()
	c.normalizeScoring()
	c.normalizeInterview()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DealNoteDir) == "" {
		c.Paths.DealNoteDir = defaultDealNoteDir
	}
	if c.Paths.DealNoteDir, err = expandPath(c.Paths.DealNoteDir); err != nil {
		return fmt.Errorf("paths.deal_note_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePublicData() {
	c.PublicData.Mode = strings.ToLower(strings.TrimSpace(c.PublicData.Mode))
	if c.PublicData.Mode == "" {
		c.PublicData.Mode = defaultPublicDataMode
	}
	c.PublicData.BaseURL = strings.TrimSpace(c.PublicData.BaseURL)
	c.PublicData.APIKey = strings.TrimSpace(c.PublicData.APIKey)
	if c.PublicData.APIKey == "" {
		if value, ok := os.LookupEnv("DEALFLOW_PUBLIC_DATA_KEY"); ok {
			c.PublicData.APIKey = strings.TrimSpace(value)
		}
	}
	if c.PublicData.TimeoutSeconds <= 0 {
		c.PublicData.TimeoutSeconds = defaultPublicDataTimeout
	}
}

func (c *Config) normalizeScoring() {
	c.Scoring.RiskTolerance = strings.ToLower(strings.TrimSpace(c.Scoring.RiskTolerance))
	if c.Scoring.RiskTolerance == "" {
		c.Scoring.RiskTolerance = defaultRiskTolerance
	}
}

func (c *Config) normalizeInterview() {
	c.Interview.MeetingBaseURL = strings.TrimRight(strings.TrimSpace(c.Interview.MeetingBaseURL), "/")
	if c.Interview.MeetingBaseURL == "" {
		c.Interview.MeetingBaseURL = defaultMeetingBaseURL
	}
	if c.Interview.SlotDays <= 0 {
		c.Interview.SlotDays = defaultInterviewSlotDays
	}
	c.Interview.Timezone = strings.TrimSpace(c.Interview.Timezone)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
