package config

const (
	defaultConfigPath          = "~/.config/dealflow/config.toml"
	defaultDataDir             = "~/.local/share/dealflow"
	defaultLogDir              = "~/.local/share/dealflow/logs"
	defaultDealNoteDir         = "~/.local/share/dealflow/deal-notes"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-3-flash-preview"
	defaultLLMReferer          = "https://github.com/dealflow/dealflow"
	defaultLLMTitle            = "dealflow"
	defaultLLMTimeoutSeconds   = 60
	defaultPublicDataMode      = PublicDataSynthetic
	defaultPublicDataTimeout   = 15
	defaultRiskTolerance       = "medium"
	defaultMeetingBaseURL      = "https://meet.example.com"
	defaultInterviewSlotDays   = 3
	defaultPhaseTimeoutSeconds = 90
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Public data modes.
const (
	PublicDataSynthetic = "synthetic"
	PublicDataHTTP      = "http"
	PublicDataDisabled  = "disabled"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			DealNoteDir: defaultDealNoteDir,
		},
		LLM: LLM{
			Enabled:        true,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		PublicData: PublicData{
			Mode:           defaultPublicDataMode,
			TimeoutSeconds: defaultPublicDataTimeout,
		},
		Scoring: Scoring{
			FounderWeight:         0.25,
			MarketWeight:          0.25,
			DifferentiationWeight: 0.25,
			TractionWeight:        0.25,
			RiskTolerance:         defaultRiskTolerance,
		},
		Interview: Interview{
			Enabled:        true,
			MeetingBaseURL: defaultMeetingBaseURL,
			SlotDays:       defaultInterviewSlotDays,
		},
		Pipeline: Pipeline{
			PhaseTimeoutSeconds: defaultPhaseTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Evaluation:     true,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
