// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// UserIdentity names the subject user whose footprint is analyzed.
type UserIdentity struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// InputPaths points at the four JSON input snapshots. Empty paths mean
// the source is absent; the run proceeds with that source empty.
type InputPaths struct {
	Calendar    string `json:"calendar" yaml:"calendar"`
	Chats       string `json:"chats" yaml:"chats"`
	Documents   string `json:"documents" yaml:"documents"`
	GraphPeople string `json:"graph_people" yaml:"graph_people"`
}

// DormancyConfig holds the day thresholds for the dormancy labels.
// Per prd008-dormancy R2.2 these are the only place the thresholds live.
type DormancyConfig struct {
	// CoolingDays is the lower bound of the cooling band (default 30).
	CoolingDays int `json:"cooling_days" yaml:"cooling_days"`

	// DormantDays is the lower bound of the dormant band (default 60).
	DormantDays int `json:"dormant_days" yaml:"dormant_days"`

	// HighRiskDays is the lower bound for high-risk eligibility (default 90).
	HighRiskDays int `json:"high_risk_days" yaml:"high_risk_days"`

	// MinHistoricalScore is the final-score floor for the high-risk label
	// (default 50).
	MinHistoricalScore float64 `json:"min_historical_score" yaml:"min_historical_score"`
}

// ClassifierBackendName selects the meeting classifier backend.
type ClassifierBackendName string

const (
	BackendKeyword ClassifierBackendName = "keyword"
	BackendLLM     ClassifierBackendName = "llm"
)

// LLMConfig holds settings for the LLM classifier backend.
type LLMConfig struct {
	// Model is the chat model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint (useful for proxies and tests).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// RateLimitDelay is the minimum delay between requests (default 2s).
	RateLimitDelay time.Duration `json:"rate_limit_delay" yaml:"rate_limit_delay"`

	// MaxRetries is the number of retry attempts for transient errors
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestTimeout is the per-call timeout (default 120s).
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// DisableFallback makes LLM startup failure fatal instead of falling
	// back to the keyword backend.
	DisableFallback bool `json:"disable_fallback,omitempty" yaml:"disable_fallback,omitempty"`
}

// ClassifierConfig selects and tunes the meeting classifier.
type ClassifierConfig struct {
	Backend ClassifierBackendName `json:"backend" yaml:"backend"`

	// TaxonomyPath optionally replaces the built-in keyword rule table
	// with a YAML rule list.
	TaxonomyPath string `json:"taxonomy_path,omitempty" yaml:"taxonomy_path,omitempty"`

	// CachePath optionally enables the SQLite classification cache.
	// Empty keeps the run stateless.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`

	LLM LLMConfig `json:"llm" yaml:"llm"`
}

// EngineConfig is the full configuration for one engine run. The CLI
// builds it from flags, config file, and environment; nothing in the
// engine reads globals (prd010-engine R1.2).
type EngineConfig struct {
	User   UserIdentity `json:"user" yaml:"user"`
	Inputs InputPaths   `json:"inputs" yaml:"inputs"`

	// OutputPath is where the ranked report JSON is written atomically.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Today anchors all recency math, ISO date (YYYY-MM-DD). Empty uses
	// the system date, captured once at run start.
	Today string `json:"today,omitempty" yaml:"today,omitempty"`

	Dormancy   DormancyConfig   `json:"dormancy" yaml:"dormancy"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`

	// EvidenceCap limits meeting evidence snippets per person (default 5).
	EvidenceCap int `json:"evidence_cap" yaml:"evidence_cap"`

	// DormantTopN truncates the dormant partition (default 20).
	DormantTopN int `json:"dormant_top_n" yaml:"dormant_top_n"`

	// FormerEmployees lists display names (or keys) to exclude entirely.
	FormerEmployees []string `json:"former_employees,omitempty" yaml:"former_employees,omitempty"`

	// SystemAccounts lists email substrings identifying service accounts.
	SystemAccounts []string `json:"system_accounts,omitempty" yaml:"system_accounts,omitempty"`

	// StrictInputs makes a missing or malformed input snapshot fatal
	// instead of soft-recovering with the source treated as empty.
	StrictInputs bool `json:"strict_inputs,omitempty" yaml:"strict_inputs,omitempty"`
}

// ApplyDefaults fills zero-valued fields with the documented defaults.
func (c *EngineConfig) ApplyDefaults() {
	if c.Dormancy.CoolingDays <= 0 {
		c.Dormancy.CoolingDays = 30
	}
	if c.Dormancy.DormantDays <= 0 {
		c.Dormancy.DormantDays = 60
	}
	if c.Dormancy.HighRiskDays <= 0 {
		c.Dormancy.HighRiskDays = 90
	}
	if c.Dormancy.MinHistoricalScore <= 0 {
		c.Dormancy.MinHistoricalScore = 50
	}
	if c.EvidenceCap <= 0 {
		c.EvidenceCap = 5
	}
	if c.DormantTopN <= 0 {
		c.DormantTopN = 20
	}
	if c.Classifier.Backend == "" {
		c.Classifier.Backend = BackendKeyword
	}
	if c.Classifier.LLM.RateLimitDelay <= 0 {
		c.Classifier.LLM.RateLimitDelay = 2 * time.Second
	}
	if c.Classifier.LLM.MaxRetries <= 0 {
		c.Classifier.LLM.MaxRetries = 3
	}
	if c.Classifier.LLM.RequestTimeout <= 0 {
		c.Classifier.LLM.RequestTimeout = 120 * time.Second
	}
}
