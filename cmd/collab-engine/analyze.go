package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/collab-engine/internal/engine"
	"github.com/pdiddy/collab-engine/internal/rank"
	"github.com/pdiddy/collab-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full ranking pipeline over the input snapshots",
	Long: `Analyze loads the configured JSON snapshots (calendar events, Teams
chat analysis, document shares, Graph people ranking), fuses them into
per-person collaboration signals, and writes the ranked report.

Missing or malformed snapshots are skipped with a warning unless
--strict is set. All file paths and thresholds can also come from the
config file; flags override it.`,
	RunE: runAnalyze,
}

// analyzeFlags maps flag names to config-file keys.
var analyzeFlags = map[string]string{
	"user-name":        "user.name",
	"user-email":       "user.email",
	"calendar":         "inputs.calendar",
	"chats":            "inputs.chats",
	"documents":        "inputs.documents",
	"graph-people":     "inputs.graph_people",
	"output":           "output_path",
	"today":            "today",
	"strict":           "strict_inputs",
	"evidence-cap":     "evidence_cap",
	"dormant-top-n":    "dormant_top_n",
	"former":           "former_employees",
	"system-account":   "system_accounts",
	"cooling-days":     "dormancy.cooling_days",
	"dormant-days":     "dormancy.dormant_days",
	"high-risk-days":   "dormancy.high_risk_days",
	"min-hist-score":   "dormancy.min_historical_score",
	"backend":          "classifier.backend",
	"taxonomy":         "classifier.taxonomy_path",
	"cache":            "classifier.cache_path",
	"model":            "classifier.llm.model",
	"base-url":         "classifier.llm.base_url",
	"no-llm-fallback":  "classifier.llm.disable_fallback",
	"rate-limit-delay": "classifier.llm.rate_limit_delay",
	"request-timeout":  "classifier.llm.request_timeout",
	"max-retries":      "classifier.llm.max_retries",
}

func init() {
	f := analyzeCmd.Flags()
	f.String("user-name", "", "display name of the subject user")
	f.String("user-email", "", "email of the subject user")
	f.String("calendar", "", "calendar events snapshot (JSON)")
	f.String("chats", "", "Teams chat analysis snapshot (JSON)")
	f.String("documents", "", "document shares snapshot (JSON)")
	f.String("graph-people", "", "Graph people ranking snapshot (JSON)")
	f.String("output", "collaborators.json", "output path for the ranked report")
	f.String("today", "", "anchor date for recency math (YYYY-MM-DD, default: system date)")
	f.Bool("strict", false, "treat missing or malformed snapshots as fatal")
	f.Int("evidence-cap", 0, "max meeting evidence entries per person (default 5)")
	f.Int("dormant-top-n", 0, "max entries in the dormant list (default 20)")
	f.StringSlice("former", nil, "former employees to exclude (name or email, repeatable)")
	f.StringSlice("system-account", nil, "system-account email substrings to exclude (repeatable)")
	f.Int("cooling-days", 0, "days of silence before cooling (default 30)")
	f.Int("dormant-days", 0, "days of silence before dormant (default 60)")
	f.Int("high-risk-days", 0, "days of silence before high-risk eligibility (default 90)")
	f.Float64("min-hist-score", 0, "final score floor for the high-risk label (default 50)")
	f.String("backend", "", "meeting classifier backend: keyword or llm (default keyword)")
	f.String("taxonomy", "", "YAML file replacing the built-in keyword rule table")
	f.String("cache", "", "SQLite classification cache path (default: no cache)")
	f.String("model", "", "LLM model for the llm backend")
	f.String("base-url", "", "LLM API base URL override")
	f.Bool("no-llm-fallback", false, "fail instead of falling back to keywords when the LLM is unavailable")
	f.Duration("rate-limit-delay", 0, "minimum delay between LLM requests (default 2s)")
	f.Duration("request-timeout", 0, "per-request LLM timeout (default 120s)")
	f.Int("max-retries", 0, "retry attempts for transient LLM errors (default 3)")

	for flag, key := range analyzeFlags {
		if err := viper.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(analyzeCmd)
}

// engineConfig assembles the run configuration from viper (config file,
// environment, flags). The API key is never a flag: environment or
// .secrets/openai-api-key only.
func engineConfig() types.EngineConfig {
	cfg := types.EngineConfig{
		User: types.UserIdentity{
			Name:  viper.GetString("user.name"),
			Email: viper.GetString("user.email"),
		},
		Inputs: types.InputPaths{
			Calendar:    viper.GetString("inputs.calendar"),
			Chats:       viper.GetString("inputs.chats"),
			Documents:   viper.GetString("inputs.documents"),
			GraphPeople: viper.GetString("inputs.graph_people"),
		},
		OutputPath: viper.GetString("output_path"),
		Today:      viper.GetString("today"),
		Dormancy: types.DormancyConfig{
			CoolingDays:        viper.GetInt("dormancy.cooling_days"),
			DormantDays:        viper.GetInt("dormancy.dormant_days"),
			HighRiskDays:       viper.GetInt("dormancy.high_risk_days"),
			MinHistoricalScore: viper.GetFloat64("dormancy.min_historical_score"),
		},
		Classifier: types.ClassifierConfig{
			Backend:      types.ClassifierBackendName(viper.GetString("classifier.backend")),
			TaxonomyPath: viper.GetString("classifier.taxonomy_path"),
			CachePath:    viper.GetString("classifier.cache_path"),
			LLM: types.LLMConfig{
				Model:           viper.GetString("classifier.llm.model"),
				APIKey:          secretDefault("openai-api-key", os.Getenv("OPENAI_API_KEY")),
				BaseURL:         viper.GetString("classifier.llm.base_url"),
				RateLimitDelay:  viper.GetDuration("classifier.llm.rate_limit_delay"),
				RequestTimeout:  viper.GetDuration("classifier.llm.request_timeout"),
				MaxRetries:      viper.GetInt("classifier.llm.max_retries"),
				DisableFallback: viper.GetBool("classifier.llm.disable_fallback"),
			},
		},
		EvidenceCap:     viper.GetInt("evidence_cap"),
		DormantTopN:     viper.GetInt("dormant_top_n"),
		FormerEmployees: viper.GetStringSlice("former_employees"),
		SystemAccounts:  viper.GetStringSlice("system_accounts"),
		StrictInputs:    viper.GetBool("strict_inputs"),
	}
	return cfg
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	e := engine.New(engineConfig(), log)
	report, err := e.Run(cmd.Context())
	if err != nil {
		return err
	}

	rank.FormatSummary(report, os.Stderr)
	return nil
}
