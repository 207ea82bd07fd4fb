package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/collab-engine/internal/classify"
	"github.com/pdiddy/collab-engine/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [subject]",
	Short: "Classify one meeting subject against the taxonomy",
	Long: `Classify runs a single subject line (plus optional body, attendee
count, and duration) through the configured classifier backend and
prints the resulting type, category, and confidence as JSON. Useful for
debugging why a meeting scored the way it did.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.String("body", "", "meeting body preview")
	f.Int("attendees", 2, "attendee count (affects the hard priors)")
	f.Int("duration", 30, "meeting duration in minutes")
	f.String("backend", "", "classifier backend: keyword or llm (default keyword)")
	f.String("model", "", "LLM model for the llm backend")
	f.String("taxonomy", "", "YAML file replacing the built-in keyword rule table")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	var rules []classify.Rule
	if path, _ := cmd.Flags().GetString("taxonomy"); path != "" {
		var err error
		if rules, err = classify.LoadRules(path); err != nil {
			return err
		}
	}
	keyword := classify.NewKeywordBackend(rules)

	var primary classify.Backend = keyword
	if backend, _ := cmd.Flags().GetString("backend"); types.ClassifierBackendName(backend) == types.BackendLLM {
		model, _ := cmd.Flags().GetString("model")
		llmCfg := types.LLMConfig{
			Model:   model,
			APIKey:  secretDefault("openai-api-key", os.Getenv("OPENAI_API_KEY")),
			BaseURL: viper.GetString("classifier.llm.base_url"),
		}
		llm, err := classify.NewLLMBackend(llmCfg)
		if err != nil {
			return err
		}
		primary = llm
	}

	body, _ := cmd.Flags().GetString("body")
	attendees, _ := cmd.Flags().GetInt("attendees")
	duration, _ := cmd.Flags().GetInt("duration")

	res := classify.New(primary, keyword, classify.WithLogger(log)).
		Classify(cmd.Context(), classify.Request{
			Subject:       args[0],
			BodyPreview:   body,
			AttendeeCount: attendees,
			DurationMin:   duration,
		})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
