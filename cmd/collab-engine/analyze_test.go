package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/collab-engine/pkg/types"
)

func TestAnalyzeFlagsAllDefined(t *testing.T) {
	for flag := range analyzeFlags {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(flag), "flag --%s is bound but not defined", flag)
	}
}

func TestEngineConfigReadsAllLLMSettings(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("user.email", "petar@contoso.com")
	viper.Set("classifier.backend", "llm")
	viper.Set("classifier.llm.model", "gpt-4o-mini")
	viper.Set("classifier.llm.rate_limit_delay", "5s")
	viper.Set("classifier.llm.request_timeout", "90s")
	viper.Set("classifier.llm.max_retries", 7)
	viper.Set("classifier.llm.disable_fallback", true)

	cfg := engineConfig()

	assert.Equal(t, "petar@contoso.com", cfg.User.Email)
	assert.Equal(t, types.BackendLLM, cfg.Classifier.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.Classifier.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.Classifier.LLM.RateLimitDelay)
	assert.Equal(t, 90*time.Second, cfg.Classifier.LLM.RequestTimeout)
	assert.Equal(t, 7, cfg.Classifier.LLM.MaxRetries)
	assert.True(t, cfg.Classifier.LLM.DisableFallback)
}

func TestEngineConfigDefaultsApplyDownstream(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("user.email", "petar@contoso.com")
	cfg := engineConfig()
	require.Zero(t, cfg.Classifier.LLM.MaxRetries)

	cfg.ApplyDefaults()
	assert.Equal(t, 3, cfg.Classifier.LLM.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Classifier.LLM.RateLimitDelay)
}
