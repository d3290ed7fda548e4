// internal/config/config_test.go
package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultGameRules(t *testing.T) {
	rules := DefaultGameRules()

	if rules.EventChance != 0.6 {
		t.Errorf("EventChance = %v, want 0.6", rules.EventChance)
	}
	if rules.ChaosChance != 0.03 {
		t.Errorf("ChaosChance = %v, want 0.03", rules.ChaosChance)
	}
	if rules.JobIncome != 40000 {
		t.Errorf("JobIncome = %v, want 40000", rules.JobIncome)
	}
	if rules.MaxAge != 120 {
		t.Errorf("MaxAge = %d, want 120", rules.MaxAge)
	}
	if rules.FakeFollowerCost != 5000 || rules.FakeFollowerGain != 10000 {
		t.Errorf("fake follower package = %v/%d, want 5000/10000", rules.FakeFollowerCost, rules.FakeFollowerGain)
	}
}

func TestRulesFromEnvOverrides(t *testing.T) {
	t.Setenv("EVENT_CHANCE", "0.25")
	t.Setenv("JOB_INCOME", "55000")
	t.Setenv("CHAOS_CHANCE", "not-a-number")

	rules := rulesFromEnv()
	if rules.EventChance != 0.25 {
		t.Errorf("EventChance = %v, want the override 0.25", rules.EventChance)
	}
	if rules.JobIncome != 55000 {
		t.Errorf("JobIncome = %v, want the override 55000", rules.JobIncome)
	}
	if rules.ChaosChance != 0.03 {
		t.Errorf("ChaosChance = %v, want the default when the override does not parse", rules.ChaosChance)
	}
}

func TestInitConfigPersistsAndReloads(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("LOG_DIR", filepath.Join(dataDir, "logs"))
	t.Setenv("GEMINI_API_KEY", "env-key")

	if err := InitConfig(dataDir); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	if err := UpdateLLMConfig("openai", map[string]string{"api_key": "sk-test"}); err != nil {
		t.Fatalf("UpdateLLMConfig failed: %v", err)
	}

	// A second init layers the persisted LLM settings over the env.
	if err := InitConfig(dataDir); err != nil {
		t.Fatalf("second InitConfig failed: %v", err)
	}

	cfg := GetCurrentConfig()
	if cfg.LLMProvider != "openai" {
		t.Errorf("LLMProvider = %q, want the persisted openai", cfg.LLMProvider)
	}
	if cfg.LLMConfig["api_key"] != "sk-test" {
		t.Errorf("api_key = %q, want the persisted sk-test", cfg.LLMConfig["api_key"])
	}
	if cfg.DataDir != dataDir {
		t.Errorf("DataDir = %q, want the environment value %q", cfg.DataDir, dataDir)
	}
}
