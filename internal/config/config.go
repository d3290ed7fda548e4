// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig is the full runtime configuration, persisted to a JSON file
// under the data dir so LLM settings survive restarts.
type AppConfig struct {
	Port      string `json:"port"`
	DataDir   string `json:"data_dir"`
	LogDir    string `json:"log_dir"`
	DebugMode bool   `json:"debug_mode"`

	LLMProvider string            `json:"llm_provider"`
	LLMConfig   map[string]string `json:"llm_config"`

	Rules GameRules `json:"rules"`
}

// Config holds the base configuration read from the environment.
type Config struct {
	Port         string
	GeminiAPIKey string
	DataDir      string
	LogDir       string
	DebugMode    bool
}

// GameRules are the tunable constants of the simulation. The observed
// variants of the game disagree on some of these, so they are
// configuration rather than fixed rules.
type GameRules struct {
	EventChance       float64 `json:"event_chance"`        // interactive event probability per turn
	ChaosChance       float64 `json:"chaos_chance"`        // global chaos event probability per turn
	HealthDecayMax    float64 `json:"health_decay_max"`    // upper bound of yearly health loss
	HappinessDrift    float64 `json:"happiness_drift"`     // yearly happiness swing, plus or minus
	FollowerRate      float64 `json:"follower_rate"`       // money per follower per year
	JobIncome         float64 `json:"job_income"`          // yearly income when employed
	MaxAge            int     `json:"max_age"`             // dying of old age past this
	AdultPenalty      float64 `json:"adult_penalty"`       // happiness cost of adult-content posts
	FakeFollowerCost  float64 `json:"fake_follower_cost"`  // price of a fake-follower package
	FakeFollowerGain  int     `json:"fake_follower_gain"`  // followers granted when not caught
	FakeFollowerBanCh float64 `json:"fake_follower_ban"`   // probability of a permanent ban
	ProviderTimeoutMS int     `json:"provider_timeout_ms"` // deadline for narrative calls
}

// DefaultGameRules returns the baseline ruleset.
func DefaultGameRules() GameRules {
	return GameRules{
		EventChance:       0.6,
		ChaosChance:       0.03,
		HealthDecayMax:    3,
		HappinessDrift:    3,
		FollowerRate:      0.15,
		JobIncome:         40000,
		MaxAge:            120,
		AdultPenalty:      5,
		FakeFollowerCost:  5000,
		FakeFollowerGain:  10000,
		FakeFollowerBanCh: 0.15,
		ProviderTimeoutMS: 30000,
	}
}

// Load reads the base configuration from the environment. A .env file
// is honored when present.
func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:         getEnv("PORT", "8080"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		DataDir:      getEnvPath("DATA_DIR", "data"),
		LogDir:       getEnvPath("LOG_DIR", "logs"),
		DebugMode:    getEnvBool("DEBUG_MODE", true),
	}

	if config.GeminiAPIKey == "" {
		log.Println("warning: GEMINI_API_KEY not set; narrative generation stays disabled until a key is configured")
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			fmt.Printf("warning: creating directory %s failed: %v\n", path, err)
		}
	}

	return path
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.ParseFloat(value, 64); err == nil {
		return parsed
	}
	return defaultValue
}

// rulesFromEnv applies environment overrides on top of the defaults.
func rulesFromEnv() GameRules {
	rules := DefaultGameRules()
	rules.EventChance = getEnvFloat("EVENT_CHANCE", rules.EventChance)
	rules.ChaosChance = getEnvFloat("CHAOS_CHANCE", rules.ChaosChance)
	rules.FollowerRate = getEnvFloat("FOLLOWER_RATE", rules.FollowerRate)
	rules.JobIncome = getEnvFloat("JOB_INCOME", rules.JobIncome)
	return rules
}

// InitConfig loads the persisted configuration, layering it over the
// environment, and writes the merged result back.
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = &AppConfig{
		Port:        baseConfig.Port,
		DataDir:     baseConfig.DataDir,
		LogDir:      baseConfig.LogDir,
		DebugMode:   baseConfig.DebugMode,
		LLMProvider: "gemini",
		LLMConfig: map[string]string{
			"api_key":       baseConfig.GeminiAPIKey,
			"default_model": "gemini-2.5-flash",
		},
		Rules: rulesFromEnv(),
	}

	if _, err := os.Stat(configFile); !os.IsNotExist(err) {
		data, err := os.ReadFile(configFile)
		if err == nil {
			var savedConfig AppConfig
			if json.Unmarshal(data, &savedConfig) == nil {
				// Keep the file's LLM settings but always use the
				// current environment for the base fields.
				savedConfig.Port = baseConfig.Port
				savedConfig.DataDir = baseConfig.DataDir
				savedConfig.LogDir = baseConfig.LogDir
				savedConfig.DebugMode = baseConfig.DebugMode

				if savedConfig.LLMConfig != nil && savedConfig.LLMConfig["api_key"] == "" {
					savedConfig.LLMConfig["api_key"] = baseConfig.GeminiAPIKey
				}
				if savedConfig.Rules == (GameRules{}) {
					savedConfig.Rules = rulesFromEnv()
				}

				currentConfig = &savedConfig
			}
		}
	}

	return saveConfigLocked()
}

// GetCurrentConfig returns a copy of the active configuration.
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		baseConfig, _ := Load()
		return &AppConfig{
			Port:        baseConfig.Port,
			DataDir:     baseConfig.DataDir,
			LogDir:      baseConfig.LogDir,
			DebugMode:   baseConfig.DebugMode,
			LLMProvider: "gemini",
			LLMConfig: map[string]string{
				"api_key": baseConfig.GeminiAPIKey,
			},
			Rules: rulesFromEnv(),
		}
	}

	configCopy := *currentConfig
	return &configCopy
}

// UpdateLLMConfig switches the active narrative provider settings and
// persists them.
func UpdateLLMConfig(provider string, providerConfig map[string]string) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("config system not initialized")
	}

	currentConfig.LLMProvider = provider
	currentConfig.LLMConfig = providerConfig

	return saveConfigLocked()
}

// SaveConfig persists the current configuration to disk.
func SaveConfig() error {
	configMutex.Lock()
	defer configMutex.Unlock()
	return saveConfigLocked()
}

func saveConfigLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("no config to save")
	}
	if configFile == "" {
		return fmt.Errorf("config system not initialized")
	}

	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
