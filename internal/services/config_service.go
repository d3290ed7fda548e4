// internal/services/config_service.go
package services

import (
	"github.com/weblife-game/weblife/internal/config"
	apperrors "github.com/weblife-game/weblife/internal/errors"
	"github.com/weblife-game/weblife/internal/llm"
	"github.com/weblife-game/weblife/internal/utils"
)

// ConfigService exposes the runtime LLM configuration: which provider
// narrates the game, with which settings, and whether it is ready.
type ConfigService struct {
	narrative *NarrativeService
	logger    *utils.Logger
}

// LLMStatus is the reported state of the narrative backend.
type LLMStatus struct {
	Ready           bool     `json:"ready"`
	State           string   `json:"state"`
	Provider        string   `json:"provider"`
	Model           string   `json:"model,omitempty"`
	SupportedModels []string `json:"supported_models,omitempty"`
	KnownProviders  []string `json:"known_providers"`
}

// UpdateLLMRequest carries a provider switch.
type UpdateLLMRequest struct {
	Provider string            `json:"provider" binding:"required"`
	Config   map[string]string `json:"config" binding:"required"`
}

// NewConfigService creates the config facade over the narrative service.
func NewConfigService(narrative *NarrativeService) *ConfigService {
	return &ConfigService{
		narrative: narrative,
		logger:    utils.GetLogger(),
	}
}

// GetLLMStatus reports the narrative backend's configuration and health.
func (s *ConfigService) GetLLMStatus() LLMStatus {
	ready, state := s.narrative.GetProviderStatus()

	status := LLMStatus{
		Ready:          ready,
		State:          state,
		Provider:       s.narrative.GetProviderName(),
		KnownProviders: llm.ListProviders(),
	}

	if cfg := config.GetCurrentConfig(); cfg != nil {
		if status.Provider == "" {
			status.Provider = cfg.LLMProvider
		}
		if cfg.LLMConfig != nil {
			status.Model = cfg.LLMConfig["default_model"]
		}
	}
	if status.Provider != "" {
		status.SupportedModels = llm.GetSupportedModelsForProvider(status.Provider)
	}
	return status
}

// UpdateLLMConfig switches the narrative provider at runtime and
// persists the new settings. The switch is validated against the
// registry before anything is saved.
func (s *ConfigService) UpdateLLMConfig(req UpdateLLMRequest) error {
	if req.Provider == "" {
		return apperrors.NewValidationError("provider is required", nil)
	}
	if req.Config["api_key"] == "" {
		return apperrors.NewValidationError("config.api_key is required", nil)
	}

	if err := s.narrative.UpdateProvider(req.Provider, req.Config); err != nil {
		return apperrors.NewValidationError("provider configuration rejected: "+err.Error(), err)
	}

	if err := config.UpdateLLMConfig(req.Provider, req.Config); err != nil {
		s.logger.Errorf("persisting LLM config failed: %v", err)
		return err
	}

	s.logger.Info("narrative provider updated", map[string]interface{}{"provider": req.Provider})
	return nil
}
