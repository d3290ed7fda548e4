// internal/app/app.go
package app

import (
	"fmt"
	"path/filepath"

	"github.com/weblife-game/weblife/internal/config"
	"github.com/weblife-game/weblife/internal/di"
	"github.com/weblife-game/weblife/internal/services"
	"github.com/weblife-game/weblife/internal/storage"
	"github.com/weblife-game/weblife/internal/utils"

	// Provider registration
	_ "github.com/weblife-game/weblife/internal/llm/providers/gemini"
	_ "github.com/weblife-game/weblife/internal/llm/providers/openai"
)

// InitServices constructs every service in dependency order and
// registers them in the global container. Call once at startup, after
// config.InitConfig.
func InitServices() error {
	container := di.GetContainer()
	logger := utils.GetLogger()

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	// Narrative backend. A missing API key yields a not-ready service;
	// the game runs on fallbacks until a provider is configured.
	narrativeService := services.NewNarrativeService()
	container.Register("narrative", narrativeService)
	if ready, state := narrativeService.GetProviderStatus(); ready {
		logger.Infof("narrative provider ready: %s", narrativeService.GetProviderName())
	} else {
		logger.Warnf("narrative provider not ready: %s", state)
	}

	roller := services.NewRoller()

	sessionService := services.NewSessionService(narrativeService)
	archive, err := storage.NewArchiveStore(filepath.Join(cfg.DataDir, "archive"))
	if err != nil {
		logger.Warnf("session archive disabled: %v", err)
	} else {
		sessionService.SetArchive(archive)
		container.Register("archive", archive)
	}
	container.Register("session", sessionService)

	container.Register("turn", services.NewTurnService(sessionService, narrativeService, roller, cfg.Rules))
	container.Register("social", services.NewSocialService(sessionService, narrativeService, roller, cfg.Rules))
	container.Register("config", services.NewConfigService(narrativeService))

	logger.Infof("services initialized: %v", container.GetNames())
	return nil
}
