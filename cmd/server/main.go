// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weblife-game/weblife/internal/api"
	"github.com/weblife-game/weblife/internal/app"
	"github.com/weblife-game/weblife/internal/config"
	"github.com/weblife-game/weblife/internal/di"
	"github.com/weblife-game/weblife/internal/utils"
)

func main() {
	log.Println("starting weblife server...")

	baseConfig, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration failed: %v", err)
	}

	createDirectories(baseConfig)

	if err := config.InitConfig(baseConfig.DataDir); err != nil {
		log.Fatalf("initializing configuration failed: %v", err)
	}

	if err := utils.InitLogger(filepath.Join(baseConfig.LogDir, "server.log")); err != nil {
		log.Printf("warning: file logging disabled: %v", err)
	}
	if baseConfig.DebugMode {
		utils.GetLogger().SetLogLevel(utils.DEBUG)
	}

	if err := app.InitServices(); err != nil {
		log.Fatalf("initializing services failed: %v", err)
	}

	if err := performHealthCheck(); err != nil {
		log.Fatalf("service health check failed: %v", err)
	}

	router, err := api.SetupRouter()
	if err != nil {
		log.Fatalf("setting up routes failed: %v", err)
	}

	log.Printf("listening on port %s", baseConfig.Port)
	runWithGracefulShutdown(router, baseConfig.Port)
}

// performHealthCheck verifies the critical services got registered.
func performHealthCheck() error {
	container := di.GetContainer()

	for _, name := range []string{"narrative", "session", "turn", "social", "config"} {
		if container.Get(name) == nil {
			return fmt.Errorf("critical service not registered: %s", name)
		}
	}
	return nil
}

// runWithGracefulShutdown serves until SIGINT/SIGTERM, then drains
// in-flight requests before exiting.
func runWithGracefulShutdown(router *gin.Engine, port string) {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced server shutdown: %v", err)
	}

	log.Println("server stopped")
}

// createDirectories prepares the data layout before anything writes.
func createDirectories(cfg *config.Config) {
	dirs := []string{
		cfg.DataDir,
		filepath.Join(cfg.DataDir, "archive"),
		cfg.LogDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("creating directory %s failed: %v", dir, err)
		}
	}
}
