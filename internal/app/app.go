// internal/app/app.go
package app

import (
	"fmt"
	"time"

	"github.com/simforge/studio3d/internal/api"
	"github.com/simforge/studio3d/internal/config"
	"github.com/simforge/studio3d/internal/di"
	"github.com/simforge/studio3d/internal/parser"
	"github.com/simforge/studio3d/internal/scene"
	"github.com/simforge/studio3d/internal/services"
	"github.com/simforge/studio3d/internal/storage"
)

// InitServices builds the service graph and registers it in the DI
// container, in dependency order.
func InitServices(cfg *config.Config) error {
	container := di.GetContainer()

	fileStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	container.Register("storage", fileStorage)

	sceneService := services.NewSceneService(fileStorage,
		time.Duration(cfg.CameraTransitionMS)*time.Millisecond)
	container.Register("scene", sceneService)

	hub := api.NewHub()
	sceneService.SetOnChange(hub.BroadcastState)
	container.Register("hub", hub)

	defaults := parser.StandardDefaults()
	defaults.HighlightDurationMS = cfg.HighlightDurationMS
	promptParser := parser.NewParser(parser.NewResolver(), defaults)
	container.Register("parser", promptParser)

	history := scene.NewHistoryLog(cfg.HistoryLimit)
	container.Register("history", history)

	promptService := services.NewPromptService(promptParser, sceneService, history)
	container.Register("prompt", promptService)

	sceneService.Run(time.Duration(cfg.TickIntervalMS) * time.Millisecond)

	return nil
}

// ShutdownServices stops background work in reverse dependency order.
func ShutdownServices() {
	container := di.GetContainer()

	if svc, ok := container.Get("scene").(*services.SceneService); ok {
		svc.Stop()
	}
	if hub, ok := container.Get("hub").(*api.Hub); ok {
		hub.Shutdown()
	}
}
