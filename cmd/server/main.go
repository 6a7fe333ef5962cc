// Command server runs the AI text-processing gateway.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/meshworks/textgate/internal/api"
	"github.com/meshworks/textgate/internal/auth"
	"github.com/meshworks/textgate/internal/cache"
	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/llm"
	"github.com/meshworks/textgate/internal/observability"
	"github.com/meshworks/textgate/internal/processing"
	"github.com/meshworks/textgate/internal/resilience"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	logger := observability.LoggerFromEnv("textgate")

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Info("Starting gateway", map[string]interface{}{
		"version":     api.Version,
		"environment": string(settings.Environment),
		"provider":    settings.LLM.Provider,
	})

	recorder := observability.NewRecorder(0)

	authService, err := auth.NewService(settings.Auth, settings.Environment, settings.Features, logger)
	if err != nil {
		log.Fatalf("Failed to initialize authentication: %v", err)
	}
	if authService.Permissive() {
		logger.Warn("no API keys configured, running in permissive development mode", nil)
	}

	tiered, err := cache.NewTieredCache(cache.TieredConfig{
		PresetName:    cachePresetName(settings),
		RedisURL:      settings.Cache.RedisURL,
		EncryptionKey: settings.Cache.EncryptionKey,
		Strict:        settings.Environment == config.EnvProduction,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer func() {
		if err := tiered.Close(); err != nil {
			logger.Error("Failed to close cache", map[string]interface{}{"error": err.Error()})
		}
	}()
	logger.Info("Cache ready", map[string]interface{}{"type": tiered.Type()})

	preset, err := resilience.GetPreset(settings.ResiliencePre)
	if err != nil {
		log.Fatalf("Failed to load resilience preset: %v", err)
	}
	preset, err = resilience.ApplyCustomConfig(preset, settings.ResilienceJSON)
	if err != nil {
		log.Fatalf("Failed to apply RESILIENCE_CUSTOM_CONFIG: %v", err)
	}
	if result := resilience.ValidatePreset(preset); !result.IsValid {
		log.Fatalf("Resilience preset is invalid: %v", result.Errors)
	} else {
		for _, warning := range result.Warnings {
			logger.Warn("resilience preset warning", map[string]interface{}{"warning": warning})
		}
	}
	engine := resilience.NewService(resilience.ServiceConfig{
		Preset:   preset,
		Logger:   logger.WithPrefix("resilience"),
		Recorder: recorder,
	})
	recorder.Append(observability.MetricRecord{Type: observability.MetricConfigLoad, Preset: preset.Name})

	provider, err := llm.NewProvider(settings.LLM, logger.WithPrefix("llm"))
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	pipeline := processing.NewService(
		processing.NewSanitizer(settings.InputMaxLength),
		tiered,
		engine,
		provider,
		recorder,
		logger.WithPrefix("pipeline"),
	)
	batch := processing.NewBatchOrchestrator(pipeline, settings.BatchConcur)

	server := api.NewServer(settings, authService, tiered, engine, pipeline, batch, provider, recorder, logger.WithPrefix("api"))
	httpServer := server.HTTPServer()

	go func() {
		logger.Info("Listening", map[string]interface{}{"address": settings.ListenAddress})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutting down", map[string]interface{}{"signal": sig.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("Shutdown complete", nil)
}

// cachePresetName upgrades the configured preset to its AI-tuned variant
// when ENABLE_AI_CACHE is set.
func cachePresetName(settings *config.Settings) string {
	name := settings.Cache.Preset
	if !settings.Cache.EnableAICache {
		return name
	}
	switch name {
	case "development", "production":
		return "ai-" + name
	}
	return name
}
