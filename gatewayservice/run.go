// Package gatewayservice wires and runs the AI gateway: the prompt
// builders, the chat-completion client, and the /categorize HTTP
// surface consumed by the capture service.
package gatewayservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mindstash/mindstash/internal/config"
	"github.com/mindstash/mindstash/internal/gateway"
	"github.com/mindstash/mindstash/internal/llm"
	"github.com/mindstash/mindstash/internal/platform/logger"
)

// Run starts the gateway HTTP server and blocks until shutdown or error.
func Run() error {
	_ = godotenv.Load()

	log := logger.New("mindstash-gateway")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if cfg.LLMAPIKey == "" {
		err := fmt.Errorf("MINDSTASH_LLM_API_KEY is required")
		log.Error().Err(err).Msg("Missing API key")
		return err
	}

	log.Info().
		Int("gateway_port", cfg.GatewayPort).
		Str("llm_model", cfg.LLMModel).
		Msg("Gateway starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := llm.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens,
		time.Duration(cfg.LLMTimeoutSecs)*time.Second)
	router := gateway.NewRouter(gateway.NewHandler(client, log))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.GatewayPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Generous write timeout: completions can take most of the LLM budget.
		WriteTimeout: time.Duration(cfg.LLMTimeoutSecs+15) * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.GatewayPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down gateway")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Gateway exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}
