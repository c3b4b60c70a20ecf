package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"threadscribe.app/bot/common/id"
	"threadscribe.app/bot/common/logger"
	"threadscribe.app/bot/common/otel"
	"threadscribe.app/bot/core/config"
	"threadscribe.app/bot/internal/llm"
	"threadscribe.app/bot/internal/notion"
	"threadscribe.app/bot/internal/pipeline"
	"threadscribe.app/bot/internal/queue"
	"threadscribe.app/bot/internal/slack"
	"threadscribe.app/bot/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "threadscribe worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer)

	// Different node id than the server so snowflakes never collide.
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:    cfg.Pipeline.RedisStream,
		Group:     cfg.Pipeline.RedisGroup,
		Consumer:  cfg.Pipeline.RedisConsumer,
		DLQStream: cfg.Pipeline.RedisDLQStream,
		BatchSize: 1, // Process one mention at a time
		Block:     5 * time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	switcher, err := llm.NewSwitcher(llm.Config{
		Provider:  cfg.LLM.DefaultProvider,
		MaxTokens: cfg.LLM.MaxTokens,
		Anthropic: llm.AnthropicConfig{
			APIKey: cfg.LLM.AnthropicAPIKey,
			Model:  cfg.LLM.AnthropicModel,
		},
		Azure: llm.AzureConfig{
			APIKey:     cfg.LLM.AzureAPIKey,
			Endpoint:   cfg.LLM.AzureEndpoint,
			Deployment: cfg.LLM.AzureDeployment,
			APIVersion: cfg.LLM.AzureAPIVersion,
		},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize llm backend", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm backend ready", "provider", switcher.Provider())

	var persister pipeline.Persister
	if cfg.Notion.Enabled() {
		persister = notion.New(cfg.Notion.APIKey, cfg.Notion.DatabaseID)
		slog.InfoContext(ctx, "notion persistence enabled")
	} else {
		slog.InfoContext(ctx, "notion persistence disabled (no credentials)")
	}

	gateway := slack.New(cfg.Slack.BotToken, cfg.Slack.BotUserID)
	processor := pipeline.NewProcessor(gateway, switcher, persister)

	w := worker.New(consumer, processor, worker.Config{
		MaxAttempts: 1,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Pipeline.RedisStream,
		Group:     cfg.Pipeline.RedisGroup,
		Consumer:  cfg.Pipeline.RedisConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop reclaimer first (quick)
	reclaimer.Stop()

	// Stop worker (may be mid-summary)
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
▀█▀ █░█ █▀█ █▀▀ ▄▀█ █▀▄ █▀ █▀▀ █▀█ █ █▄▄ █▀▀   █░█░█ █▀█ █▀█ █▄▀ █▀▀ █▀█
░█░ █▀█ █▀▄ ██▄ █▀█ █▄▀ ▄█ █▄▄ █▀▄ █ █▄█ ██▄   ▀▄▀▄▀ █▄█ █▀▄ █░█ ██▄ █▀▄
`
