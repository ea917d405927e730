package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/sentitable/config"
	"github.com/spacesedan/sentitable/internal/clients"
	"github.com/spacesedan/sentitable/internal/clients/kafka_client"
	"github.com/spacesedan/sentitable/internal/db"
	"github.com/spacesedan/sentitable/internal/enrichment"
	"github.com/spacesedan/sentitable/internal/logging"
	"github.com/spacesedan/sentitable/internal/monitoring"
	"github.com/spacesedan/sentitable/internal/web"
	"github.com/spacesedan/sentitable/internal/widget"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("info")
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	classifier, probe, err := clients.NewClassifier(clients.ClassifierOptions{
		Provider:      cfg.Provider,
		GeminiBaseURL: cfg.GeminiBaseURL,
		GeminiModel:   cfg.GeminiModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
		Timeout:       cfg.ClassifyTimeout,
	})
	if err != nil {
		slog.Error("[Main] Failed to create classifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var background sync.WaitGroup
	var sinks []enrichment.ResultSink

	if cfg.ResultsTable != "" {
		ddb, err := clients.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			slog.Error("[Main] Failed to create DynamoDB client", slog.String("error", err.Error()))
			os.Exit(1)
		}
		results := db.NewResultTable(ddb, cfg.ResultsTable, cfg.ResultBatchSize)
		sinks = append(sinks, results)
		background.Add(1)
		go func() {
			defer background.Done()
			results.Run(ctx)
		}()
	}

	kafkaCfg := kafka_client.KafkaConfig{Broker: cfg.KafkaBroker, Topic: cfg.ResultsTopic}
	if kafkaCfg.Enabled() {
		var publisher *kafka_client.ResultPublisher
		for {
			publisher, err = kafka_client.NewResultPublisher(kafkaCfg)
			if err == nil {
				break
			}
			slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	var store widget.StateStore
	if cfg.ValkeyAddress != "" {
		vs, err := clients.NewValkeyStateStore(clients.ValkeyOptions{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			UseTLS:   cfg.ValkeyTLS,
		})
		if err != nil {
			slog.Error("[Main] Failed to connect to valkey", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer vs.Close()
		store = vs
	}

	coordinator := enrichment.NewCoordinator(classifier,
		enrichment.WithMaxConcurrency(cfg.MaxConcurrency),
		enrichment.WithSinks(sinks...))

	healthy := &atomic.Bool{}
	healthy.Store(true)
	if probe != nil {
		go monitoring.MonitorClassifierHealth(ctx, classifier.Name(), healthy, probe)
	}

	registry := widget.NewRegistry(ctx, coordinator, store)
	server := web.NewServer(registry, classifier.Name(), healthy)

	go func() {
		if err := server.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] Server shutdown failed", slog.String("error", err.Error()))
	}

	registry.Close()
	coordinator.Wait()
	background.Wait()
	slog.Info("[Main] Shutdown complete")
}
