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

	"github.com/iotlab/mqtt-exporter/internal/broker"
	"github.com/iotlab/mqtt-exporter/internal/config"
	"github.com/iotlab/mqtt-exporter/internal/handler"
	"github.com/iotlab/mqtt-exporter/internal/metrics"
	"github.com/iotlab/mqtt-exporter/internal/mqtt"
	"github.com/iotlab/mqtt-exporter/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupGracefulShutdown(cancel, cfg)

	registry := metrics.NewRegistry(cfg.MetricPrefix, cfg.TopicLabel, cfg.Logger)
	pipeline := handler.NewPipeline(registry, cfg.MetricPrefix, cfg.IgnoredTopics, cfg.Logger)

	if cfg.DeadLetterEnabled() {
		dl := broker.NewDeadLetterWriter(cfg.KafkaBrokers, cfg.KafkaDLQTopic)
		defer dl.Close()
		pipeline.WithDeadLetter(dl)
		cfg.Logger.Info("dead-letter mirror enabled", "topic", cfg.KafkaDLQTopic)
	}

	srv := server.NewMetricsServer(cfg.PrometheusPort, registry.Gatherer())
	go func() {
		cfg.Logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Logger.Error("metrics server error", "error", err)
			cancel()
		}
	}()

	client := mqtt.BuildClient(cfg, pipeline)
	mqtt.ConnectWithBackoff(ctx, cfg, client, 2*time.Second, 30*time.Second)

	<-ctx.Done()

	client.Disconnect(250)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cfg.Logger.Info("exporter stopped")
}

func setupGracefulShutdown(cancel context.CancelFunc, cfg *config.Config) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		cfg.Logger.Warn("received signal, shutting down", "signal", s.String())
		cancel()
	}()
}
