package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/plancoach/internal/coach"
	"github.com/claude/plancoach/internal/config"
	"github.com/claude/plancoach/internal/mcp"
	"github.com/claude/plancoach/internal/metrics"
	"github.com/claude/plancoach/internal/server"
	"github.com/claude/plancoach/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (defaults and PLANCOACH_* env vars when empty)")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	log.Info("PlanCoach starting", "version", Version, "store", cfg.Store.Driver)

	opts := cfg.Store.Options()
	if *migrateOnly {
		if opts.Driver != storage.DriverPostgres {
			log.Info("migrate-only: nothing to migrate", "driver", opts.Driver)
			return
		}
		if err := storage.RunMigrations(opts.PostgresDSN, opts.Migrations); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied, exiting")
		return
	}

	// Open store
	ctx := context.Background()
	kv, err := storage.Open(ctx, opts)
	if err != nil {
		log.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	store := storage.NewWorkoutStore(kv, cfg.Store.Key, log)
	log.Info("store opened", "key", store.Key())

	// Coach is optional: without an API key the chat endpoints answer 503.
	var c *coach.Coach
	if cfg.LLM.APIKey != "" {
		client := coach.NewClient(coach.ClientConfig{
			BaseURL:       cfg.LLM.BaseURL,
			APIKey:        cfg.LLM.APIKey,
			Model:         cfg.LLM.Model,
			FallbackModel: cfg.LLM.FallbackModel,
			Temperature:   cfg.LLM.Temperature,
			MaxTokens:     cfg.LLM.MaxTokens,
			Timeout:       cfg.LLM.Timeout,
		}, log)
		c = coach.New(client, store, log)
		log.Info("coach enabled", "model", cfg.LLM.Model)
	} else {
		log.Warn("llm.api_key not set, coach disabled")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	m := metrics.NewManager("plancoach", "server", reg)

	// Create server
	srv := server.New(store, c, m, log)
	srv.Mount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv.Mount("/mcp", mcpserver.NewStreamableHTTPServer(mcp.New(store, Version, log)))

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
