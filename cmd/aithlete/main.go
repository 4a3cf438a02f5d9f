package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	aithlete "github.com/aithlete/aithlete"
	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/config"
	"github.com/aithlete/aithlete/internal/gemini"
	"github.com/aithlete/aithlete/internal/render"
	"github.com/aithlete/aithlete/internal/server"
	"github.com/aithlete/aithlete/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (empty for environment only)")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("Aithlete starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Database.Driver != config.DriverPostgres {
			log.Error("migrate-only requires database.driver postgres", "driver", cfg.Database.Driver)
			os.Exit(1)
		}
		if err := storage.RunMigrations(cfg.Database.DSN(), cfg.Database.Migrations); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open generation log", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Create services
	client := gemini.New(gemini.Options{
		APIKey:        cfg.Gemini.APIKey,
		BaseURL:       cfg.Gemini.BaseURL,
		Timeout:       cfg.Gemini.Timeout,
		MaxRetries:    cfg.Gemini.MaxRetries,
		FallbackModel: cfg.Gemini.FallbackModel,
	}, log)
	svc := coach.New(client, coach.Models{Plan: cfg.Gemini.PlanModel, Advice: cfg.Gemini.AdviceModel}, log)

	renderOpts := render.DefaultOptions()
	renderOpts.Compress = cfg.Render.CompressOutput()
	renderer := render.New(renderOpts, log)

	webFS, err := fs.Sub(aithlete.WebFS, "web")
	if err != nil {
		log.Error("failed to load embedded web assets", "error", err)
		os.Exit(1)
	}

	// Create server
	srv, err := server.New(svc, renderer, store, webFS, cfg.Auth.APIKey, log)
	if err != nil {
		log.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	if cfg.Auth.APIKey == "" {
		log.Warn("auth.api_key is empty: /api/v1 is unauthenticated")
	}

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
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

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

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

// openStore opens the generation log for the configured driver.
func openStore(ctx context.Context, db config.DatabaseConfig, log *slog.Logger) (storage.Store, error) {
	switch db.Driver {
	case config.DriverPostgres:
		pg, err := storage.NewPostgres(ctx, db.DSN(), db.Migrations)
		if err != nil {
			return nil, err
		}
		log.Info("generation log connected", "driver", db.Driver, "host", db.Host, "name", db.Name)
		return pg, nil
	case config.DriverSQLite:
		lite, err := storage.OpenSQLite(db.Path)
		if err != nil {
			return nil, err
		}
		log.Info("generation log opened", "driver", db.Driver, "path", db.Path)
		return lite, nil
	default:
		log.Info("generation log disabled")
		return storage.Nop{}, nil
	}
}
