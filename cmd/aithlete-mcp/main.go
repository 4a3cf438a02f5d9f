package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/aithlete/aithlete/internal/coach"
	"github.com/aithlete/aithlete/internal/config"
	"github.com/aithlete/aithlete/internal/gemini"
	aithletemcp "github.com/aithlete/aithlete/internal/mcp"
	"github.com/aithlete/aithlete/internal/render"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode; empty for environment only)")
	remoteURL := flag.String("remote", "", "Aithlete server URL; generation is forwarded to its REST API")
	apiKey := flag.String("api-key", os.Getenv("AITHLETE_AUTH_API_KEY"), "API key for -remote")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("aithlete-mcp", Version)
		return
	}

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var c aithletemcp.Coach
	if *remoteURL != "" {
		c = aithletemcp.NewHTTPClient(*remoteURL, *apiKey)
		log.Info("remote mode", "server", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		client := gemini.New(gemini.Options{
			APIKey:        cfg.Gemini.APIKey,
			BaseURL:       cfg.Gemini.BaseURL,
			Timeout:       cfg.Gemini.Timeout,
			MaxRetries:    cfg.Gemini.MaxRetries,
			FallbackModel: cfg.Gemini.FallbackModel,
		}, log)
		c = coach.New(client, coach.Models{Plan: cfg.Gemini.PlanModel, Advice: cfg.Gemini.AdviceModel}, log)
		log.Info("local mode", "plan_model", cfg.Gemini.PlanModel)
	}

	s := aithletemcp.New(c, render.New(render.DefaultOptions(), log), Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
