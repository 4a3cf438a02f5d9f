package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aithlete/aithlete/internal/export"
	"github.com/aithlete/aithlete/internal/models"
	"github.com/aithlete/aithlete/internal/render"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	inPath := flag.String("in", "-", "plan JSON file (- for stdin)")
	outPath := flag.String("out", "", "output file (default workout_plan.pdf or workout_plan.xlsx)")
	format := flag.String("format", "pdf", "output format: pdf or xlsx")
	compress := flag.Bool("compress", true, "compress PDF streams")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("aithlete-render", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	data, err := readInput(*inPath)
	if err != nil {
		log.Error("failed to read plan", "path", *inPath, "error", err)
		os.Exit(1)
	}

	// Model output often arrives fenced; accept it as-is.
	if cleaned, err := models.CleanJSON(string(data)); err == nil {
		data = []byte(cleaned)
	}

	plan, err := models.ParsePlan(data)
	if err != nil {
		log.Error("invalid workout plan", "error", err)
		os.Exit(1)
	}

	var out []byte
	switch strings.ToLower(*format) {
	case "pdf":
		opts := render.DefaultOptions()
		opts.Compress = *compress
		out, err = render.New(opts, log).Render(plan)
		if *outPath == "" {
			*outPath = render.FileName
		}
	case "xlsx":
		var buf bytes.Buffer
		err = export.WriteXLSX(plan, &buf)
		out = buf.Bytes()
		if *outPath == "" {
			*outPath = export.FileName
		}
	default:
		fmt.Fprintf(os.Stderr, "Usage: aithlete-render -in plan.json [-format pdf|xlsx] [-out file]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if err != nil {
		log.Error("render failed", "format", *format, "error", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(*outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("failed to create output dir", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		log.Error("failed to write output", "path", *outPath, "error", err)
		os.Exit(1)
	}

	log.Info("plan rendered",
		"format", *format,
		"path", *outPath,
		"days", len(plan.Days),
		"exercises", plan.ExerciseCount(),
		"bytes", len(out),
	)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
