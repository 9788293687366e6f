package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docdetect/internal/api"
	"github.com/dgallion1/docdetect/internal/config"
	"github.com/dgallion1/docdetect/internal/detection"
	"github.com/dgallion1/docdetect/internal/language"
	"github.com/dgallion1/docdetect/internal/parser"
	"github.com/dgallion1/docdetect/internal/pipeline"
	"github.com/dgallion1/docdetect/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error("open result store", "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}

	// Initialize components.
	text := detection.NewTextComponent(detection.TextConfig{
		Parser: parser.New(parser.Options{
			TikaURL:           cfg.TikaURL,
			FallbackPdftotext: cfg.PDFFallbackPdftotext,
		}),
		Detectors: language.NewRegistry(language.RegistryOptions{
			TikaURL: cfg.TikaURL,
			Preload: cfg.LanguagePreload,
		}, log),
		DefaultDetector: cfg.LanguageDetector,
		TaggingFile:     cfg.TaggingFile,
	}, log)
	if err := text.Init(); err != nil {
		log.Error("initialise text component", "error", err)
		os.Exit(1)
	}
	components := map[pipeline.Kind]pipeline.Component{
		pipeline.KindText:  text,
		pipeline.KindImage: detection.NewImageComponent(cfg.ImageOutputDir, log),
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, components, results, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. In-flight requests finish before the queue closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()

		if err := results.Close(); err != nil {
			log.Warn("close result store", "error", err)
		}
	}()

	log.Info("starting docdetect", "port", cfg.Port, "tika", cfg.TikaURL != "", "language_detector", cfg.LanguageDetector)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
