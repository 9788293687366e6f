// Command detect runs one detection job against a local file and prints the
// resulting tracks as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/dgallion1/docdetect/internal/config"
	"github.com/dgallion1/docdetect/internal/detection"
	"github.com/dgallion1/docdetect/internal/language"
	"github.com/dgallion1/docdetect/internal/parser"
	"github.com/dgallion1/docdetect/internal/pipeline"
)

// properties collects repeated -p KEY=VALUE flags.
type properties map[string]string

func (p properties) String() string { return fmt.Sprint(map[string]string(p)) }

func (p properties) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected KEY=VALUE, got %q", v)
	}
	p[k] = val
	return nil
}

func main() {
	cfg := config.Load()
	props := properties{}

	kindFlag := flag.String("type", string(pipeline.KindText), "job type: text or image")
	tika := flag.String("tika", cfg.TikaURL, "Tika Server URL; empty parses locally")
	detector := flag.String("detector", cfg.LanguageDetector, "default language detector (LINGUA, WHATLANG, TIKA)")
	tags := flag.String("tags", cfg.TaggingFile, "tagging rules file")
	imageDir := flag.String("images", cfg.ImageOutputDir, "image output directory")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Var(props, "p", "job property KEY=VALUE (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: detect [flags] FILE\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	kind, ok := pipeline.ParseKind(*kindFlag)
	if !ok {
		log.Error("unknown job type", "type", *kindFlag)
		os.Exit(2)
	}

	var comp pipeline.Component
	switch kind {
	case pipeline.KindImage:
		comp = detection.NewImageComponent(*imageDir, log)
	default:
		text := detection.NewTextComponent(detection.TextConfig{
			Parser: parser.New(parser.Options{
				TikaURL:           *tika,
				FallbackPdftotext: cfg.PDFFallbackPdftotext,
			}),
			Detectors: language.NewRegistry(language.RegistryOptions{
				TikaURL: *tika,
				Preload: cfg.LanguagePreload,
			}, log),
			DefaultDetector: *detector,
			TaggingFile:     *tags,
		}, log)
		if err := text.Init(); err != nil {
			log.Error("initialise text component", "error", err)
			os.Exit(1)
		}
		comp = text
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tracks, err := comp.GetDetections(ctx, detection.Job{
		Name:          "detect",
		MediaPath:     flag.Arg(0),
		JobProperties: props,
	})
	if err != nil {
		log.Error("detection failed", "kind", detection.KindOf(err), "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tracks); err != nil {
		log.Error("write tracks", "error", err)
		os.Exit(1)
	}
}
