package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/plancoach/internal/config"
	"github.com/claude/plancoach/internal/storage"
	"github.com/claude/plancoach/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (local mode)")
	serverURL := flag.String("server", "", "PlanCoach server URL; imports through the API instead of the local store")
	exportPath := flag.String("path", "", "path to a saved-workouts JSON export (.json or .json.gz)")
	dryRun := flag.Bool("dry-run", false, "validate and count without writing")
	batchSize := flag.Int("batch-size", 100, "workouts per import batch")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("plancoach-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: plancoach-import -path workouts.json [-config config.yaml | -server URL] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	exp, err := upload.ReadExport(*exportPath)
	if err != nil {
		log.Error("failed to read export", "error", err)
		os.Exit(1)
	}
	log.Info("export loaded", "path", *exportPath, "workouts", len(exp.Workouts), "undecodable", exp.Undecodable)

	if *dryRun {
		log.Info("DRY RUN mode - nothing will be written")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var dest upload.Importer

	switch {
	case *dryRun:
	case *serverURL != "":
		dest = upload.RemoteImporter{Client: upload.NewClient(*serverURL)}
		log.Info("importing through server", "url", *serverURL)
	default:
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		kv, err := storage.Open(ctx, cfg.Store.Options())
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer kv.Close()
		dest = storage.NewWorkoutStore(kv, cfg.Store.Key, log)
		log.Info("importing into local store", "driver", cfg.Store.Driver)
	}

	stats, err := upload.New(dest, *dryRun, *batchSize, log).Run(ctx, exp)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *upload.Stats) {
	log.Info("import stats",
		"read", stats.Read,
		"valid", stats.Valid,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"invalid", stats.Invalid,
		"batches", stats.Batches,
	)
}
