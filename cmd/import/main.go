package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ems78/GameOfThrows/internal/config"
	"github.com/ems78/GameOfThrows/internal/dataset"
	"github.com/ems78/GameOfThrows/internal/engine"
	"github.com/ems78/GameOfThrows/internal/graphstore"
	"github.com/ems78/GameOfThrows/internal/importer"
	"github.com/ems78/GameOfThrows/internal/logx"
)

func main() {
	defaults := config.Default()

	defaultStockfish := defaults.Engine.Path
	if envPath := os.Getenv("STOCKFISH_PATH"); envPath != "" {
		defaultStockfish = envPath
	}

	var (
		configPath = flag.String("config", "", "optional YAML config file")

		// Dataset
		datasetPath = flag.String("dataset", defaults.Dataset.Path, "games CSV file (.csv or .csv.zst)")
		maxGames    = flag.Int("max-games", defaults.Dataset.SampleSize, "maximum games to import (0 = all)")
		minRating   = flag.Int("min-rating", defaults.Dataset.MinRating, "minimum rating for both players")

		// Evaluation source
		stockfishPath = flag.String("stockfish", defaultStockfish, "path to a UCI engine executable")
		serviceURL    = flag.String("service-url", defaults.Engine.ServiceURL, "remote evaluation service URL (overrides -stockfish)")
		depth         = flag.Int("depth", defaults.Engine.Depth, "search depth per position")

		// Import behavior
		workers    = flag.Int("workers", defaults.Import.Workers, "parallel games (one engine per worker)")
		batchSize  = flag.Int("batch-size", defaults.Import.BatchSize, "progress log cadence in games")
		skipFailed = flag.Bool("skip-failed", defaults.Import.SkipFailed, "skip games whose analysis fails instead of aborting")

		// Output
		outPath = flag.String("out", "blunders.csv.zst", "blunder export file (.csv or .csv.zst)")
	)
	flag.Parse()

	logger := logx.NewLogger(defaults.LogLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger = logger.Level(logx.ParseLevel(cfg.LogLevel))

	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dataset":
			cfg.Dataset.Path = *datasetPath
		case "max-games":
			cfg.Dataset.SampleSize = *maxGames
		case "min-rating":
			cfg.Dataset.MinRating = *minRating
		case "stockfish":
			cfg.Engine.Path = *stockfishPath
		case "service-url":
			cfg.Engine.ServiceURL = *serviceURL
		case "depth":
			cfg.Engine.Depth = *depth
		case "workers":
			cfg.Import.Workers = *workers
		case "batch-size":
			cfg.Import.BatchSize = *batchSize
		case "skip-failed":
			cfg.Import.SkipFailed = *skipFailed
		}
	})
	if cfg.Engine.Path == "" {
		cfg.Engine.Path = *stockfishPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	games, err := dataset.Load(cfg.Dataset.Path, dataset.Options{
		MaxGames:  cfg.Dataset.SampleSize,
		MinRating: cfg.Dataset.MinRating,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Dataset.Path).Msg("load dataset")
	}

	store := graphstore.New(logger)
	imp := importer.New(importer.Config{
		Engine: engine.Config{
			EnginePath: cfg.Engine.Path,
			ServiceURL: cfg.Engine.ServiceURL,
			Depth:      cfg.Engine.Depth,
			HashMB:     cfg.Engine.HashMB,
			Threads:    cfg.Engine.Threads,
			TimeoutSec: cfg.Engine.TimeoutSec,
			Logger:     logger,
		},
		Workers:    cfg.Import.Workers,
		BatchSize:  cfg.Import.BatchSize,
		SkipFailed: cfg.Import.SkipFailed,
		Logger:     logger,
	}, store)

	sum, err := imp.Run(ctx, games)
	if err != nil {
		logger.Fatal().Err(err).Msg("import failed")
	}

	stats := store.Stats()
	logger.Info().
		Int("players", stats.Players).
		Int("games", stats.Games).
		Int("openings", stats.Openings).
		Int("blunders", stats.Blunders).
		Int("edges", stats.Edges).
		Msg("graph populated")

	if sum.Blunders > 0 || stats.Blunders > 0 {
		if err := store.ExportFile(*outPath); err != nil {
			logger.Fatal().Err(err).Str("path", *outPath).Msg("export blunders")
		}
		logger.Info().Str("path", *outPath).Msg("blunders exported")
	}
}
