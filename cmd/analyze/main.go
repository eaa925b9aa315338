package main

import (
	"flag"

	"github.com/ems78/GameOfThrows/internal/config"
	"github.com/ems78/GameOfThrows/internal/graphstore"
	"github.com/ems78/GameOfThrows/internal/logx"
)

func main() {
	defaults := config.Default()

	var (
		inputPath        = flag.String("input", "blunders.csv.zst", "blunder export to analyze (.csv or .csv.zst)")
		minCommunitySize = flag.Int("min-community-size", defaults.Analysis.MinCommunitySize, "minimum players per community")
		topPairs         = flag.Int("top-pairs", defaults.Analysis.TopPairs, "similarity pairs to report")
		topPlayers       = flag.Int("top-players", 10, "players to report in the blunder ranking")
		sharedLimit      = flag.Int("shared-positions", 10, "shared positions to report per community")
		logLevel         = flag.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := logx.NewLogger(*logLevel)

	store := graphstore.New(logger)
	if err := store.ImportFile(*inputPath); err != nil {
		logger.Fatal().Err(err).Str("path", *inputPath).Msg("load blunder export")
	}

	stats := store.Stats()
	logger.Info().
		Int("players", stats.Players).
		Int("games", stats.Games).
		Int("blunders", stats.Blunders).
		Int("edges", stats.Edges).
		Msg("graph loaded")

	playerStats := store.PlayerBlunderStats()
	if len(playerStats) > *topPlayers {
		playerStats = playerStats[:*topPlayers]
	}
	for _, ps := range playerStats {
		logger.Info().
			Str("player", ps.Username).
			Int("rating", ps.Rating).
			Int("blunders", ps.BlunderCount).
			Float64("avg_eval_change", ps.AvgEvalChange).
			Float64("max_eval_change", ps.MaxEvalChange).
			Msg("player blunder stats")
	}

	communities, err := store.Communities(*minCommunitySize)
	if err != nil {
		logger.Fatal().Err(err).Msg("community detection")
	}
	logger.Info().Int("communities", len(communities)).Msg("blunder communities detected")
	for i, community := range communities {
		logger.Info().
			Int("community", i).
			Int("size", len(community)).
			Strs("players", community).
			Msg("community members")
		for _, sp := range store.SharedPositions(community, *sharedLimit) {
			logger.Info().
				Int("community", i).
				Str("fen", sp.FEN).
				Int("players", sp.Players).
				Float64("pct", sp.Percentage).
				Msg("shared blunder position")
		}
	}

	for _, sim := range store.SimilarityEdges(*topPairs) {
		logger.Info().
			Str("player1", sim.Player1).
			Str("player2", sim.Player2).
			Float64("weight", sim.Weight).
			Int("rating_diff", sim.RatingDiff).
			Msg("blunder similarity")
	}
}
