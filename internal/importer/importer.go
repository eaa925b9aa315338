// Package importer drives batch analysis of a game archive and
// populates the blunder graph. Parallelism is at whole-game
// granularity: every worker owns its own evaluation source, because an
// engine process cannot serve two games at once.
package importer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ems78/GameOfThrows/internal/analysis"
	"github.com/ems78/GameOfThrows/internal/dataset"
	"github.com/ems78/GameOfThrows/internal/engine"
	"github.com/ems78/GameOfThrows/internal/graphstore"
)

// Config configures an import run.
type Config struct {
	Engine     engine.Config
	Workers    int  // parallel games; each worker gets its own evaluator
	BatchSize  int  // progress log cadence in games
	SkipFailed bool // skip games whose analysis fails instead of aborting
	Logger     zerolog.Logger

	// NewEvaluator overrides how workers acquire their evaluation
	// source. Defaults to engine.New with the Engine config.
	NewEvaluator func() (engine.Evaluator, error)
}

// Summary counts what one Run did.
type Summary struct {
	Analyzed int64
	Skipped  int64 // already imported
	Failed   int64 // analysis failures (only with SkipFailed)
	Blunders int64
}

// Importer analyzes games and writes blunder records to the store.
type Importer struct {
	cfg   Config
	store *graphstore.Store
	log   zerolog.Logger

	mu sync.Mutex // serializes multi-step store writes
}

// New creates an importer, filling config defaults.
func New(cfg Config, store *graphstore.Store) *Importer {
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.NewEvaluator == nil {
		engCfg := cfg.Engine
		cfg.NewEvaluator = func() (engine.Evaluator, error) { return engine.New(engCfg) }
	}
	return &Importer{cfg: cfg, store: store, log: cfg.Logger}
}

// Run analyzes every game and stores its blunders. Games already in the
// store are skipped. A failed analysis aborts the run unless SkipFailed
// is set, in which case the game is logged and dropped whole — partial
// games are never stored.
func (im *Importer) Run(ctx context.Context, games []dataset.Game) (Summary, error) {
	var sum Summary

	gameChan := make(chan dataset.Game)
	grp, ctx := errgroup.WithContext(ctx)

	for w := 0; w < im.cfg.Workers; w++ {
		grp.Go(func() error {
			ev, err := im.cfg.NewEvaluator()
			if err != nil {
				return err
			}
			analyzer := analysis.NewAnalyzer(ev, im.log)
			defer analyzer.Close()

			for game := range gameChan {
				if err := im.processGame(ctx, analyzer, game, &sum); err != nil {
					var aerr *analysis.AnalysisError
					if im.cfg.SkipFailed && errors.As(err, &aerr) {
						atomic.AddInt64(&sum.Failed, 1)
						im.log.Warn().Err(err).Str("game", game.ID).Msg("analysis failed, skipping game")
						continue
					}
					return err
				}
			}
			return nil
		})
	}

	grp.Go(func() error {
		defer close(gameChan)
		for _, game := range games {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case gameChan <- game:
			}
		}
		return nil
	})

	err := grp.Wait()

	im.log.Info().
		Int64("analyzed", sum.Analyzed).
		Int64("skipped", sum.Skipped).
		Int64("failed", sum.Failed).
		Int64("blunders", sum.Blunders).
		Msg("import finished")

	return sum, err
}

// processGame analyzes one game and, on success, stores it atomically.
func (im *Importer) processGame(ctx context.Context, analyzer *analysis.Analyzer, game dataset.Game, sum *Summary) error {
	im.mu.Lock()
	exists := im.store.HasGame(game.ID)
	im.mu.Unlock()
	if exists {
		atomic.AddInt64(&sum.Skipped, 1)
		return nil
	}

	records, err := analyzer.Analyze(ctx, game.Moves)
	if err != nil {
		return err
	}

	blunders := analysis.Blunders(records)
	if err := im.storeGame(game, blunders); err != nil {
		return err
	}

	analyzed := atomic.AddInt64(&sum.Analyzed, 1)
	atomic.AddInt64(&sum.Blunders, int64(len(blunders)))

	if analyzed%int64(im.cfg.BatchSize) == 0 {
		im.log.Info().
			Int64("analyzed", analyzed).
			Int64("blunders", atomic.LoadInt64(&sum.Blunders)).
			Msg("import progress")
	}
	return nil
}

// storeGame writes the game, both players, the opening, and the blunder
// nodes in one locked section.
func (im *Importer) storeGame(game dataset.Game, blunders []analysis.MoveRecord) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	if im.store.HasGame(game.ID) {
		return nil // raced with another worker
	}

	if err := im.store.AddGame(graphstore.Game{
		ID:          game.ID,
		Result:      game.Result(),
		TimeControl: game.TimeControl,
		ECOCode:     game.OpeningECO,
		Moves:       game.Moves,
	}); err != nil {
		return err
	}
	if err := im.store.AddOpening(graphstore.Opening{
		ECO:  game.OpeningECO,
		Name: game.OpeningName,
		Ply:  game.OpeningPly,
	}); err != nil {
		return err
	}
	if err := im.store.LinkGameOpening(game.ID, game.OpeningECO); err != nil {
		return err
	}

	players := []struct {
		id     string
		color  string
		rating int
	}{
		{game.WhiteID, analysis.White, game.WhiteRating},
		{game.BlackID, analysis.Black, game.BlackRating},
	}
	for _, p := range players {
		if err := im.store.AddPlayer(graphstore.Player{ID: p.id, Username: p.id, Rating: p.rating}); err != nil {
			return err
		}
		if err := im.store.LinkPlayerGame(p.id, game.ID, p.color, p.rating); err != nil {
			return err
		}
	}

	for _, rec := range blunders {
		playerID, rating := game.WhiteID, game.WhiteRating
		if rec.Color == analysis.Black {
			playerID, rating = game.BlackID, game.BlackRating
		}
		if err := im.store.AddBlunder(graphstore.Blunder{
			ID:         uuid.NewString(),
			GameID:     game.ID,
			PlayerID:   playerID,
			Rating:     rating,
			MoveNumber: rec.MoveNumber,
			Move:       rec.Move,
			BestMove:   rec.BestMove,
			FEN:        rec.FEN,
			Eval:       rec.Score,
			EvalChange: rec.ScoreChange,
			Mate:       rec.Mate,
			Severity:   graphstore.Severity(rec.ScoreChange, rec.Mate),
		}); err != nil {
			return err
		}
	}
	return nil
}
