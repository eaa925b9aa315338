package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/freeeve/uci"
	"github.com/rs/zerolog"
)

// UCIEvaluator wraps a long-lived UCI engine process. The process is
// started on construction and terminated by Close on every exit path;
// the engine is not assumed reentrant, so one evaluator must not be
// driven by two games at once.
type UCIEvaluator struct {
	engine *uci.Engine
	depth  int
	log    zerolog.Logger

	closeOnce sync.Once
}

// NewUCIEvaluator starts the engine at cfg.EnginePath and applies the
// configured options.
func NewUCIEvaluator(cfg Config) (*UCIEvaluator, error) {
	if cfg.EnginePath == "" {
		return nil, fmt.Errorf("engine path required")
	}
	if cfg.Depth == 0 {
		cfg.Depth = 15
	}
	if cfg.HashMB == 0 {
		cfg.HashMB = 128
	}
	if cfg.Threads == 0 {
		cfg.Threads = 1
	}

	eng, err := uci.NewEngine(cfg.EnginePath)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	opts := uci.Options{
		Hash:    cfg.HashMB,
		Threads: cfg.Threads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err := eng.SetOptions(opts); err != nil {
		eng.Close()
		return nil, fmt.Errorf("set options: %w", err)
	}

	return &UCIEvaluator{
		engine: eng,
		depth:  cfg.Depth,
		log:    cfg.Logger,
	}, nil
}

// Evaluate runs a depth-limited search and returns the normalized result.
// The search itself is not cancellable mid-flight; ctx is checked before
// the engine is invoked.
func (u *UCIEvaluator) Evaluate(ctx context.Context, fen string) (Evaluation, error) {
	select {
	case <-ctx.Done():
		return Evaluation{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	default:
	}

	if err := u.engine.SetFEN(fen); err != nil {
		return Evaluation{}, fmt.Errorf("%w: set FEN: %v", ErrUnavailable, err)
	}

	results, err := u.engine.GoDepth(u.depth, uci.HighestDepthOnly)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: engine search: %v", ErrUnavailable, err)
	}
	if len(results.Results) == 0 {
		return Evaluation{}, fmt.Errorf("%w: no results from engine", ErrUnavailable)
	}

	best := results.Results[0]
	for _, r := range results.Results {
		if r.Depth > best.Depth {
			best = r
		}
	}

	ev := normalizeScore(best.Score, best.Mate, strings.Contains(fen, " b "))
	ev.BestMove = results.BestMove

	u.log.Debug().
		Str("fen", fen).
		Float64("score", ev.Score).
		Bool("mate", ev.Mate).
		Str("bestmove", ev.BestMove).
		Msg("engine evaluation")

	return ev, nil
}

// normalizeScore converts an engine-relative score to a white-perspective
// Evaluation. UCI scores are relative to the side to move, so black's
// scores invert. "mate 0" is reported signless and means the mover has
// already been checkmated: the position is won by the side not on move.
func normalizeScore(score int, mate, blackToMove bool) Evaluation {
	if blackToMove {
		score = -score
	}

	var ev Evaluation
	switch {
	case mate && score == 0:
		ev.Mate = true
		ev.Score = -float64(mateBase)
		if blackToMove {
			ev.Score = float64(mateBase)
		}
	case mate:
		ev.Mate = true
		ev.MateIn = score
		if ev.MateIn < 0 {
			ev.MateIn = -ev.MateIn
		}
		ev.Score = mateScore(score)
	default:
		ev.Score = float64(score) / 100
	}
	return ev
}

// Close terminates the engine process.
func (u *UCIEvaluator) Close() error {
	u.closeOnce.Do(func() {
		if u.engine != nil {
			u.engine.Close()
		}
	})
	return nil
}
