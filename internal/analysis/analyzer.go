package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ems78/GameOfThrows/internal/engine"
	"github.com/ems78/GameOfThrows/internal/replay"
)

// Mover color for a MoveRecord.
const (
	White = "white"
	Black = "black"
)

// MoveRecord is the judgment of one ply. Records are immutable once
// produced and emitted in strictly increasing ply order.
type MoveRecord struct {
	Ply         int     // 1-based ply index
	MoveNumber  int     // 1-based, increments every two plies
	Color       string  // mover color
	Move        string  // SAN as played
	FEN         string  // position after the move
	Score       float64 // evaluation from the mover's perspective, pawns
	ScoreChange float64 // previous ply's score minus this one, raw
	Mate        bool    // evaluation is a forced mate
	BestMove    string  // engine recommendation in the position
	Label       Label
}

// AnalysisError reports which ply broke a game's analysis. Partial
// results are discarded: downstream consumers assume an all-or-nothing
// game record.
type AnalysisError struct {
	Ply int
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed at ply %d: %v", e.Ply, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Analyzer drives replay, evaluation, and classification across a whole
// game. It owns its Evaluator and holds no other state between calls, but
// because the evaluator may wrap a single engine process, one Analyzer
// must not run two games concurrently.
type Analyzer struct {
	eval engine.Evaluator
	log  zerolog.Logger
}

func NewAnalyzer(eval engine.Evaluator, log zerolog.Logger) *Analyzer {
	return &Analyzer{eval: eval, log: log}
}

// Close releases the owned evaluator.
func (a *Analyzer) Close() error {
	return a.eval.Close()
}

// Analyze replays a SAN move list and judges every ply. The first ply is
// always labeled Opening. Evaluations are requested strictly in move
// order because each classification needs the immediately preceding one.
// Any replay or evaluation failure aborts the game and surfaces as an
// *AnalysisError carrying the failing ply; no partial record list is
// returned.
func (a *Analyzer) Analyze(ctx context.Context, moveText string) ([]MoveRecord, error) {
	positions, err := replay.Replay(moveText)
	if err != nil {
		return nil, &AnalysisError{Ply: len(positions) + 1, Err: err}
	}

	records := make([]MoveRecord, 0, len(positions))
	var prev engine.Evaluation

	for i, pos := range positions {
		ev, err := a.eval.Evaluate(ctx, pos.FEN)
		if err != nil {
			return nil, &AnalysisError{Ply: pos.Ply, Err: err}
		}

		// Evaluations arrive from white's perspective; flip for black
		// movers so positive always means good for the mover.
		if !pos.WhiteMoved {
			ev = ev.Flip()
		}

		rec := MoveRecord{
			Ply:        pos.Ply,
			MoveNumber: (pos.Ply + 1) / 2,
			Color:      White,
			Move:       pos.Move,
			FEN:        pos.FEN,
			Score:      ev.Score,
			Mate:       ev.Mate,
			BestMove:   ev.BestMove,
		}
		if !pos.WhiteMoved {
			rec.Color = Black
		}

		if i == 0 {
			rec.Label = Opening
		} else {
			rec.ScoreChange = prev.Score - ev.Score
			rec.Label = Classify(prev, ev)
		}

		records = append(records, rec)
		prev = ev
	}

	a.log.Debug().
		Int("plies", len(records)).
		Int("blunders", len(Blunders(records))).
		Msg("game analyzed")

	return records, nil
}

// Blunders returns the subset of records labeled Blunder.
func Blunders(records []MoveRecord) []MoveRecord {
	var out []MoveRecord
	for _, r := range records {
		if r.Label == Blunder {
			out = append(out, r)
		}
	}
	return out
}
