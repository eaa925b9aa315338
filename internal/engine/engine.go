// Package engine obtains position evaluations from an external source:
// a local UCI engine process or a remote HTTP evaluation service. Both
// strategies normalize to the same Evaluation shape, with scores from
// white's perspective in pawn units.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrUnavailable indicates the evaluation source could not produce a
// result. It is never substituted with a neutral score; callers decide
// whether to abort or skip.
var ErrUnavailable = errors.New("evaluation unavailable")

// mateBase is the saturated pawn-unit magnitude assigned to a mate in 1.
// Longer mates score closer to zero so that nearer mates compare as more
// extreme, while every mate still dwarfs any realistic centipawn score.
const mateBase = 100

// Evaluation is the normalized result of assessing one position.
type Evaluation struct {
	// Score is in pawn units from white's perspective. For mate
	// evaluations it is a saturated sentinel whose sign encodes the
	// winning side, not a literal centipawn count.
	Score float64

	// Mate reports a forced mate; MateIn is the distance in full moves
	// (always positive, direction carried by the sign of Score).
	Mate   bool
	MateIn int

	// BestMove is the engine's recommended move, when reported.
	BestMove string
}

// Flip returns the evaluation seen from the other side.
func (e Evaluation) Flip() Evaluation {
	e.Score = -e.Score
	return e
}

// mateScore encodes a signed mate-in-N (full moves) as a saturated pawn
// score. Closer mates map to larger magnitudes. A zero distance means
// the scored side has already been checkmated and saturates negative.
func mateScore(mateIn int) float64 {
	dist := mateIn
	sign := 1.0
	if dist <= 0 {
		dist = -dist
		sign = -1.0
	}
	if dist < 1 {
		dist = 1
	}
	if dist > mateBase {
		dist = mateBase
	}
	return sign * float64(mateBase-(dist-1))
}

// Evaluator is the capability the analyzer consumes. Implementations are
// not safe for concurrent use; run one evaluator per goroutine.
type Evaluator interface {
	// Evaluate assesses the position given in FEN at the configured
	// search depth. Failures wrap ErrUnavailable.
	Evaluate(ctx context.Context, fen string) (Evaluation, error)
	// Close releases the underlying resource (engine process or idle
	// connections). Safe to call more than once.
	Close() error
}

// Config selects and tunes an evaluation strategy.
type Config struct {
	EnginePath string // path to a UCI engine binary
	ServiceURL string // remote evaluation endpoint; takes precedence when set
	Depth      int    // search depth, default 15
	HashMB     int    // engine hash table size, local strategy only
	Threads    int    // engine threads, local strategy only
	TimeoutSec int    // remote request timeout in seconds, default 10
	Logger     zerolog.Logger
}

// New builds an Evaluator from cfg: the remote strategy when ServiceURL
// is set, otherwise a local engine process at EnginePath.
func New(cfg Config) (Evaluator, error) {
	if cfg.ServiceURL != "" {
		return NewHTTPEvaluator(cfg)
	}
	if cfg.EnginePath != "" {
		return NewUCIEvaluator(cfg)
	}
	return nil, fmt.Errorf("engine: no strategy configured (need engine path or service URL)")
}
