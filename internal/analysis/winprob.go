// Package analysis turns raw move lists into graded per-move judgments:
// it replays the game, collects evaluations, converts them to win
// probabilities, and classifies every move by how much of the mover's
// winning chances it gave away.
package analysis

import (
	"math"

	"github.com/ems78/GameOfThrows/internal/engine"
)

// winProbSlope is the sigmoid slope per pawn of advantage. Matches the
// common win-probability convention used by online analysis tools.
const winProbSlope = 0.368208

// WinProbability maps an evaluation to the probability in [0,1] that the
// evaluated side wins. Forced mates are certain, so they map to the exact
// extremes rather than a large-but-finite probability; finite scores pass
// through a sigmoid that is 0.5 at zero and strictly inside (0,1).
func WinProbability(ev engine.Evaluation) float64 {
	if ev.Mate {
		if ev.Score > 0 {
			return 1.0
		}
		return 0.0
	}
	return 1 / (1 + math.Exp(-winProbSlope*ev.Score))
}
