package analysis

import (
	"fmt"

	"github.com/ems78/GameOfThrows/internal/engine"
)

// Label grades one move, ordered from best to worst.
type Label uint8

const (
	Opening Label = iota // ply 1 only, nothing to compare against
	Best
	Excellent
	Good
	Inaccuracy
	Mistake
	Blunder
)

var labelNames = [...]string{"Opening", "Best", "Excellent", "Good", "Inaccuracy", "Mistake", "Blunder"}

func (l Label) String() string {
	if int(l) < len(labelNames) {
		return labelNames[l]
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// ParseLabel is the inverse of String.
func ParseLabel(s string) (Label, error) {
	for i, name := range labelNames {
		if name == s {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("unknown label %q", s)
}

// Win-probability drop thresholds. Boundary values fall into the
// lower-severity bucket.
const (
	deltaExcellent  = 0.02
	deltaGood       = 0.05
	deltaInaccuracy = 0.10
	deltaMistake    = 0.20
)

// Classify grades the move that led from the position scored prev to the
// position scored cur. Both evaluations use the convention that positive
// means good for the mover. Transitions into or out of forced mates are
// decided before the probability-swing rule: a mate gained is Best, a
// mate conceded or thrown away is a Blunder, a mate escaped is Best.
func Classify(prev, cur engine.Evaluation) Label {
	switch {
	case !prev.Mate && cur.Mate:
		if cur.Score > 0 {
			return Best
		}
		return Blunder
	case prev.Mate && !cur.Mate:
		if prev.Score > 0 {
			return Blunder
		}
		return Best
	}

	return classifyDelta(WinProbability(prev) - WinProbability(cur))
}

// classifyDelta buckets a win-probability drop. Boundary values belong
// to the lower-severity bucket.
func classifyDelta(delta float64) Label {
	switch {
	case delta <= 0:
		return Best
	case delta <= deltaExcellent:
		return Excellent
	case delta <= deltaGood:
		return Good
	case delta <= deltaInaccuracy:
		return Inaccuracy
	case delta <= deltaMistake:
		return Mistake
	default:
		return Blunder
	}
}
