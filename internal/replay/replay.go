// Package replay converts SAN move lists into the sequence of board
// positions they pass through.
package replay

import (
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"
)

// Position is an immutable snapshot of the board after one move.
type Position struct {
	FEN        string // full position in FEN
	Move       string // SAN of the move that led here
	Ply        int    // 1-based ply index (1 = after white's first move)
	WhiteMoved bool   // true if white made the move leading here
}

// MoveParseError reports a move that could not be applied to the board.
// Positions produced before the failing move are still returned.
type MoveParseError struct {
	Move  string // offending move text
	Index int    // 0-based index in the move list
	Err   error
}

func (e *MoveParseError) Error() string {
	return fmt.Sprintf("parse move %q at index %d: %v", e.Move, e.Index, e.Err)
}

func (e *MoveParseError) Unwrap() error { return e.Err }

// Replay applies a whitespace-separated SAN move list to the standard
// starting position and returns the position after each move, in order.
// On the first unparseable or illegal move it returns the positions
// produced so far together with a *MoveParseError.
func Replay(moveText string) ([]Position, error) {
	moves := strings.Fields(moveText)
	positions := make([]Position, 0, len(moves))

	game := chess.NewGame()
	for i, san := range moves {
		if err := game.PushNotationMove(san, chess.AlgebraicNotation{}, nil); err != nil {
			return positions, &MoveParseError{Move: san, Index: i, Err: err}
		}
		positions = append(positions, Position{
			FEN:        game.FEN(),
			Move:       san,
			Ply:        i + 1,
			WhiteMoved: i%2 == 0,
		})
	}
	return positions, nil
}
