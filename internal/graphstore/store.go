// Package graphstore maintains the blunder graph: players, games,
// openings, and blunder nodes with typed relationships between them,
// plus the pattern analysis that runs on top (player statistics,
// similarity weighting, and shared-blunder communities).
package graphstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvlath/core"
	"github.com/rs/zerolog"
)

// Vertex ID namespaces. Relationship types follow from the endpoint
// kinds: player->game is PLAYED_IN, player->blunder is MADE_BLUNDER,
// blunder->game is IN, game->opening is USES.
const (
	playerPrefix  = "player:"
	gamePrefix    = "game:"
	openingPrefix = "opening:"
	blunderPrefix = "blunder:"
)

// Player is a chess player vertex.
type Player struct {
	ID       string
	Username string
	Rating   int
}

// Game is a recorded game vertex.
type Game struct {
	ID          string
	Result      string
	TimeControl string
	ECOCode     string
	Moves       string // SAN move list as imported
}

// Opening is an ECO opening vertex shared across games.
type Opening struct {
	ECO  string
	Name string
	Ply  int
}

// Blunder is one persisted blunder node. Only moves classified as
// blunders reach the store; that policy lives in the importer.
type Blunder struct {
	ID         string // generated unique identifier
	GameID     string
	PlayerID   string
	Rating     int // mover's rating at game time
	MoveNumber int
	Move       string // SAN played
	BestMove   string
	FEN        string // position after the move
	Eval       float64
	EvalChange float64
	Mate       bool
	Severity   string
}

// Severity buckets the stored blunder magnitude for downstream queries.
func Severity(evalChange float64, mate bool) string {
	abs := evalChange
	if abs < 0 {
		abs = -abs
	}
	switch {
	case mate || abs > 2:
		return "high"
	case abs > 1:
		return "medium"
	default:
		return "low"
	}
}

// playedIn carries per-edge attributes for player->game relationships.
type playedIn struct {
	color  string
	rating int
}

// Store is the in-memory property graph. It is not synchronized beyond
// the underlying graph's own locks; callers that interleave multi-step
// writes from several goroutines must serialize them externally.
type Store struct {
	g        *core.Graph
	played   map[string]playedIn // edge ID -> attributes
	blunders map[string]*Blunder // vertex ID -> node payload
	log      zerolog.Logger
}

// New creates an empty store.
func New(log zerolog.Logger) *Store {
	return &Store{
		g:        core.NewGraph(core.WithDirected(true), core.WithWeighted()),
		played:   make(map[string]playedIn),
		blunders: make(map[string]*Blunder),
		log:      log,
	}
}

// AddPlayer inserts a player vertex if it does not exist yet.
func (s *Store) AddPlayer(p Player) error {
	id := playerPrefix + p.ID
	if s.g.HasVertex(id) {
		return nil
	}
	if err := s.g.AddVertex(id); err != nil {
		return fmt.Errorf("add player: %w", err)
	}
	v := s.g.VerticesMap()[id]
	v.Metadata["username"] = p.Username
	v.Metadata["rating"] = p.Rating
	return nil
}

// HasGame reports whether a game was already imported.
func (s *Store) HasGame(gameID string) bool {
	return s.g.HasVertex(gamePrefix + gameID)
}

// AddGame inserts a game vertex if it does not exist yet.
func (s *Store) AddGame(g Game) error {
	id := gamePrefix + g.ID
	if s.g.HasVertex(id) {
		return nil
	}
	if err := s.g.AddVertex(id); err != nil {
		return fmt.Errorf("add game: %w", err)
	}
	v := s.g.VerticesMap()[id]
	v.Metadata["result"] = g.Result
	v.Metadata["time_control"] = g.TimeControl
	v.Metadata["eco_code"] = g.ECOCode
	v.Metadata["moves"] = g.Moves
	return nil
}

// AddOpening inserts an opening vertex if it does not exist yet.
func (s *Store) AddOpening(o Opening) error {
	if o.ECO == "" {
		return nil
	}
	id := openingPrefix + o.ECO
	if s.g.HasVertex(id) {
		return nil
	}
	if err := s.g.AddVertex(id); err != nil {
		return fmt.Errorf("add opening: %w", err)
	}
	v := s.g.VerticesMap()[id]
	v.Metadata["name"] = o.Name
	v.Metadata["ply"] = o.Ply
	return nil
}

// LinkGameOpening connects a game to its opening (USES).
func (s *Store) LinkGameOpening(gameID, eco string) error {
	if eco == "" {
		return nil
	}
	from, to := gamePrefix+gameID, openingPrefix+eco
	if s.g.HasEdge(from, to) {
		return nil
	}
	if _, err := s.g.AddEdge(from, to, 0); err != nil {
		return fmt.Errorf("link game to opening: %w", err)
	}
	return nil
}

// LinkPlayerGame connects a player to a game (PLAYED_IN) with the color
// and the rating the player held at game time.
func (s *Store) LinkPlayerGame(playerID, gameID, color string, rating int) error {
	from, to := playerPrefix+playerID, gamePrefix+gameID
	if s.g.HasEdge(from, to) {
		return nil
	}
	eid, err := s.g.AddEdge(from, to, 0)
	if err != nil {
		return fmt.Errorf("link player to game: %w", err)
	}
	s.played[eid] = playedIn{color: color, rating: rating}
	return nil
}

// AddBlunder inserts a blunder node and its IN / MADE_BLUNDER edges. The
// caller supplies the generated unique ID.
func (s *Store) AddBlunder(b Blunder) error {
	id := blunderPrefix + b.ID
	if err := s.g.AddVertex(id); err != nil {
		return fmt.Errorf("add blunder: %w", err)
	}
	cp := b
	s.blunders[id] = &cp

	if _, err := s.g.AddEdge(id, gamePrefix+b.GameID, 0); err != nil {
		return fmt.Errorf("link blunder to game: %w", err)
	}
	if _, err := s.g.AddEdge(playerPrefix+b.PlayerID, id, 0); err != nil {
		return fmt.Errorf("link player to blunder: %w", err)
	}
	return nil
}

// Stats summarizes the graph contents.
type Stats struct {
	Players  int
	Games    int
	Openings int
	Blunders int
	Edges    int
}

// Stats counts vertices by kind plus total edges.
func (s *Store) Stats() Stats {
	var st Stats
	for _, id := range s.g.Vertices() {
		switch {
		case strings.HasPrefix(id, playerPrefix):
			st.Players++
		case strings.HasPrefix(id, gamePrefix):
			st.Games++
		case strings.HasPrefix(id, openingPrefix):
			st.Openings++
		case strings.HasPrefix(id, blunderPrefix):
			st.Blunders++
		}
	}
	st.Edges = s.g.EdgeCount()
	return st
}

// PlayerRating returns the stored rating for a player, 0 if unknown.
func (s *Store) PlayerRating(playerID string) int {
	v, ok := s.g.VerticesMap()[playerPrefix+playerID]
	if !ok {
		return 0
	}
	switch r := v.Metadata["rating"].(type) {
	case int:
		return r
	case string:
		n, _ := strconv.Atoi(r)
		return n
	default:
		return 0
	}
}
