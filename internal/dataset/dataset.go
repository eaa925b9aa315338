// Package dataset loads recorded games from a CSV archive in the
// lichess games.csv layout (one row per game with player ratings, the
// SAN move list, and opening metadata).
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
)

// Game is one row of the archive.
type Game struct {
	ID            string
	CreatedAt     time.Time
	TimeControl   string
	Winner        string // "white", "black", or empty for a draw
	VictoryStatus string
	WhiteID       string
	BlackID       string
	WhiteRating   int
	BlackRating   int
	Moves         string // whitespace-separated SAN
	OpeningECO    string
	OpeningName   string
	OpeningPly    int
}

// Result renders the game outcome as stored on game vertices.
func (g Game) Result() string {
	if g.Winner == "" || g.Winner == "draw" {
		return "draw"
	}
	return fmt.Sprintf("%s won by %s", g.Winner, g.VictoryStatus)
}

// Options filter the load.
type Options struct {
	MaxGames  int // 0 = all
	MinRating int // drop games where either player is below this
	Logger    zerolog.Logger
}

// required column names; everything else is optional.
var requiredColumns = []string{"id", "moves", "white_id", "black_id"}

// Load reads games from a CSV file, zstd-compressed when the path ends
// in .zst. Malformed rows are skipped and counted, not fatal; a missing
// required column is.
func Load(path string, opts Options) ([]Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q in %s", name, path)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var games []Game
	var skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		g := Game{
			ID:            field(row, "id"),
			TimeControl:   field(row, "increment_code"),
			Winner:        field(row, "winner"),
			VictoryStatus: field(row, "victory_status"),
			WhiteID:       field(row, "white_id"),
			BlackID:       field(row, "black_id"),
			WhiteRating:   parseRating(field(row, "white_rating")),
			BlackRating:   parseRating(field(row, "black_rating")),
			Moves:         field(row, "moves"),
			OpeningECO:    field(row, "opening_eco"),
			OpeningName:   field(row, "opening_name"),
		}
		g.OpeningPly, _ = strconv.Atoi(field(row, "opening_ply"))
		if ms, err := strconv.ParseFloat(field(row, "created_at"), 64); err == nil {
			g.CreatedAt = time.UnixMilli(int64(ms)).UTC()
		}

		if g.ID == "" || g.Moves == "" {
			skipped++
			continue
		}
		if opts.MinRating > 0 && (g.WhiteRating < opts.MinRating || g.BlackRating < opts.MinRating) {
			skipped++
			continue
		}

		games = append(games, g)
		if opts.MaxGames > 0 && len(games) >= opts.MaxGames {
			break
		}
	}

	opts.Logger.Info().
		Str("path", path).
		Int("games", len(games)).
		Int("skipped", skipped).
		Msg("dataset loaded")

	return games, nil
}

func parseRating(s string) int {
	if s == "" || s == "?" || s == "-" {
		return 0
	}
	r, _ := strconv.Atoi(s)
	return r
}
