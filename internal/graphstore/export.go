package graphstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var exportHeader = []string{
	"id", "game_id", "player_id", "player_username", "player_rating",
	"move_number", "move", "best_move", "fen", "eval", "eval_change",
	"mate", "severity",
}

// WriteCSV writes every blunder node as one CSV row, in stable order.
func (s *Store) WriteCSV(w io.Writer) error {
	ids := make([]string, 0, len(s.blunders))
	for id := range s.blunders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, id := range ids {
		b := s.blunders[id]
		row := []string{
			b.ID,
			b.GameID,
			b.PlayerID,
			s.playerUsername(b.PlayerID),
			strconv.Itoa(b.Rating),
			strconv.Itoa(b.MoveNumber),
			b.Move,
			b.BestMove,
			b.FEN,
			strconv.FormatFloat(b.Eval, 'g', -1, 64),
			strconv.FormatFloat(b.EvalChange, 'g', -1, 64),
			strconv.FormatBool(b.Mate),
			b.Severity,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV rebuilds player, game, and blunder vertices from exported
// rows. Malformed rows are counted and skipped, not fatal.
func (s *Store) ReadCSV(r io.Reader) error {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(exportHeader) || header[0] != "id" {
		return fmt.Errorf("invalid header: expected %v, got %v", exportHeader, header)
	}

	var loaded, skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(row) != len(exportHeader) {
			skipped++
			continue
		}

		rating, _ := strconv.Atoi(row[4])
		moveNumber, _ := strconv.Atoi(row[5])
		eval, err1 := strconv.ParseFloat(row[9], 64)
		evalChange, err2 := strconv.ParseFloat(row[10], 64)
		if err1 != nil || err2 != nil {
			skipped++
			continue
		}
		mate, _ := strconv.ParseBool(row[11])

		if err := s.AddPlayer(Player{ID: row[2], Username: row[3], Rating: rating}); err != nil {
			return err
		}
		if err := s.AddGame(Game{ID: row[1]}); err != nil {
			return err
		}
		if err := s.AddBlunder(Blunder{
			ID:         row[0],
			GameID:     row[1],
			PlayerID:   row[2],
			Rating:     rating,
			MoveNumber: moveNumber,
			Move:       row[6],
			BestMove:   row[7],
			FEN:        row[8],
			Eval:       eval,
			EvalChange: evalChange,
			Mate:       mate,
			Severity:   row[12],
		}); err != nil {
			return err
		}
		loaded++
	}

	s.log.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("blunder CSV loaded")
	return nil
}

// ExportFile writes the blunder CSV to path, zstd-compressed when the
// path ends in .zst.
func (s *Store) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".zst") {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if err := s.WriteCSV(zw); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}
	return s.WriteCSV(f)
}

// ImportFile loads a blunder CSV written by ExportFile.
func (s *Store) ImportFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return err
		}
		defer zr.Close()
		r = zr
	}
	return s.ReadCSV(r)
}
