package graphstore

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/algorithms"
	"github.com/katalvlaran/lvlath/core"
)

// PlayerStats aggregates one player's blunders.
type PlayerStats struct {
	PlayerID      string
	Username      string
	Rating        int
	BlunderCount  int
	AvgEvalChange float64 // mean of |eval change|
	MaxEvalChange float64
	MinEvalChange float64
}

// PlayerBlunderStats returns per-player blunder aggregates, worst
// average first.
func (s *Store) PlayerBlunderStats() []PlayerStats {
	byPlayer := make(map[string][]*Blunder)
	for _, b := range s.blunders {
		byPlayer[b.PlayerID] = append(byPlayer[b.PlayerID], b)
	}

	stats := make([]PlayerStats, 0, len(byPlayer))
	for playerID, bs := range byPlayer {
		ps := PlayerStats{
			PlayerID:     playerID,
			Username:     s.playerUsername(playerID),
			Rating:       s.PlayerRating(playerID),
			BlunderCount: len(bs),
		}
		var sum float64
		for i, b := range bs {
			abs := b.EvalChange
			if abs < 0 {
				abs = -abs
			}
			sum += abs
			if i == 0 || abs > ps.MaxEvalChange {
				ps.MaxEvalChange = abs
			}
			if i == 0 || abs < ps.MinEvalChange {
				ps.MinEvalChange = abs
			}
		}
		ps.AvgEvalChange = sum / float64(len(bs))
		stats = append(stats, ps)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AvgEvalChange != stats[j].AvgEvalChange {
			return stats[i].AvgEvalChange > stats[j].AvgEvalChange
		}
		return stats[i].PlayerID < stats[j].PlayerID
	})
	return stats
}

// Similarity is a weighted relationship between two blundering players,
// combining normalized ratings with normalized blunder severity.
type Similarity struct {
	Player1, Player2 string
	Weight           float64
	RatingDiff       int
}

// SimilarityEdges computes pairwise similarity between all players that
// made blunders, strongest first, capped at limit (0 = no cap). Ratings
// are normalized over the typical 1000-3000 range; severity is each
// player's average |eval change| normalized by their own maximum.
func (s *Store) SimilarityEdges(limit int) []Similarity {
	stats := s.PlayerBlunderStats()

	normRating := func(r int) float64 { return (float64(r) - 1000) / 2000 }
	normSeverity := func(ps PlayerStats) float64 {
		if ps.MaxEvalChange == 0 {
			return 0
		}
		return ps.AvgEvalChange / ps.MaxEvalChange
	}

	var out []Similarity
	for i := 0; i < len(stats); i++ {
		for j := i + 1; j < len(stats); j++ {
			a, b := stats[i], stats[j]
			w := (normRating(a.Rating) + normRating(b.Rating)) / 2 *
				(1 - (normSeverity(a)+normSeverity(b))/2)
			diff := a.Rating - b.Rating
			if diff < 0 {
				diff = -diff
			}
			out = append(out, Similarity{
				Player1:    a.PlayerID,
				Player2:    b.PlayerID,
				Weight:     w,
				RatingDiff: diff,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		if out[i].Player1 != out[j].Player1 {
			return out[i].Player1 < out[j].Player1
		}
		return out[i].Player2 < out[j].Player2
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// sharedBlunderGraph links players that blundered in the same position.
// Edge weights count the shared distinct positions.
func (s *Store) sharedBlunderGraph() (*core.Graph, error) {
	playersByFEN := make(map[string]map[string]bool)
	for _, b := range s.blunders {
		set, ok := playersByFEN[b.FEN]
		if !ok {
			set = make(map[string]bool)
			playersByFEN[b.FEN] = set
		}
		set[b.PlayerID] = true
	}

	type pair struct{ a, b string }
	shared := make(map[pair]int64)
	for _, set := range playersByFEN {
		players := make([]string, 0, len(set))
		for p := range set {
			players = append(players, p)
		}
		sort.Strings(players)
		for i := 0; i < len(players); i++ {
			for j := i + 1; j < len(players); j++ {
				shared[pair{players[i], players[j]}]++
			}
		}
	}

	g := core.NewGraph(core.WithDirected(false), core.WithWeighted())
	for p, w := range shared {
		if err := g.AddVertex(p.a); err != nil {
			return nil, err
		}
		if err := g.AddVertex(p.b); err != nil {
			return nil, err
		}
		if _, err := g.AddEdge(p.a, p.b, w); err != nil {
			return nil, fmt.Errorf("add shared-blunder edge: %w", err)
		}
	}
	return g, nil
}

// Communities groups players that blundered in the same positions by
// traversing the shared-blunder graph component by component. Components
// smaller than minSize are dropped; members are sorted, communities
// ordered largest first.
func (s *Store) Communities(minSize int) ([][]string, error) {
	g, err := s.sharedBlunderGraph()
	if err != nil {
		return nil, err
	}
	if g.VertexCount() == 0 {
		s.log.Warn().Msg("shared-blunder graph is empty, no communities detected")
		return nil, nil
	}
	if minSize < 1 {
		minSize = 1
	}

	seen := make(map[string]bool)
	var communities [][]string
	for _, start := range g.Vertices() {
		if seen[start] {
			continue
		}
		res, err := algorithms.BFS(g, start, nil)
		if err != nil {
			return nil, fmt.Errorf("traverse component: %w", err)
		}
		var members []string
		for _, v := range res.Order {
			seen[v.ID] = true
			members = append(members, v.ID)
		}
		if len(members) >= minSize {
			sort.Strings(members)
			communities = append(communities, members)
		}
	}

	sort.Slice(communities, func(i, j int) bool {
		if len(communities[i]) != len(communities[j]) {
			return len(communities[i]) > len(communities[j])
		}
		return communities[i][0] < communities[j][0]
	})
	return communities, nil
}

// SharedPosition is a position blundered by several community members.
type SharedPosition struct {
	FEN        string
	Players    int
	Percentage float64 // share of the community that blundered here
}

// SharedPositions finds positions blundered by at least half of the
// given community, most common first, capped at limit (0 = no cap).
func (s *Store) SharedPositions(community []string, limit int) []SharedPosition {
	if len(community) == 0 {
		return nil
	}
	members := make(map[string]bool, len(community))
	for _, p := range community {
		members[p] = true
	}

	playersByFEN := make(map[string]map[string]bool)
	for _, b := range s.blunders {
		if !members[b.PlayerID] {
			continue
		}
		set, ok := playersByFEN[b.FEN]
		if !ok {
			set = make(map[string]bool)
			playersByFEN[b.FEN] = set
		}
		set[b.PlayerID] = true
	}

	threshold := len(community) / 2
	if threshold < 1 {
		threshold = 1
	}

	var out []SharedPosition
	for fen, set := range playersByFEN {
		if len(set) < threshold {
			continue
		}
		out = append(out, SharedPosition{
			FEN:        fen,
			Players:    len(set),
			Percentage: float64(len(set)) / float64(len(community)) * 100,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Players != out[j].Players {
			return out[i].Players > out[j].Players
		}
		return out[i].FEN < out[j].FEN
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) playerUsername(playerID string) string {
	v, ok := s.g.VerticesMap()[playerPrefix+playerID]
	if !ok {
		return playerID
	}
	if u, ok := v.Metadata["username"].(string); ok && u != "" {
		return u
	}
	return playerID
}
