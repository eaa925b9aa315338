package graphstore

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(zerolog.Nop())
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		name       string
		evalChange float64
		mate       bool
		want       string
	}{
		{"small drop", 0.6, false, "low"},
		{"exactly one pawn", 1.0, false, "low"},
		{"pawn and a half", 1.5, false, "medium"},
		{"exactly two pawns", 2.0, false, "medium"},
		{"piece-sized drop", 3.2, false, "high"},
		{"negative change counts by magnitude", -3.2, false, "high"},
		{"mate overrides magnitude", 0.1, true, "high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Severity(tt.evalChange, tt.mate))
		})
	}
}

func TestStore_AddPlayerIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddPlayer(Player{ID: "anna", Username: "anna_k", Rating: 1850}))
	require.NoError(t, s.AddPlayer(Player{ID: "anna", Username: "overwrite attempt", Rating: 1}))

	assert.Equal(t, 1, s.Stats().Players)
	assert.Equal(t, 1850, s.PlayerRating("anna"), "first write wins")
	assert.Equal(t, "anna_k", s.playerUsername("anna"))
}

func TestStore_GameAndOpening(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddGame(Game{ID: "g1", Result: "white won by mate", ECOCode: "C20"}))
	require.NoError(t, s.AddOpening(Opening{ECO: "C20", Name: "King's Pawn Game", Ply: 2}))
	require.NoError(t, s.LinkGameOpening("g1", "C20"))
	require.NoError(t, s.LinkGameOpening("g1", "C20"), "relink is a no-op")

	assert.True(t, s.HasGame("g1"))
	assert.False(t, s.HasGame("g2"))

	st := s.Stats()
	assert.Equal(t, 1, st.Games)
	assert.Equal(t, 1, st.Openings)
	assert.Equal(t, 1, st.Edges)
}

func TestStore_AddOpeningSkipsMissingECO(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddOpening(Opening{ECO: "", Name: "unknown"}))
	require.NoError(t, s.LinkGameOpening("g1", ""))

	st := s.Stats()
	assert.Equal(t, 0, st.Openings)
	assert.Equal(t, 0, st.Edges)
}

func TestStore_LinkPlayerGame(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddPlayer(Player{ID: "anna", Rating: 1850}))
	require.NoError(t, s.AddGame(Game{ID: "g1"}))

	require.NoError(t, s.LinkPlayerGame("anna", "g1", "white", 1850))
	require.NoError(t, s.LinkPlayerGame("anna", "g1", "white", 1850), "relink is a no-op")

	assert.Equal(t, 1, s.Stats().Edges)
	assert.Len(t, s.played, 1)
	for _, p := range s.played {
		assert.Equal(t, "white", p.color)
		assert.Equal(t, 1850, p.rating)
	}
}

func TestStore_AddBlunder(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddPlayer(Player{ID: "anna", Rating: 1850}))
	require.NoError(t, s.AddGame(Game{ID: "g1"}))

	b := Blunder{
		ID:         "b1",
		GameID:     "g1",
		PlayerID:   "anna",
		Rating:     1850,
		MoveNumber: 12,
		Move:       "Qxb7",
		BestMove:   "d4e5",
		FEN:        "8/8/8/8/8/8/8/8 w - - 0 1",
		Eval:       -3.1,
		EvalChange: 4.2,
		Severity:   "high",
	}
	require.NoError(t, s.AddBlunder(b))

	st := s.Stats()
	assert.Equal(t, 1, st.Blunders)
	assert.Equal(t, 2, st.Edges, "blunder links to its game and its player")

	stored := s.blunders[blunderPrefix+"b1"]
	require.NotNil(t, stored)
	assert.Equal(t, b, *stored)
}

func TestStore_PlayerRatingUnknown(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, 0, s.PlayerRating("nobody"))
}
