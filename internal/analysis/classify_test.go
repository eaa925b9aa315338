package analysis

import (
	"math"
	"testing"

	"github.com/ems78/GameOfThrows/internal/engine"
)

// scoreForProb inverts the win-probability sigmoid so swing tests can
// target approximate probability drops through the full Classify path.
func scoreForProb(p float64) float64 {
	return -math.Log(1/p-1) / winProbSlope
}

func TestClassifyDelta_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
		want  Label
	}{
		{"improvement", -0.1, Best},
		{"no change", 0, Best},
		{"tiny drop", 0.01, Excellent},
		{"excellent boundary", 0.02, Excellent},
		{"small drop", 0.03, Good},
		{"good boundary", 0.05, Good},
		{"just past good", 0.0500001, Inaccuracy},
		{"inaccuracy boundary", 0.10, Inaccuracy},
		{"medium drop", 0.15, Mistake},
		{"mistake boundary", 0.20, Mistake},
		{"large drop", 0.25, Blunder},
		{"huge drop", 0.45, Blunder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDelta(tt.delta); got != tt.want {
				t.Errorf("classifyDelta(%v) = %v, want %v", tt.delta, got, tt.want)
			}
		})
	}
}

func TestClassify_ProbabilitySwings(t *testing.T) {
	tests := []struct {
		name string
		prev float64 // pawn score, mover's perspective
		cur  float64
		want Label
	}{
		{"holds the advantage", 1.5, 1.6, Best},
		{"slight slip", 0, scoreForProb(0.49), Excellent},
		{"gives back part of the edge", 1.0, 0.6, Good},
		{"drops a quarter of winning chances", 0, scoreForProb(0.25), Blunder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := engine.Evaluation{Score: tt.prev}
			cur := engine.Evaluation{Score: tt.cur}
			if got := Classify(prev, cur); got != tt.want {
				t.Errorf("Classify(%v -> %v) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestClassify_MateTransitions(t *testing.T) {
	tests := []struct {
		name string
		prev engine.Evaluation
		cur  engine.Evaluation
		want Label
	}{
		{
			"finds forced mate",
			engine.Evaluation{Score: 1.2},
			engine.Evaluation{Score: 98, Mate: true, MateIn: 3},
			Best,
		},
		{
			"walks into forced mate",
			engine.Evaluation{Score: 1.2},
			engine.Evaluation{Score: -98, Mate: true, MateIn: 3},
			Blunder,
		},
		{
			"throws away forced mate",
			engine.Evaluation{Score: 99, Mate: true, MateIn: 2},
			engine.Evaluation{Score: 6.5},
			Blunder,
		},
		{
			"escapes forced mate",
			engine.Evaluation{Score: -99, Mate: true, MateIn: 2},
			engine.Evaluation{Score: -4.0},
			Best,
		},
		{
			"mate flips sides",
			engine.Evaluation{Score: 98, Mate: true, MateIn: 3},
			engine.Evaluation{Score: -100, Mate: true, MateIn: 1},
			Blunder,
		},
		{
			"keeps the mate",
			engine.Evaluation{Score: 98, Mate: true, MateIn: 3},
			engine.Evaluation{Score: 99, Mate: true, MateIn: 2},
			Best,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.prev, tt.cur); got != tt.want {
				t.Errorf("Classify(%+v, %+v) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	prev := engine.Evaluation{Score: 0.3}
	cur := engine.Evaluation{Score: -2.5}
	first := Classify(prev, cur)
	for i := 0; i < 10; i++ {
		if got := Classify(prev, cur); got != first {
			t.Fatalf("Classify returned %v after %v for identical inputs", got, first)
		}
	}
}

func TestLabel_StringRoundTrip(t *testing.T) {
	for l := Opening; l <= Blunder; l++ {
		got, err := ParseLabel(l.String())
		if err != nil {
			t.Fatalf("ParseLabel(%q): %v", l.String(), err)
		}
		if got != l {
			t.Errorf("ParseLabel(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if _, err := ParseLabel("Brilliant"); err == nil {
		t.Error("ParseLabel accepted an unknown label")
	}
}
