package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestService(t *testing.T, handler http.HandlerFunc) *HTTPEvaluator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ev, err := NewHTTPEvaluator(Config{
		ServiceURL: srv.URL,
		Depth:      15,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewHTTPEvaluator: %v", err)
	}
	t.Cleanup(func() { ev.Close() })
	return ev
}

func TestHTTPEvaluator_Centipawns(t *testing.T) {
	ev := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fen"); got != startFEN {
			t.Errorf("fen query = %q", got)
		}
		if got := r.URL.Query().Get("depth"); got != "15" {
			t.Errorf("depth query = %q, want 15", got)
		}
		w.Write([]byte(`{"success":true,"evaluation":1.36,"mate":null,"bestmove":"bestmove b7b6 ponder f3e5"}`))
	})

	got, err := ev.Evaluate(context.Background(), startFEN)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := Evaluation{Score: 1.36, BestMove: "b7b6"}
	if got != want {
		t.Errorf("Evaluate = %+v, want %+v", got, want)
	}
}

func TestHTTPEvaluator_Mate(t *testing.T) {
	ev := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"evaluation":null,"mate":-3,"bestmove":"bestmove h5f7"}`))
	})

	got, err := ev.Evaluate(context.Background(), startFEN)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got.Mate || got.MateIn != 3 {
		t.Errorf("mate fields = %+v, want mate in 3", got)
	}
	if got.Score != -98 {
		t.Errorf("mate score = %v, want saturated -98", got.Score)
	}
}

func TestHTTPEvaluator_MateZero(t *testing.T) {
	ev := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"evaluation":null,"mate":0}`))
	})

	got, err := ev.Evaluate(context.Background(), startFEN)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Mate 0 means white is already checkmated, not an empty response.
	want := Evaluation{Score: -100, Mate: true}
	if got != want {
		t.Errorf("Evaluate = %+v, want %+v", got, want)
	}
}

func TestHTTPEvaluator_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"server error status",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			"explicit failure flag",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":false}`))
			},
		},
		{
			"malformed payload",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":tru`))
			},
		},
		{
			"neither evaluation nor mate",
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":true,"evaluation":null,"mate":null}`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := newTestService(t, tt.handler)
			_, err := ev.Evaluate(context.Background(), startFEN)
			if !errors.Is(err, ErrUnavailable) {
				t.Errorf("error %v does not wrap ErrUnavailable", err)
			}
		})
	}
}

func TestHTTPEvaluator_ContextCancelled(t *testing.T) {
	ev := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"evaluation":0.0}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ev.Evaluate(ctx, startFEN)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error %v does not wrap ErrUnavailable", err)
	}
}
