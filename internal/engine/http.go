package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HTTPEvaluator queries a remote evaluation service. The service takes a
// FEN and a search depth as query parameters and answers with a JSON
// object carrying a success flag, a pawn-unit evaluation from white's
// perspective, an optional signed mate distance, and a best-move line.
type HTTPEvaluator struct {
	baseURL string
	depth   int
	client  *http.Client
	log     zerolog.Logger
}

// serviceResponse mirrors the remote payload. Evaluation is null for
// forced mates; Mate is null otherwise.
type serviceResponse struct {
	Success    bool     `json:"success"`
	Evaluation *float64 `json:"evaluation"`
	Mate       *int     `json:"mate"`
	BestMove   string   `json:"bestmove"`
}

// NewHTTPEvaluator builds a remote evaluator with a bounded request
// timeout so a hung service cannot block analysis indefinitely.
func NewHTTPEvaluator(cfg Config) (*HTTPEvaluator, error) {
	if cfg.ServiceURL == "" {
		return nil, fmt.Errorf("service URL required")
	}
	if cfg.Depth == 0 {
		cfg.Depth = 15
	}
	if cfg.TimeoutSec == 0 {
		cfg.TimeoutSec = 10
	}
	return &HTTPEvaluator{
		baseURL: cfg.ServiceURL,
		depth:   cfg.Depth,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		log:     cfg.Logger,
	}, nil
}

// Evaluate issues one GET request for the position.
func (h *HTTPEvaluator) Evaluate(ctx context.Context, fen string) (Evaluation, error) {
	q := url.Values{}
	q.Set("fen", fen)
	q.Set("depth", strconv.Itoa(h.depth))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Evaluation{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var sr serviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Evaluation{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if !sr.Success {
		return Evaluation{}, fmt.Errorf("%w: service reported failure", ErrUnavailable)
	}

	ev := Evaluation{BestMove: parseBestMove(sr.BestMove)}
	switch {
	case sr.Mate != nil:
		// The mate field is from white's perspective; zero means white
		// is already checkmated.
		ev.Mate = true
		ev.MateIn = *sr.Mate
		if ev.MateIn < 0 {
			ev.MateIn = -ev.MateIn
		}
		ev.Score = mateScore(*sr.Mate)
	case sr.Evaluation != nil:
		ev.Score = *sr.Evaluation
	default:
		return Evaluation{}, fmt.Errorf("%w: response carries neither evaluation nor mate", ErrUnavailable)
	}

	h.log.Debug().
		Str("fen", fen).
		Float64("score", ev.Score).
		Bool("mate", ev.Mate).
		Msg("service evaluation")

	return ev, nil
}

// Close releases idle connections held by the client.
func (h *HTTPEvaluator) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

// parseBestMove extracts the move from a "bestmove e2e4 ponder e7e5"
// line. A bare move string passes through unchanged.
func parseBestMove(line string) string {
	fields := strings.Fields(line)
	switch {
	case len(fields) >= 2 && fields[0] == "bestmove":
		return fields[1]
	case len(fields) >= 1:
		return fields[0]
	default:
		return ""
	}
}
