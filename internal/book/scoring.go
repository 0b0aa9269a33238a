package book

import (
	"fmt"
	"math/rand"
)

// Result is the declared outcome of a finished game.
type Result uint8

const (
	ResultUnknown Result = iota
	ResultWhiteWin
	ResultBlackWin
	ResultDraw
)

// ParseResult maps a PGN Result tag to a Result. Anything besides the
// three standard outcomes (including "*") is unknown.
func ParseResult(tag string) Result {
	switch tag {
	case "1-0":
		return ResultWhiteWin
	case "0-1":
		return ResultBlackWin
	case "1/2-1/2":
		return ResultDraw
	}
	return ResultUnknown
}

func (r Result) String() string {
	switch r {
	case ResultWhiteWin:
		return "1-0"
	case ResultBlackWin:
		return "0-1"
	case ResultDraw:
		return "1/2-1/2"
	}
	return "*"
}

// Decay is the per-ply score multiplier. Early moves weigh more than
// late ones; the multiplier steps down by one every five plies and
// never drops below one.
func Decay(maxPly, ply int) int64 {
	d := (maxPly - ply) / 5
	if d < 1 {
		d = 1
	}
	return int64(d)
}

// RandFunc returns a uniform int in [0, n). Both jitter and win-only
// scoring draw from one of these so tests can substitute a fixed
// generator.
type RandFunc func(n int) int

// ZeroRand is the deterministic substitute: it always returns 0.
func ZeroRand(n int) int { return 0 }

// Scorer converts a game outcome into a score increment for one move.
type Scorer interface {
	Score(result Result, whiteToMove bool, decay int64) int64
}

// Balanced scores every move of a decided game: 6 per decay unit for
// the winner's own moves, 1 for the loser's, 2 for both sides of a
// draw. Unknown results score nothing.
type Balanced struct{}

func (Balanced) Score(result Result, whiteToMove bool, decay int64) int64 {
	switch result {
	case ResultWhiteWin:
		if whiteToMove {
			return 6 * decay
		}
		return 1 * decay
	case ResultBlackWin:
		if whiteToMove {
			return 1 * decay
		}
		return 6 * decay
	case ResultDraw:
		return 2 * decay
	}
	return 0
}

// WinOnly scores only the winning side's own moves, at a random 4-6 per
// decay unit. Everything else is recorded at zero and pruned when the
// book is encoded, unless jitter lifts it first.
type WinOnly struct {
	Rand RandFunc
}

func (s WinOnly) Score(result Result, whiteToMove bool, decay int64) int64 {
	won := (result == ResultWhiteWin && whiteToMove) ||
		(result == ResultBlackWin && !whiteToMove)
	if !won {
		return 0
	}
	rnd := s.Rand
	if rnd == nil {
		rnd = rand.Intn
	}
	return int64(4+rnd(3)) * decay
}

// Scoring mode names accepted by NewScorer.
const (
	ModeBalanced = "balanced"
	ModeWinOnly  = "winonly"
)

// NewScorer returns the scorer for a mode name.
func NewScorer(mode string, rnd RandFunc) (Scorer, error) {
	switch mode {
	case ModeBalanced:
		return Balanced{}, nil
	case ModeWinOnly:
		return WinOnly{Rand: rnd}, nil
	}
	return nil, fmt.Errorf("unknown scoring mode %q (want %s or %s)", mode, ModeBalanced, ModeWinOnly)
}
