package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/MaggiCoder16/Weak-Bot/internal/book"
	"github.com/MaggiCoder16/Weak-Bot/internal/pgnio"
	"github.com/MaggiCoder16/Weak-Bot/internal/polyglot"
)

// Config configures the book builder.
type Config struct {
	Variant   string         // Variant tag filter, empty accepts everything
	MaxPly    int            // Plies recorded per game (default 60)
	MaxRating int            // Skip games where either player is rated above this, 0 disables
	Scorer    book.Scorer    // Scoring strategy (default Balanced)
	Logger    zerolog.Logger // Logger
}

// Builder replays PGN games into an opening book. Feed it files with
// IngestFile, then hand Book() to normalization and encoding.
type Builder struct {
	cfg Config
	bk  *book.Book
	log zerolog.Logger

	games          int64
	kept           int64
	skippedRating  int64
	skippedVariant int64
	truncated      int64
}

// Stats are the cumulative ingest counters across all files.
type Stats struct {
	Games          int64 // Games seen
	Kept           int64 // Games that contributed at least one position
	SkippedRating  int64 // Games over the rating cap
	SkippedVariant int64 // Games of the wrong variant
	Truncated      int64 // Games cut short by a replay error
}

// NewBuilder creates a book builder.
func NewBuilder(cfg Config) *Builder {
	if cfg.MaxPly == 0 {
		cfg.MaxPly = book.DefaultMaxPly
	}
	if cfg.Scorer == nil {
		cfg.Scorer = book.Balanced{}
	}
	return &Builder{
		cfg: cfg,
		bk:  book.NewBook(),
		log: cfg.Logger,
	}
}

// Book returns the accumulating book.
func (b *Builder) Book() *book.Book {
	return b.bk
}

// Stats returns the cumulative ingest counters.
func (b *Builder) Stats() Stats {
	return Stats{
		Games:          b.games,
		Kept:           b.kept,
		SkippedRating:  b.skippedRating,
		SkippedVariant: b.skippedVariant,
		Truncated:      b.truncated,
	}
}

// IngestFile replays every game in a PGN file into the book. Plain,
// zstd and bzip2 compressed files are accepted.
func (b *Builder) IngestFile(ctx context.Context, path string) error {
	if !isPGNFile(path) {
		return fmt.Errorf("not a PGN file: %s", path)
	}

	// The parser reads .pgn and .pgn.zst itself; bzip2 archives get
	// spooled to a plain temp file first.
	parsePath := path
	if filepath.Ext(path) == ".bz2" {
		spooled, err := pgnio.Spool(path)
		if err != nil {
			return fmt.Errorf("spool %s: %w", filepath.Base(path), err)
		}
		defer os.Remove(spooled)
		parsePath = spooled
	}

	b.log.Info().Str("path", path).Msg("starting file ingest")

	startTime := time.Now()
	var gamesSeen, gamesKept, gamesSkipped, positionsUpdated int64
	lastLog := time.Now()

	target := normalizeVariant(b.cfg.Variant)

	parser := pgn.Games(parsePath)

	stopped := false
gameLoop:
	for game := range parser.Games {
		select {
		case <-ctx.Done():
			if !stopped {
				parser.Stop()
				stopped = true
			}
			break gameLoop
		default:
		}

		gamesSeen++
		b.games++

		// Rating cap: a book built from weak games needs both players
		// at or below the cap. Unknown ratings count as zero and pass.
		if b.cfg.MaxRating > 0 {
			whiteRating := parseRating(game.Tags["WhiteElo"])
			blackRating := parseRating(game.Tags["BlackElo"])
			if whiteRating > b.cfg.MaxRating || blackRating > b.cfg.MaxRating {
				b.skippedRating++
				gamesSkipped++
				continue
			}
		}

		// A missing Variant tag means a standard game.
		if target != "" {
			variant := "standard"
			if tag, ok := game.Tags["Variant"]; ok {
				variant = normalizeVariant(tag)
			}
			if !strings.Contains(variant, target) {
				b.skippedVariant++
				gamesSkipped++
				continue
			}
		}

		positions, truncated := b.processGame(game)
		if truncated {
			b.truncated++
		}
		if positions > 0 {
			positionsUpdated += int64(positions)
			gamesKept++
			b.kept++
		} else {
			gamesSkipped++
		}

		// Periodic logging
		if time.Since(lastLog) > 10*time.Second {
			elapsed := time.Since(startTime)
			gps := float64(gamesSeen) / elapsed.Seconds()
			b.log.Info().
				Str("file", filepath.Base(path)).
				Int64("games", gamesSeen).
				Int64("kept", gamesKept).
				Int64("skipped", gamesSkipped).
				Int64("positions", positionsUpdated).
				Float64("games_per_sec", gps).
				Msg("ingest progress")
			lastLog = time.Now()
		}
	}

	if err := parser.Err(); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	elapsed := time.Since(startTime)
	b.log.Info().
		Str("file", filepath.Base(path)).
		Int64("games", gamesSeen).
		Int64("kept", gamesKept).
		Int64("skipped", gamesSkipped).
		Int64("positions", positionsUpdated).
		Dur("elapsed", elapsed).
		Float64("games_per_sec", float64(gamesSeen)/elapsed.Seconds()).
		Msg("file ingest complete")

	if stopped {
		return ctx.Err()
	}
	return nil
}

// processGame replays one game from the starting position, crediting
// each move it visits to the position it was played from. Returns the
// number of positions updated and whether the replay was cut short.
func (b *Builder) processGame(game *pgn.Game) (int, bool) {
	result := book.ParseResult(game.Tags["Result"])

	pos := pgn.NewStartingPosition()
	positions := 0

	for ply, mv := range game.Moves {
		if ply >= b.cfg.MaxPly {
			break
		}

		key, err := polyglot.Key(pos.ToFEN())
		if err != nil {
			return positions, true
		}

		var promo byte
		switch mv.Promo {
		case pgn.PromoKnight:
			promo = book.PromoKnight
		case pgn.PromoBishop:
			promo = book.PromoBishop
		case pgn.PromoRook:
			promo = book.PromoRook
		case pgn.PromoQueen:
			promo = book.PromoQueen
		}

		whiteToMove := ply%2 == 0
		score := b.cfg.Scorer.Score(result, whiteToMove, book.Decay(b.cfg.MaxPly, ply))
		b.bk.Add(key, book.EncodeMove(int(mv.From), int(mv.To), promo), score)
		positions++

		if err := pgn.ApplyMove(pos, mv); err != nil {
			return positions, true
		}
	}

	return positions, false
}

func isPGNFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == ".pgn" {
		return true
	}
	if ext == ".zst" || ext == ".bz2" {
		base := name[:len(name)-len(ext)]
		return filepath.Ext(base) == ".pgn"
	}
	return false
}

func parseRating(s string) int {
	if s == "" || s == "?" || s == "-" {
		return 0
	}
	r, _ := strconv.Atoi(s)
	return r
}

func normalizeVariant(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}
