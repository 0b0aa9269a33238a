package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MaggiCoder16/Weak-Bot/internal/book"
	"github.com/MaggiCoder16/Weak-Bot/internal/ingest"
	"github.com/MaggiCoder16/Weak-Bot/internal/lichess"
	"github.com/MaggiCoder16/Weak-Bot/internal/logx"
	"github.com/MaggiCoder16/Weak-Bot/internal/pgnio"
)

func main() {
	defaultBaseURL := lichess.DefaultBaseURL
	if envURL := os.Getenv("LICHESS_URL"); envURL != "" {
		defaultBaseURL = envURL
	}

	var (
		users      = flag.String("users", "", "Comma-separated lichess usernames to fetch games from")
		pgnPath    = flag.String("pgn", "games.pgn.zst", "Archive path for fetched games (supports .zst, .bz2)")
		bookPath   = flag.String("book", "book.bin", "Output book path")
		variant    = flag.String("variant", "standard", "Variant filter (empty accepts everything)")
		maxElo     = flag.Int("max-elo", 0, "Skip games where either player is rated above this (0 = no cap)")
		maxGames   = flag.Int("max-games", 10000, "Maximum games to fetch per user")
		chunkSize  = flag.Int("chunk", 5000, "Games requested per export page")
		delay      = flag.Duration("delay", 400*time.Millisecond, "Pause between export pages")
		timeout    = flag.Duration("timeout", 120*time.Second, "Per-request timeout")
		lichessURL = flag.String("lichess-url", defaultBaseURL, "Lichess API base URL")
		maxPly     = flag.Int("max-ply", book.DefaultMaxPly, "Plies recorded per game")
		maxWeight  = flag.Int("max-weight", book.DefaultMaxWeight, "Weight ceiling for book entries")
		mode       = flag.String("mode", book.ModeBalanced, "Scoring mode (balanced or winonly)")
		seed       = flag.Int64("seed", 0, "Random seed for jitter and win-only scoring (0 = time-based)")
	)
	flag.Parse()

	var userList []string
	for _, u := range strings.Split(*users, ",") {
		if u = strings.TrimSpace(u); u != "" {
			userList = append(userList, u)
		}
	}

	if len(userList) == 0 && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: bookgen [-users a,b,c] [options] [extra.pgn[.zst|.bz2] ...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	logger := logx.NewLogger()

	if *maxWeight < 1 || *maxWeight > 65535 {
		logger.Fatal().Int("max_weight", *maxWeight).Msg("max-weight must be between 1 and 65535")
	}

	seedVal := *seed
	if seedVal == 0 {
		seedVal = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seedVal))

	scorer, err := book.NewScorer(*mode, rng.Intn)
	if err != nil {
		logger.Fatal().Err(err).Msg("scoring mode")
	}

	logger.Info().
		Str("book", *bookPath).
		Str("variant", *variant).
		Int("max_elo", *maxElo).
		Int("max_ply", *maxPly).
		Int("max_weight", *maxWeight).
		Str("mode", *mode).
		Int64("seed", seedVal).
		Msg("starting book build")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startTime := time.Now()

	if len(userList) > 0 {
		client := lichess.NewClient(lichess.Config{
			BaseURL:   *lichessURL,
			Variant:   *variant,
			MaxRating: *maxElo,
			MaxGames:  *maxGames,
			ChunkSize: *chunkSize,
			Delay:     *delay,
			Timeout:   *timeout,
			Logger:    logger,
		})
		if err := fetchGames(ctx, logger, client, userList, *pgnPath); err != nil {
			logger.Fatal().Err(err).Msg("fetch games")
		}
	}
	if ctx.Err() != nil {
		logger.Warn().Msg("interrupted, no book written")
		return
	}

	builder := ingest.NewBuilder(ingest.Config{
		Variant:   *variant,
		MaxPly:    *maxPly,
		MaxRating: *maxElo,
		Scorer:    scorer,
		Logger:    logger,
	})

	sources := flag.Args()
	if len(userList) > 0 {
		sources = append([]string{*pgnPath}, sources...)
	}
	for _, src := range sources {
		if err := builder.IngestFile(ctx, src); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Fatal().Err(err).Str("path", src).Msg("ingest failed")
		}
	}
	if ctx.Err() != nil {
		logger.Warn().Msg("interrupted, no book written")
		return
	}

	bk := builder.Book()
	stats := builder.Stats()
	logger.Info().
		Int64("games", stats.Games).
		Int64("kept", stats.Kept).
		Int64("skipped_rating", stats.SkippedRating).
		Int64("skipped_variant", stats.SkippedVariant).
		Int64("truncated", stats.Truncated).
		Int("positions", bk.Positions()).
		Int("moves", bk.Moves()).
		Msg("ingest complete")

	bk.Normalize(int64(*maxWeight))
	bk.Jitter(int64(*maxWeight), rng.Intn)

	entries, err := bk.WriteFile(*bookPath, int64(*maxWeight))
	if err != nil {
		logger.Fatal().Err(err).Msg("write book")
	}

	elapsed := time.Since(startTime)
	logger.Info().
		Str("book", *bookPath).
		Int("entries", entries).
		Int("positions", bk.Positions()).
		Str("size", bytesize.ByteSize(uint64(entries*book.EntrySize)).String()).
		Dur("elapsed", elapsed).
		Msg("book build complete")
}

// fetchGames streams each user's archive into one PGN file. The export
// client produces games while the archive writer drains them, so slow
// pages and slow compression overlap.
func fetchGames(ctx context.Context, logger zerolog.Logger, client *lichess.Client, users []string, outPath string) error {
	writer, err := pgnio.NewWriter(outPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	games := make(chan string, 64)

	g.Go(func() error {
		defer close(games)
		for _, user := range users {
			err := client.ExportUserGames(ctx, user, func(gm lichess.Game) bool {
				select {
				case <-ctx.Done():
					return false
				case games <- gm.PGN:
					return true
				}
			})
			if err != nil {
				if errors.Is(err, lichess.ErrUserNotFound) {
					logger.Warn().Str("user", user).Msg("user not found, skipping")
					continue
				}
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		for pgnText := range games {
			if err := writer.WriteGame(pgnText); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	logger.Info().
		Str("path", outPath).
		Int("games", writer.Games()).
		Str("size", writer.Size().String()).
		Msg("fetch complete")
	return nil
}
