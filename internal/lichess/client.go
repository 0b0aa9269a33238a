// Package lichess streams finished games from the lichess.org export
// API as NDJSON records.
package lichess

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public lichess API host.
const DefaultBaseURL = "https://lichess.org"

// ErrUserNotFound is returned when the export endpoint does not know
// the requested user.
var ErrUserNotFound = errors.New("lichess user not found")

// scanBufSize bounds one NDJSON line. Export lines embed full PGN
// text, so they run far past bufio's default limit.
const scanBufSize = 16 * 1024 * 1024

// Player is one side of an exported game.
type Player struct {
	Rating int `json:"rating"`
	User   struct {
		Name string `json:"name"`
	} `json:"user"`
}

// Game is one record from the NDJSON export stream.
type Game struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Variant   string `json:"variant"`
	PGN       string `json:"pgn"`
	Players   struct {
		White Player `json:"white"`
		Black Player `json:"black"`
	} `json:"players"`
}

// MaxRating returns the higher of the two player ratings. Missing
// ratings decode as zero.
func (g *Game) MaxRating() int {
	if g.Players.White.Rating > g.Players.Black.Rating {
		return g.Players.White.Rating
	}
	return g.Players.Black.Rating
}

// Config configures the export client.
type Config struct {
	BaseURL   string        // API host, default DefaultBaseURL
	Variant   string        // variant filter, normalized substring match; empty accepts all
	MaxRating int           // skip games where either player rates above this; 0 disables
	MaxGames  int           // stop after this many kept games
	ChunkSize int           // games requested per page
	Delay     time.Duration // polite pause between page requests
	Timeout   time.Duration // per-request timeout
	Logger    zerolog.Logger
	Client    *http.Client // optional, mainly for tests
}

// Client pages backward through a user's game archive, newest games
// first, deduplicating by game id.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewClient creates an export client, filling zero config values with
// defaults the public API tolerates well.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 5000
	}
	if cfg.MaxGames == 0 {
		cfg.MaxGames = 10000
	}
	if cfg.Delay == 0 {
		cfg.Delay = 400 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  cfg.Logger,
	}
}

// NormalizeVariant lowercases a variant tag and strips spaces, so
// "Three-check" and "threeCheck" style spellings compare alike.
func NormalizeVariant(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}

// ExportUserGames streams the user's rated games to fn until fn
// returns false, the game cap is reached, or the archive is exhausted.
// Games failing the rating or variant filter are skipped and do not
// count toward the cap. Pagination walks backward in time using the
// until parameter, one chunk per request.
func (c *Client) ExportUserGames(ctx context.Context, user string, fn func(Game) bool) error {
	target := NormalizeVariant(c.cfg.Variant)
	seen := make(map[string]bool)
	kept := 0
	var until int64

	for {
		lines, earliest, stop, err := c.fetchChunk(ctx, user, until, target, seen, &kept, fn)
		if err != nil {
			return err
		}
		c.log.Debug().
			Str("user", user).
			Int("chunk_lines", lines).
			Int("kept", kept).
			Msg("export chunk done")

		if stop || lines == 0 || earliest == 0 || kept >= c.cfg.MaxGames {
			return nil
		}
		until = earliest - 1

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.Delay):
		}
	}
}

// fetchChunk requests one page and feeds its games through the filters
// to fn. It reports the nonempty line count, the earliest creation
// timestamp seen, and whether fn asked to stop.
func (c *Client) fetchChunk(ctx context.Context, user string, until int64, target string, seen map[string]bool, kept *int, fn func(Game) bool) (lines int, earliest int64, stop bool, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.exportURL(user, until), nil)
	if err != nil {
		return 0, 0, false, err
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("export request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, 0, false, fmt.Errorf("%w: %s", ErrUserNotFound, user)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, false, fmt.Errorf("export request: unexpected status %s", resp.Status)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), scanBufSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		lines++

		var g Game
		if err := json.Unmarshal(line, &g); err != nil {
			continue
		}
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true

		if g.CreatedAt > 0 && (earliest == 0 || g.CreatedAt < earliest) {
			earliest = g.CreatedAt
		}

		if c.cfg.MaxRating > 0 && g.MaxRating() > c.cfg.MaxRating {
			continue
		}
		if !strings.Contains(NormalizeVariant(g.Variant), target) {
			continue
		}
		if g.PGN == "" {
			continue
		}

		if !fn(g) {
			return lines, earliest, true, nil
		}
		*kept++
		if *kept >= c.cfg.MaxGames {
			c.log.Info().Str("user", user).Int("max_games", c.cfg.MaxGames).Msg("reached game cap")
			return lines, earliest, false, nil
		}
	}
	if err := sc.Err(); err != nil {
		return lines, earliest, false, fmt.Errorf("export stream: %w", err)
	}
	return lines, earliest, false, nil
}

// exportURL builds the games export URL for one page.
func (c *Client) exportURL(user string, until int64) string {
	q := url.Values{
		"max":       {strconv.Itoa(c.cfg.ChunkSize)},
		"rated":     {"true"},
		"moves":     {"true"},
		"pgnInJson": {"true"},
		"clocks":    {"false"},
		"evals":     {"false"},
		"opening":   {"false"},
	}
	if c.cfg.Variant != "" {
		q.Set("perfType", c.cfg.Variant)
	}
	if until > 0 {
		q.Set("until", strconv.FormatInt(until, 10))
	}
	return c.cfg.BaseURL + "/api/games/user/" + url.PathEscape(user) + "?" + q.Encode()
}
