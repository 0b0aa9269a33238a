package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MaggiCoder16/Weak-Bot/internal/book"
)

const shortGame = `[Event "Test"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "White"]
[Black "Black"]
[Result "1-0"]
[WhiteElo "1500"]
[BlackElo "1500"]

1. e4 e5 2. Nf3 Nc6 1-0
`

func writePGN(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuilder_IngestFile(t *testing.T) {
	path := writePGN(t, "games.pgn", shortGame)

	b := NewBuilder(Config{Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	stats := b.Stats()
	if stats.Games != 1 || stats.Kept != 1 {
		t.Errorf("stats = %+v, want 1 game kept", stats)
	}

	bk := b.Book()
	if bk.Positions() != 4 {
		t.Errorf("Positions() = %d, want 4", bk.Positions())
	}

	// The starting position must land on its well-known key, with e4
	// scored as a winner's first move: 6 * decay(60, 0) = 72.
	start := bk.Lookup(0x463b96181691fc9c)
	if start == nil {
		t.Fatal("starting position missing from book")
	}
	e4 := book.EncodeMove(12, 28, book.PromoNone)
	st, ok := start.Moves[e4]
	if !ok {
		t.Fatal("e2e4 missing from starting position")
	}
	if st.Score != 72 {
		t.Errorf("e4 score = %d, want 72", st.Score)
	}

	// After 1. e4 the key is the second reference key; black's reply is
	// a loser's move at ply 1: 1 * decay(60, 1) = 11.
	after := bk.Lookup(0x823c9b50fd114196)
	if after == nil {
		t.Fatal("position after 1. e4 missing from book")
	}
	e5 := book.EncodeMove(52, 36, book.PromoNone)
	st, ok = after.Moves[e5]
	if !ok {
		t.Fatal("e7e5 missing")
	}
	if st.Score != 11 {
		t.Errorf("e5 score = %d, want 11", st.Score)
	}

	// White's Nf3 at ply 2: 6 * decay(60, 2) = 66.
	nf3 := book.EncodeMove(6, 21, book.PromoNone)
	found := false
	for _, e := range bk.Entries(book.DefaultMaxWeight) {
		if e.Move == nf3 && e.Weight == 66 {
			found = true
		}
	}
	if !found {
		t.Error("g1f3 with score 66 not found")
	}
}

func TestBuilder_AccumulatesAcrossFiles(t *testing.T) {
	path := writePGN(t, "games.pgn", shortGame)

	b := NewBuilder(Config{Logger: zerolog.Nop()})
	for i := 0; i < 2; i++ {
		if err := b.IngestFile(context.Background(), path); err != nil {
			t.Fatalf("IngestFile: %v", err)
		}
	}

	if got := b.Stats().Games; got != 2 {
		t.Errorf("Games = %d, want 2", got)
	}
	e4 := book.EncodeMove(12, 28, book.PromoNone)
	if got := b.Book().Lookup(0x463b96181691fc9c).Moves[e4].Score; got != 144 {
		t.Errorf("e4 score = %d, want 144", got)
	}
}

func TestBuilder_MaxPly(t *testing.T) {
	path := writePGN(t, "games.pgn", shortGame)

	b := NewBuilder(Config{MaxPly: 2, Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	bk := b.Book()
	if bk.Positions() != 2 {
		t.Errorf("Positions() = %d, want 2", bk.Positions())
	}

	// With a 2-ply horizon the decay floor is already reached at ply 0.
	e4 := book.EncodeMove(12, 28, book.PromoNone)
	if got := bk.Lookup(0x463b96181691fc9c).Moves[e4].Score; got != 6 {
		t.Errorf("e4 score = %d, want 6", got)
	}
}

func TestBuilder_SkipsOverratedGames(t *testing.T) {
	game := `[Event "Test"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "White"]
[Black "Black"]
[Result "1-0"]
[WhiteElo "2500"]
[BlackElo "1500"]

1. e4 e5 1-0
`
	path := writePGN(t, "games.pgn", game)

	b := NewBuilder(Config{MaxRating: 2000, Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	stats := b.Stats()
	if stats.SkippedRating != 1 {
		t.Errorf("SkippedRating = %d, want 1", stats.SkippedRating)
	}
	if b.Book().Positions() != 0 {
		t.Errorf("Positions() = %d, want 0", b.Book().Positions())
	}
}

func TestBuilder_UnratedGamesPassCap(t *testing.T) {
	game := `[Event "Test"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "White"]
[Black "Black"]
[Result "1-0"]
[WhiteElo "?"]
[BlackElo "-"]

1. e4 e5 1-0
`
	path := writePGN(t, "games.pgn", game)

	b := NewBuilder(Config{MaxRating: 2000, Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if got := b.Stats().Kept; got != 1 {
		t.Errorf("Kept = %d, want 1", got)
	}
}

func TestBuilder_VariantFilter(t *testing.T) {
	anti := `[Event "Test"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "White"]
[Black "Black"]
[Result "1-0"]
[Variant "Antichess"]

1. e4 e5 1-0
`
	path := writePGN(t, "games.pgn", anti)

	b := NewBuilder(Config{Variant: "standard", Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	stats := b.Stats()
	if stats.SkippedVariant != 1 {
		t.Errorf("SkippedVariant = %d, want 1", stats.SkippedVariant)
	}

	// No Variant tag means a standard game, so the filter keeps it.
	plain := writePGN(t, "plain.pgn", shortGame)
	if err := b.IngestFile(context.Background(), plain); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if got := b.Stats().Kept; got != 1 {
		t.Errorf("Kept = %d, want 1", got)
	}
}

func TestBuilder_UnknownResultScoresZero(t *testing.T) {
	game := `[Event "Test"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "White"]
[Black "Black"]
[Result "*"]

1. e4 e5 *
`
	path := writePGN(t, "games.pgn", game)

	b := NewBuilder(Config{Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	// Moves are still recorded as zero-weight candidates.
	if got := b.Stats().Kept; got != 1 {
		t.Errorf("Kept = %d, want 1", got)
	}
	e4 := book.EncodeMove(12, 28, book.PromoNone)
	st, ok := b.Book().Lookup(0x463b96181691fc9c).Moves[e4]
	if !ok {
		t.Fatal("e2e4 missing from starting position")
	}
	if st.Score != 0 {
		t.Errorf("e4 score = %d, want 0", st.Score)
	}
}

func TestBuilder_Promotion(t *testing.T) {
	game := `[Event "Test"]
[Site "?"]
[Date "2024.01.01"]
[Round "1"]
[White "White"]
[Black "Black"]
[Result "1-0"]

1. e4 d5 2. exd5 c6 3. dxc6 Nf6 4. cxb7 Bd7 5. bxa8=Q 1-0
`
	path := writePGN(t, "games.pgn", game)

	b := NewBuilder(Config{Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), path); err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	promo := book.EncodeMove(49, 56, book.PromoQueen) // b7a8q
	found := false
	for _, e := range b.Book().Entries(book.DefaultMaxWeight) {
		if e.Move == promo {
			found = true
		}
	}
	if !found {
		t.Error("b7a8q promotion not recorded")
	}
}

func TestBuilder_RejectsNonPGN(t *testing.T) {
	b := NewBuilder(Config{Logger: zerolog.Nop()})
	if err := b.IngestFile(context.Background(), "games.txt"); err == nil {
		t.Error("IngestFile accepted a non-PGN path")
	}
}

func TestIsPGNFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"games.pgn", true},
		{"games.pgn.zst", true},
		{"games.pgn.bz2", true},
		{"games.txt", false},
		{"games.zst", false},
		{"games.bz2", false},
		{"pgn", false},
	}

	for _, tt := range tests {
		if got := isPGNFile(tt.name); got != tt.want {
			t.Errorf("isPGNFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1500", 1500},
		{"", 0},
		{"?", 0},
		{"-", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := parseRating(tt.in); got != tt.want {
			t.Errorf("parseRating(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
