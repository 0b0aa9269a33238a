package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/inhies/go-bytesize"

	"github.com/MaggiCoder16/Weak-Bot/internal/book"
)

func main() {
	var (
		bookPath = flag.String("book", "book.bin", "Polyglot book file")
		limit    = flag.Int("limit", 0, "Print at most this many entries (0 = all)")
		keyHex   = flag.String("key", "", "Only print entries for this position key (hex)")
	)
	flag.Parse()

	entries, err := book.ReadFile(*bookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read book: %v\n", err)
		os.Exit(1)
	}

	info, err := os.Stat(*bookPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stat book: %v\n", err)
		os.Exit(1)
	}

	var filter uint64
	haveFilter := false
	if *keyHex != "" {
		k, err := strconv.ParseUint(*keyHex, 16, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad key %q: %v\n", *keyHex, err)
			os.Exit(1)
		}
		filter = k
		haveFilter = true
	}

	fmt.Printf("%s: %d entries, %s\n\n", *bookPath, len(entries), bytesize.ByteSize(uint64(info.Size())))

	var (
		positions  int
		printed    int
		disorder   int
		zeroWeight int
		learnSet   int
		lastKey    uint64
		lastMove   book.Move
	)

	for i, e := range entries {
		if i == 0 || e.Key != lastKey {
			positions++
		}
		// The format wants entries strictly ascending by (key, move) so
		// probes can binary search.
		if i > 0 && (e.Key < lastKey || (e.Key == lastKey && e.Move <= lastMove)) {
			disorder++
		}
		lastKey, lastMove = e.Key, e.Move

		if e.Weight == 0 {
			zeroWeight++
		}
		if e.Learn != 0 {
			learnSet++
		}

		if haveFilter && e.Key != filter {
			continue
		}
		if *limit > 0 && printed >= *limit {
			continue
		}
		fmt.Printf("%8d  %016x  %-6s %6d\n", i, e.Key, e.Move.UCI(), e.Weight)
		printed++
	}

	fmt.Printf("\n%d positions, %d entries\n", positions, len(entries))
	if zeroWeight > 0 {
		fmt.Printf("%d entries with zero weight\n", zeroWeight)
	}
	if learnSet > 0 {
		fmt.Printf("%d entries with learn data\n", learnSet)
	}
	if disorder > 0 {
		fmt.Fprintf(os.Stderr, "%d entries out of order\n", disorder)
		os.Exit(1)
	}
}
