package pgnio_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MaggiCoder16/Weak-Bot/internal/pgnio"
)

const sampleGame = `[Event "Casual game"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0`

func TestCreateOpen_RoundTrip(t *testing.T) {
	names := []string{"games.pgn", "games.pgn.zst", "games.pgn.bz2"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			wc, err := pgnio.Create(path)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if _, err := io.WriteString(wc, sampleGame); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := wc.Close(); err != nil {
				t.Fatalf("close writer: %v", err)
			}

			rc, err := pgnio.Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			data, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if err := rc.Close(); err != nil {
				t.Fatalf("close reader: %v", err)
			}

			if string(data) != sampleGame {
				t.Errorf("round trip changed contents:\n%s", data)
			}
		})
	}
}

func TestCreate_CompressesZst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn.zst")

	wc, err := pgnio.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	payload := strings.Repeat(sampleGame+"\n\n", 200)
	if _, err := io.WriteString(wc, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() >= int64(len(payload)) {
		t.Errorf("compressed size %d not below input size %d", info.Size(), len(payload))
	}
}

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.pgn")

	w, err := pgnio.NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteGame(sampleGame + "\n\n\n"); err != nil {
		t.Fatalf("WriteGame: %v", err)
	}
	if err := w.WriteGame(sampleGame); err != nil {
		t.Fatalf("WriteGame: %v", err)
	}
	if err := w.WriteGame(""); err != nil {
		t.Fatalf("WriteGame empty: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if w.Games() != 2 {
		t.Errorf("Games() = %d, want 2", w.Games())
	}
	if w.Size() == 0 {
		t.Error("Size() = 0 after writes")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := sampleGame + "\n\n" + sampleGame + "\n\n"
	if string(data) != want {
		t.Errorf("archive contents:\n%q\nwant:\n%q", data, want)
	}
}

func TestSpool(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.pgn.bz2")

	wc, err := pgnio.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := io.WriteString(wc, sampleGame); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := wc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	spooled, err := pgnio.Spool(path)
	if err != nil {
		t.Fatalf("Spool: %v", err)
	}
	defer os.Remove(spooled)

	if filepath.Ext(spooled) != ".pgn" {
		t.Errorf("spooled name %q does not end in .pgn", spooled)
	}
	data, err := os.ReadFile(spooled)
	if err != nil {
		t.Fatalf("read spooled: %v", err)
	}
	if string(data) != sampleGame {
		t.Errorf("spooled contents:\n%s", data)
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := pgnio.Open(filepath.Join(t.TempDir(), "nope.pgn")); err == nil {
		t.Error("Open of missing file did not fail")
	}
}
