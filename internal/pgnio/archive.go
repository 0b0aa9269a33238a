// Package pgnio reads and writes PGN archives, with compression picked
// by file extension: .zst and .bz2 are transparent, anything else is
// plain text.
package pgnio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/inhies/go-bytesize"
	"github.com/klauspost/compress/zstd"
)

// Create opens path for writing PGN text.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return nil, err
		}
		return &writeStack{Writer: zw, closers: []io.Closer{zw, f}}, nil
	case ".bz2":
		bw, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: bzip2.BestCompression})
		if err != nil {
			f.Close()
			return nil, err
		}
		return &writeStack{Writer: bw, closers: []io.Closer{bw, f}}, nil
	default:
		return f, nil
	}
}

// Open opens path for reading PGN text with transparent decompression.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rc := zr.IOReadCloser()
		return &readStack{Reader: rc, closers: []io.Closer{rc, f}}, nil
	case ".bz2":
		br, err := bzip2.NewReader(f, nil)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readStack{Reader: br, closers: []io.Closer{br, f}}, nil
	default:
		return f, nil
	}
}

// Spool decompresses path into a temporary plain .pgn file and returns
// its location. The caller removes the file when done with it.
func Spool(path string) (string, error) {
	rc, err := Open(path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "pgnspool-*.pgn")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// writeStack is a decorated writer plus the closers beneath it, closed
// top down.
type writeStack struct {
	io.Writer
	closers []io.Closer
}

func (w *writeStack) Close() error { return closeAll(w.closers) }

type readStack struct {
	io.Reader
	closers []io.Closer
}

func (r *readStack) Close() error { return closeAll(r.closers) }

func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Writer appends game texts to one PGN archive, keeping games separated
// by a blank line so downstream parsers see distinct games.
type Writer struct {
	wc    io.WriteCloser
	bw    *bufio.Writer
	games int
	bytes bytesize.ByteSize
}

// NewWriter creates the archive at path, truncating any previous file.
func NewWriter(path string) (*Writer, error) {
	wc, err := Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{wc: wc, bw: bufio.NewWriter(wc)}, nil
}

// WriteGame appends one game's PGN text. Trailing newlines are
// normalized so every game ends with exactly one blank line.
func (w *Writer) WriteGame(pgn string) error {
	pgn = strings.TrimRight(pgn, "\n")
	if pgn == "" {
		return nil
	}
	n, err := w.bw.WriteString(pgn)
	w.bytes += bytesize.ByteSize(n)
	if err != nil {
		return err
	}
	n, err = w.bw.WriteString("\n\n")
	w.bytes += bytesize.ByteSize(n)
	if err != nil {
		return err
	}
	w.games++
	return nil
}

// Games returns how many games have been written.
func (w *Writer) Games() int { return w.games }

// Size returns the uncompressed bytes written so far.
func (w *Writer) Size() bytesize.ByteSize { return w.bytes }

// Close flushes buffered text and closes the underlying stream.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.wc.Close()
		return err
	}
	return w.wc.Close()
}
