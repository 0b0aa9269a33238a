package book

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// EntrySize is the fixed width of one serialized book entry.
const EntrySize = 16

// Entry is one 16-byte book record:
//   bytes 0-7:   position hash, big-endian
//   bytes 8-9:   move, big-endian (bit layout in move.go)
//   bytes 10-11: weight, big-endian
//   bytes 12-15: learn, reserved, always zero
//
// The file format is a bare concatenation of entries sorted ascending
// by (hash, move). No header, no footer; end of file is the end of the
// book.
type Entry struct {
	Key    uint64
	Move   Move
	Weight uint16
	Learn  uint32
}

// EncodeEntry encodes an Entry to 16 bytes.
func EncodeEntry(e Entry) []byte {
	buf := make([]byte, EntrySize)
	binary.BigEndian.PutUint64(buf[0:8], e.Key)
	binary.BigEndian.PutUint16(buf[8:10], uint16(e.Move))
	binary.BigEndian.PutUint16(buf[10:12], e.Weight)
	binary.BigEndian.PutUint32(buf[12:16], e.Learn)
	return buf
}

// DecodeEntry decodes 16 bytes into an Entry.
func DecodeEntry(data []byte) Entry {
	return Entry{
		Key:    binary.BigEndian.Uint64(data[0:8]),
		Move:   Move(binary.BigEndian.Uint16(data[8:10])),
		Weight: binary.BigEndian.Uint16(data[10:12]),
		Learn:  binary.BigEndian.Uint32(data[12:16]),
	}
}

// Entries collects every positively weighted move into a sorted entry
// slice. Weights are clamped to [0, maxWeight] and moves at weight zero
// or below are dropped; in win-only builds that prunes most candidates.
// The sort is ascending by (hash, move), the order readers binary-search
// on, and assumes nothing about map iteration order.
func (b *Book) Entries(maxWeight int64) []Entry {
	entries := make([]Entry, 0, b.Moves())
	for hash, pos := range b.positions {
		for _, st := range pos.Moves {
			w := st.Score
			if w <= 0 {
				continue
			}
			if w > maxWeight {
				w = maxWeight
			}
			entries = append(entries, Entry{
				Key:    hash,
				Move:   st.Move,
				Weight: uint16(w),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Key != entries[j].Key {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].Move < entries[j].Move
	})
	return entries
}

// WriteEntries writes entries to w in their given order.
func WriteEntries(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := bw.Write(EncodeEntry(e)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile encodes the book and writes it to path. The entries go to a
// temp file in the same directory first and are renamed into place, so
// a failed write never publishes a partial book. Returns the number of
// entries written.
func (b *Book) WriteFile(path string, maxWeight int64) (int, error) {
	entries := b.Entries(maxWeight)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, err
	}
	if err := WriteEntries(tmp, entries); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return len(entries), nil
}

// ReadEntries reads 16-byte entries from r until EOF. Anything but a
// multiple of EntrySize bytes means a truncated book and is an error.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	br := bufio.NewReader(r)
	buf := make([]byte, EntrySize)
	for {
		n, err := io.ReadFull(br, buf)
		if err == io.EOF {
			return entries, nil
		}
		if err == io.ErrUnexpectedEOF {
			return entries, fmt.Errorf("truncated book: %d trailing bytes after %d entries", n, len(entries))
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, DecodeEntry(buf))
	}
}

// ReadFile loads every entry from a book file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEntries(f)
}
