package book

// Default tuning values for book construction.
const (
	// DefaultMaxPly is how many plies of each game feed the book.
	DefaultMaxPly = 60
	// DefaultMaxWeight is the weight ceiling applied by Normalize and
	// again when entries are encoded.
	DefaultMaxWeight = 2520
)

// MoveStat is the running strength signal for one move out of one
// position. Score only grows during ingestion, is rewritten once by
// Normalize, and gets a final nudge from Jitter.
type MoveStat struct {
	Move  Move
	Score int64
}

// Position holds every move observed from one position hash.
type Position struct {
	Moves map[Move]*MoveStat
}

// Stat returns the stat for mv, creating it at score zero if absent.
func (p *Position) Stat(mv Move) *MoveStat {
	st, ok := p.Moves[mv]
	if !ok {
		st = &MoveStat{Move: mv}
		p.Moves[mv] = st
	}
	return st
}

// Sum returns the total accumulated score across the position's moves.
func (p *Position) Sum() int64 {
	var s int64
	for _, st := range p.Moves {
		s += st.Score
	}
	return s
}

// Book accumulates move stats keyed by position hash. Positions are
// created lazily and never removed. A Book is not safe for concurrent
// use; shard ingestion across books and Merge them instead.
type Book struct {
	positions map[uint64]*Position
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		positions: make(map[uint64]*Position),
	}
}

// Position returns the position for hash, creating it if absent.
func (b *Book) Position(hash uint64) *Position {
	pos, ok := b.positions[hash]
	if !ok {
		pos = &Position{Moves: make(map[Move]*MoveStat)}
		b.positions[hash] = pos
	}
	return pos
}

// Lookup returns the position for hash, or nil if never observed.
func (b *Book) Lookup(hash uint64) *Position {
	return b.positions[hash]
}

// Add records an increment for mv out of the position identified by
// hash. A zero increment still creates the stat, so the move is
// retained as a zero-weight candidate until encoding prunes it.
func (b *Book) Add(hash uint64, mv Move, inc int64) {
	b.Position(hash).Stat(mv).Score += inc
}

// Merge folds other into b, summing scores for shared (hash, move)
// pairs. Merging per-shard books before normalization is equivalent to
// having ingested all games into one book.
func (b *Book) Merge(other *Book) {
	for hash, pos := range other.positions {
		for mv, st := range pos.Moves {
			b.Position(hash).Stat(mv).Score += st.Score
		}
	}
}

// Positions returns the number of distinct position hashes.
func (b *Book) Positions() int {
	return len(b.positions)
}

// Moves returns the total move stat count across all positions.
func (b *Book) Moves() int {
	n := 0
	for _, pos := range b.positions {
		n += len(pos.Moves)
	}
	return n
}
