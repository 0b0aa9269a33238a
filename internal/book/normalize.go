package book

// jitterSpread is the exclusive upper bound of the random weight nudge,
// so Jitter adds a uniform value in [0, 3].
const jitterSpread = 4

// Normalize rescales every position's scores so that, within one
// position, weights are proportional to their accumulated share of
// maxWeight. Each move keeps at least weight 1, so the per-position sum
// can land slightly above maxWeight after flooring; that is accepted.
// Positions whose scores sum to zero or less are left untouched and
// their moves fall out at encoding time.
//
// Positions are independent, so normalization order does not matter.
func (b *Book) Normalize(maxWeight int64) {
	for _, pos := range b.positions {
		sum := pos.Sum()
		if sum <= 0 {
			continue
		}
		for _, st := range pos.Moves {
			scaled := st.Score * maxWeight / sum
			if scaled < 1 {
				scaled = 1
			}
			st.Score = scaled
		}
	}
}

// Jitter nudges every move's weight up by a uniform random amount in
// [0, 3], capped at maxWeight. The nudge breaks exact weight ties so a
// regenerated book does not always prefer the same move among equals.
// Pass ZeroRand to make a build reproducible.
func (b *Book) Jitter(maxWeight int64, rnd RandFunc) {
	for _, pos := range b.positions {
		for _, st := range pos.Moves {
			st.Score += int64(rnd(jitterSpread))
			if st.Score > maxWeight {
				st.Score = maxWeight
			}
		}
	}
}
