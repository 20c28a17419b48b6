// Package ttable implements the two-level sparse conditional lexical
// translation table T(f|e) that fast_align's EM loop reads and accumulates
// into on every sentence: an outer mapping from source word to an inner
// mapping from target word to probability (or, before the first
// normalization, raw expected count).
package ttable

import "errors"

// WordID is a dense, non-negative token identifier. 0 is reserved for the
// synthetic NULL source word.
type WordID uint32

// NullID is the WordID every Vocabulary must reserve for the NULL token.
const NullID WordID = 0

// unseenProb is the floor Prob returns for an (e, f) pair it has never
// observed. It keeps the per-position posterior denominator strictly
// positive on the very first iteration, before anything has been
// accumulated.
const unseenProb = 1e-9

// ErrNonPositiveAlpha is returned by NormalizeVB when alpha <= 0.
var ErrNonPositiveAlpha = errors.New("ttable: alpha must be > 0")

// Table is the two-level sparse store. The outer dimension is
// direct-addressed by WordID (a growable slice of row pointers, so lookups
// for frequent source words never touch a hash bucket); each row is an
// open-addressed hash map keyed by target WordID.
type Table struct {
	rows []*innerMap
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{}
}

func (t *Table) row(e WordID, create bool) *innerMap {
	if int(e) >= len(t.rows) {
		if !create {
			return nil
		}
		grown := make([]*innerMap, int(e)+1)
		copy(grown, t.rows)
		t.rows = grown
	}
	if t.rows[e] == nil {
		if !create {
			return nil
		}
		t.rows[e] = newInnerMap()
	}
	return t.rows[e]
}

// Prob returns T(f|e), or the unseen floor if (e, f) has never been touched.
func (t *Table) Prob(e, f WordID) float64 {
	row := t.row(e, false)
	if row == nil {
		return unseenProb
	}
	if v, ok := row.get(f); ok {
		return v
	}
	return unseenProb
}

// Increment adds delta to T[e][f], creating the entry if it doesn't exist.
// delta must be non-negative; increments are associative and commutative,
// so their order does not matter. Table has no internal locking: creating
// a row or growing one reallocates shared slices, so concurrent calls
// must be synchronized by the caller.
func (t *Table) Increment(e, f WordID, delta float64) {
	if delta < 0 {
		panic("ttable: negative increment")
	}
	if delta == 0 {
		return
	}
	t.row(e, true).increment(f, delta)
}

// Normalize rescales every row so its entries sum to 1, the maximum
// likelihood re-estimation step between EM iterations. Rows with a zero
// sum (no observations at all) are left untouched.
func (t *Table) Normalize() {
	for _, row := range t.rows {
		if row == nil {
			continue
		}
		sum := row.sum()
		if sum > 0 {
			row.scale(1.0 / sum)
		}
	}
}

// NormalizeVB applies the variational Bayes update under a symmetric
// Dirichlet(alpha) prior: for every e, s = sum_f T[e][f] + alpha*|V_f(e)|,
// and T[e][f] <- exp(psi(T[e][f]+alpha) - psi(s)), where psi is the
// digamma function.
func (t *Table) NormalizeVB(alpha float64) error {
	if alpha <= 0 {
		return ErrNonPositiveAlpha
	}
	for _, row := range t.rows {
		if row == nil || row.size == 0 {
			continue
		}
		s := row.sum() + alpha*float64(row.size)
		psiS := digamma(s)
		for i := range row.occupied {
			if row.occupied[i] {
				row.vals[i] = expDigammaStep(row.vals[i], alpha, psiS)
			}
		}
	}
	return nil
}

// ForEachSource calls f once for every source word with at least one
// observed target, in outer-slice (WordID ascending) order.
func (t *Table) ForEachSource(f func(e WordID)) {
	for e, row := range t.rows {
		if row != nil {
			f(WordID(e))
		}
	}
}

// ForEachTarget calls f once for every target word observed under e, with
// its current stored value (a raw count before the first Normalize, a
// probability afterward). Iteration order within a row is unspecified;
// callers that need deterministic output must sort.
func (t *Table) ForEachTarget(e WordID, f func(target WordID, value float64)) {
	row := t.row(e, false)
	if row == nil {
		return
	}
	row.forEach(f)
}
