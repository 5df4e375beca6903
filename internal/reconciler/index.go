package reconciler

import (
	"fjacquet/mpr-recon/internal/models"
)

// keyIndex maps a join key to the positions of the records carrying it, in
// file order. Blank keys are never indexed.
type keyIndex struct {
	positions map[string][]int
	consumed  []bool
	oneToOne  bool
}

func newKeyIndex(records []models.CanonicalRecord, key func(models.CanonicalRecord) string, keep func(models.CanonicalRecord) bool, oneToOne bool) *keyIndex {
	idx := &keyIndex{
		positions: make(map[string][]int),
		consumed:  make([]bool, len(records)),
		oneToOne:  oneToOne,
	}
	for i, rec := range records {
		k := key(rec)
		if k == "" || (keep != nil && !keep(rec)) {
			continue
		}
		idx.positions[k] = append(idx.positions[k], i)
	}
	return idx
}

// has reports whether any record carries k.
func (idx *keyIndex) has(k string) bool {
	if k == "" {
		return false
	}
	return len(idx.positions[k]) > 0
}

// take returns the first joinable record position for k. In one-to-one mode
// the returned position is consumed. The second result is false when no
// record is available.
func (idx *keyIndex) take(k string) (int, bool) {
	if k == "" {
		return -1, false
	}
	for _, pos := range idx.positions[k] {
		if !idx.oneToOne {
			return pos, true
		}
		if !idx.consumed[pos] {
			idx.consumed[pos] = true
			return pos, true
		}
	}
	return -1, false
}

func (idx *keyIndex) isConsumed(pos int) bool {
	return idx.consumed[pos]
}
