// Package queue provides the bounded top-k selection primitive used by
// search: a value-based binary min-heap keyed by score, capped at k items.
package queue

import "sort"

// ScoredOrdinal pairs a candidate ordinal with its similarity score.
type ScoredOrdinal struct {
	Ordinal int
	Score   float32
}

// TopK keeps the k highest-scoring candidates from a score stream.
// Each Push is O(log k), so selecting from N candidates is O(N log k).
//
// Value-based storage, no pointer indirection: items[0] is always the
// current minimum once the heap is full.
type TopK struct {
	k     int
	items []ScoredOrdinal
}

// NewTopK creates a selector that retains at most k candidates.
// k <= 0 yields a selector that ignores all input.
func NewTopK(k int) *TopK {
	if k < 0 {
		k = 0
	}
	capHint := k
	if capHint > 4096 {
		capHint = 4096
	}
	return &TopK{
		k:     k,
		items: make([]ScoredOrdinal, 0, capHint),
	}
}

// Len returns the number of retained candidates.
func (t *TopK) Len() int { return len(t.items) }

// Min returns the lowest retained score, if any. Candidates scoring at or
// below it cannot enter a full heap.
func (t *TopK) Min() (ScoredOrdinal, bool) {
	if len(t.items) == 0 {
		return ScoredOrdinal{}, false
	}
	return t.items[0], true
}

// Push offers a candidate. While fewer than k candidates are retained it is
// inserted; afterwards it replaces the current minimum only if it scores
// strictly higher.
func (t *TopK) Push(item ScoredOrdinal) {
	if t.k == 0 {
		return
	}
	if len(t.items) < t.k {
		t.items = append(t.items, item)
		t.siftUp(len(t.items) - 1)
		return
	}
	if item.Score <= t.items[0].Score {
		return
	}
	t.items[0] = item
	t.siftDown(0)
}

// Drain empties the selector and returns the retained candidates ordered by
// descending score (ordinal ascending on ties, for deterministic output).
func (t *TopK) Drain() []ScoredOrdinal {
	out := t.items
	t.items = nil
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Ordinal < out[j].Ordinal
	})
	return out
}

func (t *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if t.items[i].Score >= t.items[p].Score {
			return
		}
		t.items[i], t.items[p] = t.items[p], t.items[i]
		i = p
	}
}

func (t *TopK) siftDown(i int) {
	n := len(t.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		smallest := l
		if r := l + 1; r < n && t.items[r].Score < t.items[l].Score {
			smallest = r
		}
		if t.items[smallest].Score >= t.items[i].Score {
			return
		}
		t.items[i], t.items[smallest] = t.items[smallest], t.items[i]
		i = smallest
	}
}
