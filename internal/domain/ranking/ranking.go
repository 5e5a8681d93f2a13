// Package ranking orders scored candidates deterministically.
//
// Ordering: score DESC, then id ASC. Scores are compared in fixed point so
// that floating-point noise below the resolution cannot reorder equal
// candidates; such candidates tie and fall back to the id.
package ranking

import (
	"hash/fnv"
	"math"
)

// scoreScale controls fixed-point scaling from float64 (9 decimal places).
const scoreScale = 1_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	scaled := x * scoreScale
	if scaled > float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

// Entry is one ranked candidate. Ref is the caller's handle (e.g. a slice index).
type Entry struct {
	Rank  int
	ID    string
	Score float64
	Ref   int

	fp scoreFP
}

// treap node
type node struct {
	id    string
	score float64
	fp    scoreFP
	ref   int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// idPriority derives the heap priority from the id. It is stable across runs,
// so the tree shape (and any traversal) is reproducible for identical input.
func idPriority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n, nn *node) *node {
	if n == nil {
		return nn
	}
	if less(nn.fp, nn.id, n.fp, n.id) {
		n.left = insert(n.left, nn)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, nn)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{ID: n.id, Score: n.score, Ref: n.ref, fp: n.fp})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// Ranker is a request-scoped ordered set of scored candidates.
// It is not safe for concurrent use.
type Ranker struct {
	root *node
	ids  map[string]struct{}
}

// New constructs an empty ranker.
func New(opts ...Option) *Ranker {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Ranker{ids: make(map[string]struct{}, cfg.capacity)}
}

// Insert adds a candidate in O(log n) expected time.
func (r *Ranker) Insert(id string, score float64, ref int) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return ErrInvalidScore
	}
	if _, dup := r.ids[id]; dup {
		return ErrDuplicateID
	}
	r.ids[id] = struct{}{}
	r.root = insert(r.root, &node{
		id:    id,
		score: score,
		fp:    toFixedPoint(score),
		ref:   ref,
		prio:  idPriority(id),
		size:  1,
	})
	return nil
}

// TopN returns the best n entries in rank order.
func (r *Ranker) TopN(n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	if total := nsize(r.root); n > total {
		n = total
	}
	out := make([]Entry, 0, n)
	collectTopN(r.root, n, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Len returns the number of candidates.
func (r *Ranker) Len() int {
	return nsize(r.root)
}

// assignRanksWithTies assigns consecutive ranks; entries whose scores are
// equal at fixed-point resolution share a rank.
func assignRanksWithTies(entries []Entry) {
	currentRank := 0
	for i := range entries {
		if i == 0 || entries[i].fp != entries[i-1].fp {
			currentRank++
		}
		entries[i].Rank = currentRank
	}
}
