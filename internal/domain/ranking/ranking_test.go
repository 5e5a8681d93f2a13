package ranking

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestRanker_BasicOrdering(t *testing.T) {
	r := New()

	if r.Len() != 0 {
		t.Fatalf("expected empty ranker, got %d", r.Len())
	}

	for i, c := range []struct {
		id    string
		score float64
	}{{"b", 0.5}, {"a", 0.9}, {"c", 0.7}} {
		if err := r.Insert(c.id, c.score, i); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := r.TopN(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "c", "b"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, entries[i].ID)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, entries[i].Rank)
		}
	}
	if entries[0].Ref != 1 {
		t.Errorf("expected ref 1 for a, got %d", entries[0].Ref)
	}
}

func TestRanker_TieBreakByID(t *testing.T) {
	r := New()
	_ = r.Insert("v3", 0.8, 0)
	_ = r.Insert("v1", 0.8, 1)
	_ = r.Insert("v2", 0.8, 2)
	_ = r.Insert("v0", 0.1, 3)

	entries, _ := r.TopN(4)
	got := []string{entries[0].ID, entries[1].ID, entries[2].ID, entries[3].ID}
	want := []string{"v1", "v2", "v3", "v0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	// tied scores share a rank
	if entries[0].Rank != 1 || entries[1].Rank != 1 || entries[2].Rank != 1 || entries[3].Rank != 2 {
		t.Errorf("unexpected ranks: %d %d %d %d", entries[0].Rank, entries[1].Rank, entries[2].Rank, entries[3].Rank)
	}
}

func TestRanker_FloatNoiseTies(t *testing.T) {
	r := New()
	// 0.1+0.2 and 0.3 differ in the last bit
	_ = r.Insert("b", 0.1+0.2, 0)
	_ = r.Insert("a", 0.3, 1)

	entries, _ := r.TopN(2)
	if entries[0].ID != "a" || entries[1].ID != "b" {
		t.Errorf("expected id tie-break a,b, got %s,%s", entries[0].ID, entries[1].ID)
	}
	if entries[0].Score != 0.3 {
		t.Errorf("expected original score to be kept, got %v", entries[0].Score)
	}
}

func TestRanker_Truncation(t *testing.T) {
	r := New(WithCapacity(20))
	for i := 0; i < 20; i++ {
		_ = r.Insert(fmt.Sprintf("v%02d", i), float64(i)/20, i)
	}
	entries, err := r.TopN(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	if entries[0].ID != "v19" || entries[4].ID != "v15" {
		t.Errorf("unexpected head/tail: %s %s", entries[0].ID, entries[4].ID)
	}

	all, _ := r.TopN(100)
	if len(all) != 20 {
		t.Errorf("expected all 20 entries, got %d", len(all))
	}
}

func TestRanker_Errors(t *testing.T) {
	r := New()
	if err := r.Insert("a", math.NaN(), 0); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("expected ErrInvalidScore, got %v", err)
	}
	if err := r.Insert("a", math.Inf(1), 0); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("expected ErrInvalidScore, got %v", err)
	}
	if err := r.Insert("a", 0.5, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Insert("a", 0.6, 1); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if _, err := r.TopN(0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
}

func TestRanker_MatchesSortedOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	type cand struct {
		id    string
		score float64
	}
	cands := make([]cand, 2000)
	r := New()
	for i := range cands {
		// coarse scores force many ties
		cands[i] = cand{id: fmt.Sprintf("id-%04d", rng.Intn(100000)), score: float64(rng.Intn(50)) / 50}
		if err := r.Insert(cands[i].id, cands[i].score, i); err != nil {
			// random ids may repeat; drop the duplicate from the reference
			cands[i].id = ""
		}
	}
	ref := make([]cand, 0, len(cands))
	for _, c := range cands {
		if c.id != "" {
			ref = append(ref, c)
		}
	}
	sort.Slice(ref, func(i, j int) bool {
		if ref[i].score != ref[j].score {
			return ref[i].score > ref[j].score
		}
		return ref[i].id < ref[j].id
	})

	entries, _ := r.TopN(len(ref))
	if len(entries) != len(ref) {
		t.Fatalf("expected %d entries, got %d", len(ref), len(entries))
	}
	for i := range ref {
		if entries[i].ID != ref[i].id {
			t.Fatalf("position %d: expected %s, got %s", i, ref[i].id, entries[i].ID)
		}
	}
}
