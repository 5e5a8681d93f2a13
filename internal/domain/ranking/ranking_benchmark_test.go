package ranking

import (
	"fmt"
	"math/rand"
	"testing"
)

func BenchmarkRanker_Insert(b *testing.B) {
	ids := make([]string, 10_000)
	for i := range ids {
		ids[i] = fmt.Sprintf("volunteer-%d", i)
	}
	rng := rand.New(rand.NewSource(1))
	scores := make([]float64, len(ids))
	for i := range scores {
		scores[i] = rng.Float64()
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		r := New(WithCapacity(len(ids)))
		for i, id := range ids {
			_ = r.Insert(id, scores[i], i)
		}
	}
}

func BenchmarkRanker_TopN(b *testing.B) {
	r := New()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10_000; i++ {
		_ = r.Insert(fmt.Sprintf("volunteer-%d", i), rng.Float64(), i)
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_, _ = r.TopN(10)
	}
}
