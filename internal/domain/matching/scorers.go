package matching

import (
	"fmt"
	"math"

	"github.com/okian/relief/internal/domain/model"
)

const maxRating = 5.0

// skillScore returns |required ∩ have| / |required| and the matched skills in
// requirement order. An empty requirement list yields unknown.
func skillScore(required []string, have map[string]struct{}, unknown float64) (float64, []string) {
	matches := make([]string, 0, len(required))
	if len(required) == 0 {
		return unknown, matches
	}
	for _, s := range required {
		if _, ok := have[s]; ok {
			matches = append(matches, s)
		}
	}
	return math.Min(float64(len(matches))/float64(len(required)), 1), matches
}

// proximityScore decays linearly from 1 at the emergency to 0 at maxKm.
func proximityScore(distanceKm, maxKm float64) float64 {
	return math.Max(0, 1-distanceKm/maxKm)
}

func availabilityScore(s model.Status, fallback float64) float64 {
	if model.ParseStatus(string(s)) == model.StatusAvailable {
		return 1
	}
	return fallback
}

func experienceScore(missions, limit int) float64 {
	if missions <= 0 {
		return 0
	}
	return math.Min(float64(missions)/float64(limit), 1)
}

func ratingScore(rating *float64, fallback float64) float64 {
	r := fallback
	if rating != nil && !math.IsNaN(*rating) {
		r = *rating
	}
	return clamp(r, 0, maxRating) / maxRating
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// roundScore snaps an aggregate score to the resolution used for ordering,
// so equal reported scores are exactly the ones that tie.
func roundScore(x float64) float64 {
	return math.Round(x*1e9) / 1e9
}

func clamp01(x float64) float64 {
	return clamp(x, 0, 1)
}

// skillPercentage renders a [0,1] skill score as a whole percentage.
func skillPercentage(score float64) int {
	return int(math.Floor(score*100 + 1e-9))
}

// formatDistance renders a distance with one decimal, e.g. "2.4km".
func formatDistance(km float64) string {
	return fmt.Sprintf("%.1fkm", km)
}

// estimateArrival converts distance into minutes at speedKmh. With no speed
// configured it falls back to 10 minutes plus 3 per list position.
func estimateArrival(km, speedKmh float64, position int) string {
	if speedKmh <= 0 {
		return fmt.Sprintf("%d mins", 10+position*3)
	}
	mins := int(math.Ceil(km / speedKmh * 60))
	if mins < 1 {
		mins = 1
	}
	return fmt.Sprintf("%d mins", mins)
}
