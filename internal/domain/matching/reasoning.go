package matching

import (
	"fmt"
	"strings"

	"github.com/okian/relief/internal/domain/model"
)

// Reasoning tiers by final score.
const (
	perfectThreshold = 0.8
	goodThreshold    = 0.6
)

func tier(score float64) string {
	switch {
	case score > perfectThreshold:
		return "Perfect"
	case score > goodThreshold:
		return "Good"
	default:
		return "Adequate"
	}
}

// reasoning explains a recommendation in one or two sentences.
func reasoning(score float64, t model.EmergencyType, v *model.Volunteer, matches []string) string {
	kind := string(t)
	if !t.Known() {
		kind = "general"
	}
	missions := v.CompletedMissions
	if missions < 0 {
		missions = 0
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s match - %s has relevant %s experience with %d completed missions.",
		tier(score), v.DisplayName(), kind, missions)
	if len(matches) > 0 {
		fmt.Fprintf(&b, " Matching skills: %s.", strings.Join(matches, ", "))
	}
	return b.String()
}
