package simulate

import (
	"fmt"

	"github.com/okian/relief/internal/domain/types"
)

// Violation is one broken property of a match response.
type Violation struct {
	Scenario int    `json:"scenario"`
	Check    string `json:"check"`
	Detail   string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("scenario %d: %s: %s", v.Scenario, v.Check, v.Detail)
}

// Verify checks a response against the request that produced it: list
// length, accounting of skipped volunteers, positions, dense ranks, score
// order with id tie-breaks and score bounds.
func Verify(scenario int, req types.MatchRequest, resp types.MatchResponse) []Violation {
	var out []Violation
	fail := func(check, format string, args ...any) {
		out = append(out, Violation{Scenario: scenario, Check: check, Detail: fmt.Sprintf(format, args...)})
	}

	if got := resp.Considered + resp.Skipped; got != len(req.Volunteers) {
		fail("accounting", "considered %d + skipped %d != pool %d", resp.Considered, resp.Skipped, len(req.Volunteers))
	}
	if len(resp.Warnings) != resp.Skipped {
		fail("accounting", "%d warnings for %d skipped", len(resp.Warnings), resp.Skipped)
	}

	want := resp.Considered
	if req.TopK != nil && *req.TopK < want {
		want = *req.TopK
	}
	recs := resp.Recommendations
	if len(recs) != want {
		fail("truncation", "got %d recommendations, want %d", len(recs), want)
	}

	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		if r.Position != i+1 {
			fail("position", "entry %d has position %d", i, r.Position)
		}
		if r.Score < 0 || r.Score > 1 {
			fail("bounds", "%s score %v", r.VolunteerID, r.Score)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			fail("bounds", "%s confidence %v", r.VolunteerID, r.Confidence)
		}
		if _, dup := seen[r.VolunteerID]; dup {
			fail("unique", "%s listed twice", r.VolunteerID)
		}
		seen[r.VolunteerID] = struct{}{}

		if i == 0 {
			if r.Rank != 1 {
				fail("rank", "first entry has rank %d", r.Rank)
			}
			continue
		}
		prev := recs[i-1]
		switch r.Rank {
		case prev.Rank:
			if r.VolunteerID < prev.VolunteerID {
				fail("tie-break", "%s listed after %s at rank %d", r.VolunteerID, prev.VolunteerID, r.Rank)
			}
		case prev.Rank + 1:
		default:
			fail("rank", "rank %d follows %d", r.Rank, prev.Rank)
		}
		if r.Score > prev.Score {
			fail("order", "%s (%v) above %s (%v)", prev.VolunteerID, prev.Score, r.VolunteerID, r.Score)
		}
	}
	return out
}

// Compare checks that two responses to the same request list the same
// volunteers in the same order with the same scores.
func Compare(scenario int, a, b types.MatchResponse) []Violation {
	if len(a.Recommendations) != len(b.Recommendations) {
		return []Violation{{
			Scenario: scenario,
			Check:    "determinism",
			Detail:   fmt.Sprintf("lengths differ: %d vs %d", len(a.Recommendations), len(b.Recommendations)),
		}}
	}
	for i := range a.Recommendations {
		x, y := a.Recommendations[i], b.Recommendations[i]
		if x.VolunteerID != y.VolunteerID || x.Score != y.Score || x.Rank != y.Rank {
			return []Violation{{
				Scenario: scenario,
				Check:    "determinism",
				Detail:   fmt.Sprintf("position %d: %s/%v vs %s/%v", i+1, x.VolunteerID, x.Score, y.VolunteerID, y.Score),
			}}
		}
	}
	return nil
}
