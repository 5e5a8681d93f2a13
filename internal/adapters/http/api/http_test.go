package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/relief/internal/adapters/http/api"
	service "github.com/okian/relief/internal/app"
	"github.com/okian/relief/internal/domain/classify"
	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/triage"
	"github.com/okian/relief/internal/domain/types"
	"github.com/okian/relief/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps records the last match call and returns a canned error.
type mockDeps struct {
	matchErr    error
	lastProfile string
	lastReq     matching.Request
	lastOpts    matching.Overrides
}

func (m *mockDeps) Match(_ context.Context, profile string, req matching.Request, o matching.Overrides) (types.MatchResponse, error) {
	m.lastProfile, m.lastReq, m.lastOpts = profile, req, o
	if m.matchErr != nil {
		return types.MatchResponse{}, m.matchErr
	}
	return types.MatchResponse{Profile: profile, Recommendations: []matching.Recommendation{}}, nil
}

func (m *mockDeps) Classify(_ context.Context, in classify.Input) classify.Result {
	return classify.New().Classify(in)
}

func (m *mockDeps) Chat(_ context.Context, message string) triage.Reply {
	return triage.New().Respond(message)
}

func (m *mockDeps) Profiles() []string { return []string{"quick", "standard"} }

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const matchBody = `{
  "emergency": {"type": "medical", "priority": "critical", "location": {"place": "Central Delhi"}},
  "volunteers": [
    {"id": "B", "name": "Bo", "skills": ["cooking"], "area": "ghaziabad", "status": "offline", "completedMissions": 2, "rating": 3},
    {"id": "A", "name": "Asha", "skills": ["Medical", "first_aid"], "lat": 28.62, "lng": 77.21, "status": "available", "completedMissions": 40, "rating": 4.8},
    {"id": "A", "name": "Dup", "lat": 28.62, "lng": 77.21}
  ]
}`

func TestMatchEndpoints(t *testing.T) {
	Convey("Given a router over a started service", t, func() {
		So(logger.Init(), ShouldBeNil)
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		router := api.NewServer(svc).Router(context.Background())

		Convey("When posting to /ai/match-volunteers", func() {
			rec := do(router, http.MethodPost, "/ai/match-volunteers", matchBody)

			Convey("Then the standard profile ranks the medic first", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp types.MatchResponse
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Profile, ShouldEqual, "standard")
				So(len(resp.Recommendations), ShouldEqual, 2)
				So(resp.Recommendations[0].VolunteerID, ShouldEqual, "A")
				So(resp.Recommendations[0].SkillMatches, ShouldResemble, []string{"medical", "first_aid"})
				So(resp.Skipped, ShouldEqual, 1)
				So(resp.Warnings[0].Reason, ShouldEqual, matching.SkipDuplicateID)
			})
		})

		Convey("When posting to /api/match-volunteers", func() {
			rec := do(router, http.MethodPost, "/api/match-volunteers", matchBody)

			Convey("Then the quick profile is used", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"profile":"quick"`)
				So(rec.Body.String(), ShouldContainSubstring, `"estimatedArrival":"10 mins"`)
			})
		})

		Convey("When the legacy request field carries the emergency", func() {
			body := strings.Replace(matchBody, `"emergency"`, `"request"`, 1)
			rec := do(router, http.MethodPost, "/ai/match-volunteers", body)

			Convey("Then it is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the emergency is missing", func() {
			rec := do(router, http.MethodPost, "/ai/match-volunteers", `{"volunteers": []}`)

			Convey("Then a 400 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "invalid_emergency")
			})
		})

		Convey("When the emergency location cannot be resolved", func() {
			rec := do(router, http.MethodPost, "/ai/match-volunteers",
				`{"emergency": {"type": "food", "area": "atlantis"}, "volunteers": []}`)

			Convey("Then a 400 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "invalid_emergency")
			})
		})

		Convey("When the options carry invalid weights", func() {
			body := strings.Replace(matchBody, `"volunteers"`,
				`"options": {"weights": {"skill": 0.9, "distance": 0.9}}, "volunteers"`, 1)
			rec := do(router, http.MethodPost, "/ai/match-volunteers", body)

			Convey("Then a 400 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "invalid_options")
			})
		})

		Convey("When the body is malformed", func() {
			rec := do(router, http.MethodPost, "/ai/match-volunteers", `{"emergency":`)

			Convey("Then a 400 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "bad_request")
			})
		})
	})
}

func TestMatchErrorMapping(t *testing.T) {
	Convey("Given a router over a mock", t, func() {
		deps := &mockDeps{}
		router := api.NewServer(deps).Router(context.Background())

		Convey("When the body names a profile and topK", func() {
			body := strings.Replace(matchBody, `"volunteers"`, `"profile": "custom", "topK": 3, "volunteers"`, 1)
			rec := do(router, http.MethodPost, "/api/match-volunteers", body)

			Convey("Then they are passed through", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastProfile, ShouldEqual, "custom")
				So(*deps.lastOpts.TopK, ShouldEqual, 3)
				So(len(deps.lastReq.Volunteers), ShouldEqual, 3)
			})
		})

		cases := []struct {
			err    error
			status int
			code   string
		}{
			{service.ErrUnknownProfile, http.StatusBadRequest, "unknown_profile"},
			{service.ErrTooManyVolunteers, http.StatusRequestEntityTooLarge, "too_many_volunteers"},
			{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
			{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, tc := range cases {
			Convey("When the service fails with "+tc.code, func() {
				deps.matchErr = tc.err
				rec := do(router, http.MethodPost, "/ai/match-volunteers", matchBody)

				Convey("Then the status is mapped", func() {
					So(rec.Code, ShouldEqual, tc.status)
					So(rec.Body.String(), ShouldContainSubstring, tc.code)
				})
			})
		}

		Convey("When the body exceeds the limit", func() {
			small := api.NewServer(deps, api.WithMaxBodyBytes(16)).Router(context.Background())
			rec := do(small, http.MethodPost, "/ai/match-volunteers", matchBody)

			Convey("Then a 413 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})
	})
}

func TestAuxiliaryEndpoints(t *testing.T) {
	Convey("Given a router over a mock", t, func() {
		router := api.NewServer(&mockDeps{}).Router(context.Background())

		Convey("When classifying a report", func() {
			rec := do(router, http.MethodPost, "/api/classify-emergency",
				`{"description": "Critical: 30 people injured near the bridge", "type": "food", "priority": "low"}`)

			Convey("Then keywords override the hints", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var res classify.Result
				So(json.Unmarshal(rec.Body.Bytes(), &res), ShouldBeNil)
				So(string(res.EmergencyType), ShouldEqual, "medical")
				So(res.SuggestedPriority.String(), ShouldEqual, "critical")
				So(res.EstimatedPeople, ShouldEqual, 30)
			})
		})

		Convey("When classifying an empty report", func() {
			rec := do(router, http.MethodPost, "/ai/classify-emergency", `{}`)

			Convey("Then a 400 is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When chatting", func() {
			rec := do(router, http.MethodPost, "/api/emergency-chat", `{"message": "There is a fire in my building"}`)

			Convey("Then the reply is urgent", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"level":"urgent"`)
				So(rec.Body.String(), ShouldContainSubstring, `"detectedType":"fire"`)
			})
		})

		Convey("When reading health, stats, index and metrics", func() {
			health := do(router, http.MethodGet, "/healthz", "")
			stats := do(router, http.MethodGet, "/stats", "")
			index := do(router, http.MethodGet, "/", "")
			metricsRec := do(router, http.MethodGet, "/metrics", "")

			Convey("Then each responds", func() {
				So(health.Code, ShouldEqual, http.StatusOK)
				So(health.Body.String(), ShouldContainSubstring, `"status":"healthy"`)
				So(stats.Body.String(), ShouldContainSubstring, `"started":true`)
				So(stats.Body.String(), ShouldContainSubstring, `"profiles":["quick","standard"]`)
				So(index.Body.String(), ShouldContainSubstring, "/api/match-volunteers")
				So(metricsRec.Code, ShouldEqual, http.StatusOK)
				So(metricsRec.Body.String(), ShouldContainSubstring, "relief_matching_http_requests_total")
			})
		})

		Convey("When a request carries a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("X-Request-Id", "req-1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then it is echoed", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldEqual, "req-1")
			})
		})

		Convey("When a preflight request arrives", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/match-volunteers", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Convey("Then CORS headers allow it", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})
	})
}
