package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/relief/internal/app"
	"github.com/okian/relief/internal/domain/classify"
	"github.com/okian/relief/internal/domain/types"
	"github.com/okian/relief/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const requestJSON = `{
  "emergency": {"type": "medical", "priority": "high", "area": "Noida"},
  "volunteers": [
    {"id": "v1", "name": "Asha", "skills": ["medical", "first_aid"], "area": "noida", "status": "available", "completedMissions": 30, "rating": 4.8},
    {"id": "v2", "name": "Ravi", "skills": ["logistics"], "lat": 28.6139, "lng": 77.2090, "status": "busy", "completedMissions": 5},
    {"id": "", "skills": ["medical"], "area": "noida", "status": "available"},
    {"id": "v3", "name": "Meera", "skills": ["rescue"], "area": "gurgaon", "status": "available", "completedMissions": 60, "rating": 4.1}
  ]
}`

const requestYAML = `
emergency:
  type: medical
  priority: high
  area: Noida
topK: 2
volunteers:
  - id: v1
    skills: [medical, first_aid]
    area: noida
    status: available
    completedMissions: 30
    rating: 4.8
  - id: v2
    skills: [logistics]
    lat: 28.6139
    lng: 77.2090
    status: busy
`

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeMatchRequest(t *testing.T) {
	convey.Convey("Given the same request as JSON and YAML", t, func() {
		fromJSON, err := decodeMatchRequest("req.json", []byte(requestJSON))
		convey.So(err, convey.ShouldBeNil)
		fromYAML, err := decodeMatchRequest("req.yaml", []byte(requestYAML))
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then both decode into the wire shape", func() {
			convey.So(fromJSON.Volunteers, convey.ShouldHaveLength, 4)
			convey.So(fromYAML.Volunteers, convey.ShouldHaveLength, 2)
			convey.So(fromYAML.Emergency.Area, convey.ShouldEqual, fromJSON.Emergency.Area)
			convey.So(*fromYAML.TopK, convey.ShouldEqual, 2)
			convey.So(*fromYAML.Volunteers[1].Lat, convey.ShouldEqual, 28.6139)
			convey.So(*fromYAML.Volunteers[0].Rating, convey.ShouldEqual, 4.8)
		})

		convey.Convey("Then malformed input is rejected", func() {
			_, err := decodeMatchRequest("req.yml", []byte("emergency: [unclosed"))
			convey.So(err, convey.ShouldNotBeNil)
			_, err = decodeMatchRequest("req.json", []byte("{"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMatchCommand(t *testing.T) {
	convey.Convey("Given a request file", t, func() {
		path := writeFile(t, "request.json", requestJSON)

		convey.Convey("When matching with JSON output", func() {
			out, err := execute("match", path, "--json", "--profile", "standard")
			convey.So(err, convey.ShouldBeNil)

			var resp types.MatchResponse
			convey.So(json.Unmarshal([]byte(out), &resp), convey.ShouldBeNil)

			convey.Convey("Then valid volunteers are ranked and the blank id is skipped", func() {
				convey.So(resp.Profile, convey.ShouldEqual, "standard")
				convey.So(resp.Considered, convey.ShouldEqual, 3)
				convey.So(resp.Skipped, convey.ShouldEqual, 1)
				convey.So(resp.Recommendations, convey.ShouldHaveLength, 3)
				convey.So(resp.Recommendations[0].VolunteerID, convey.ShouldEqual, "v1")
				convey.So(resp.RunID, convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When matching with a table and a short list", func() {
			out, err := execute("match", path, "-k", "1")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "VOLUNTEER")
			convey.So(out, convey.ShouldContainSubstring, "v1")
			convey.So(out, convey.ShouldContainSubstring, "missing_id")
			convey.So(out, convey.ShouldNotContainSubstring, "Meera")
		})

		convey.Convey("When the profile is unknown", func() {
			_, err := execute("match", path, "--profile", "nope")
			convey.So(errors.Is(err, service.ErrUnknownProfile), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a request without an emergency", t, func() {
		path := writeFile(t, "empty.json", `{"volunteers": []}`)
		_, err := execute("match", path)
		convey.So(err, convey.ShouldEqual, errMissingEmergency)
	})

	convey.Convey("Given a missing file", t, func() {
		_, err := execute("match", filepath.Join(t.TempDir(), "missing.json"))
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestClassifyCommand(t *testing.T) {
	convey.Convey("Given a report", t, func() {
		out, err := execute("classify", "--json", "--victims", "3", "Urgent:", "12", "people", "need", "drinking", "water")
		convey.So(err, convey.ShouldBeNil)

		var res classify.Result
		convey.So(json.Unmarshal([]byte(out), &res), convey.ShouldBeNil)
		convey.So(string(res.EmergencyType), convey.ShouldEqual, "water")
		convey.So(res.SuggestedPriority.String(), convey.ShouldEqual, "critical")
		convey.So(res.EstimatedPeople, convey.ShouldEqual, 12)
	})

	convey.Convey("Given a report rendered as a table", t, func() {
		out, err := execute("classify", "injured", "people", "near", "the", "hospital")
		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "medical")
		convey.So(out, convey.ShouldContainSubstring, "Recommended response time")
	})

	convey.Convey("Given nothing to classify", t, func() {
		_, err := execute("classify")
		convey.So(err, convey.ShouldEqual, errEmptyReport)
	})
}

func TestSimulateCommand(t *testing.T) {
	convey.Convey("Given a small in-process simulation", t, func() {
		out, err := execute("simulate", "--scenarios", "5", "--volunteers", "30", "--seed", "11", "--workers", "2", "--top-k", "4")

		convey.So(err, convey.ShouldBeNil)
		convey.So(out, convey.ShouldContainSubstring, "SCENARIOS")
		convey.So(out, convey.ShouldNotContainSubstring, "CHECK")
	})

	convey.Convey("Given an unreachable server", t, func() {
		_, err := execute("simulate", "--url", "http://127.0.0.1:1", "--timeout", "200ms")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		cmd := newRootCmd()

		convey.Convey("Then every subcommand is registered", func() {
			names := []string{}
			for _, c := range cmd.Commands() {
				names = append(names, c.Name())
			}
			convey.So(names, convey.ShouldContain, "serve")
			convey.So(names, convey.ShouldContain, "match")
			convey.So(names, convey.ShouldContain, "classify")
			convey.So(names, convey.ShouldContain, "simulate")
		})

		convey.Convey("Then a bad config file fails the command", func() {
			_, err := execute("--config", filepath.Join(t.TempDir(), "nope.yaml"), "simulate", "--scenarios", "1")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.So(func() {
			updateSystemMetrics()
			updateServiceMetrics(svc)
		}, convey.ShouldNotPanic)
	})

	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
	})
}
