package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/model"
	types "github.com/okian/relief/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchRequest(t *testing.T) {
	Convey("Given a legacy body with a request field and flat coordinates", t, func() {
		body := `{
			"request": {"type": "Medical", "priority": "urgent-ish", "lat": 28.61, "lng": 77.2},
			"volunteers": [
				{"id": "v1", "name": "Asha", "skills": ["Medical"], "lat": 28.6, "lng": 77.21,
				 "status": "Available", "completedMissions": 12},
				{"id": "v2", "skills": [], "location": {"place": "Noida"}, "area": "Gurgaon", "status": "busy", "rating": 3.5}
			],
			"topK": 3,
			"options": {"decayPerRank": 0.1, "confidence": " Consensus "}
		}`
		var req types.MatchRequest
		So(json.Unmarshal([]byte(body), &req), ShouldBeNil)

		Convey("When converting to an engine request", func() {
			mr := req.ToMatching()

			Convey("Then the emergency is normalized", func() {
				So(mr.Emergency.Type, ShouldEqual, model.EmergencyMedical)
				So(mr.Emergency.Priority, ShouldEqual, model.PriorityMedium)
				p, ok := mr.Emergency.Location.Coordinates()
				So(ok, ShouldBeTrue)
				So(p.Lat, ShouldEqual, 28.61)
			})

			Convey("Then volunteers keep their fields", func() {
				So(mr.Volunteers, ShouldHaveLength, 2)
				So(mr.Volunteers[0].Status, ShouldEqual, model.StatusAvailable)
				So(mr.Volunteers[0].Rating, ShouldBeNil)
				So(*mr.Volunteers[1].Rating, ShouldEqual, 3.5)
				So(mr.Volunteers[1].Location.Place, ShouldEqual, "Noida")
			})
		})

		Convey("When collecting overrides", func() {
			o := req.Overrides()
			So(*o.TopK, ShouldEqual, 3)
			So(*o.DecayPerRank, ShouldEqual, 0.1)
			So(*o.Confidence, ShouldEqual, matching.ConfidenceConsensus)
			So(o.Weights, ShouldBeNil)
		})
	})

	Convey("Given a body with an emergency field", t, func() {
		req := types.MatchRequest{
			Emergency: &types.EmergencyPayload{Type: "food"},
			Request:   &types.EmergencyPayload{Type: "water"},
		}
		em, ok := req.EmergencyPayload()
		So(ok, ShouldBeTrue)
		So(em.Type, ShouldEqual, "food")
		So(req.Overrides().IsZero(), ShouldBeTrue)
	})

	Convey("Given a body without an emergency", t, func() {
		_, ok := types.MatchRequest{}.EmergencyPayload()
		So(ok, ShouldBeFalse)
		So(types.MatchRequest{}.ToMatching().Emergency.Location.IsZero(), ShouldBeTrue)
	})
}

func TestClassifyRequest(t *testing.T) {
	Convey("Given a classification body", t, func() {
		in := types.ClassifyRequest{Description: "x", Type: "food", Priority: "high", Victims: 4, Area: "Noida"}.ToInput()
		So(in.Type, ShouldEqual, "food")
		So(in.Victims, ShouldEqual, 4)
	})
}

func TestLocationPlaceString(t *testing.T) {
	Convey("Given locations sent as bare place names", t, func() {
		body := `{
			"emergency": {"type": "medical", "location": "Central Delhi"},
			"volunteers": [
				{"id": "v1", "location": "Noida", "status": "available"},
				{"id": "v2", "location": {"lat": 28.6, "lng": 77.2}, "status": "busy"},
				{"id": "v3", "location": null, "status": "busy"}
			]
		}`
		var req types.MatchRequest
		So(json.Unmarshal([]byte(body), &req), ShouldBeNil)
		mr := req.ToMatching()

		Convey("Then the strings become place identifiers", func() {
			So(mr.Emergency.Location.Place, ShouldEqual, "Central Delhi")
			So(mr.Volunteers[0].Location.Place, ShouldEqual, "Noida")
		})

		Convey("Then object and null forms still decode", func() {
			_, ok := mr.Volunteers[1].Location.Coordinates()
			So(ok, ShouldBeTrue)
			So(mr.Volunteers[2].Location.IsZero(), ShouldBeTrue)
		})
	})

	Convey("Given a location of the wrong JSON kind", t, func() {
		var req types.MatchRequest
		err := json.Unmarshal([]byte(`{"emergency": {"location": 42}, "volunteers": []}`), &req)

		Convey("Then decoding fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
