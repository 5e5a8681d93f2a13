package geo

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHaversine(t *testing.T) {
	Convey("Given two points", t, func() {
		delhi := Point{Lat: 28.6139, Lng: 77.2090}
		noida := Point{Lat: 28.5355, Lng: 77.3910}

		Convey("Then the distance to itself is zero", func() {
			So(delhi.DistanceKm(delhi), ShouldAlmostEqual, 0, 1e-9)
		})

		Convey("Then the distance is symmetric and plausible", func() {
			d1 := delhi.DistanceKm(noida)
			d2 := noida.DistanceKm(delhi)
			So(d1, ShouldAlmostEqual, d2, 1e-9)
			So(d1, ShouldBeBetween, 19.0, 21.0)
		})

		Convey("Then one degree of latitude is about 111 km", func() {
			So(Haversine(0, 0, 1, 0), ShouldAlmostEqual, 111.19, 0.01)
		})

		Convey("Then antipodal points are half the circumference apart", func() {
			So(Haversine(0, 0, 0, 180), ShouldAlmostEqual, math.Pi*EarthRadiusKm, 1e-6)
		})
	})
}

func TestValidateCoordinates(t *testing.T) {
	Convey("Given coordinates", t, func() {
		So(ValidateCoordinates(0, 0), ShouldBeTrue)
		So(ValidateCoordinates(90, 180), ShouldBeTrue)
		So(ValidateCoordinates(-90, -180), ShouldBeTrue)
		So(ValidateCoordinates(90.1, 0), ShouldBeFalse)
		So(ValidateCoordinates(0, -180.5), ShouldBeFalse)
		So(ValidateCoordinates(math.NaN(), 0), ShouldBeFalse)
		So(Point{Lat: 10, Lng: math.Inf(1)}.Valid(), ShouldBeFalse)
	})
}

func TestGazetteer(t *testing.T) {
	Convey("Given a gazetteer with the default places", t, func() {
		g := NewGazetteer(DefaultPlaces())

		Convey("When resolving with odd casing and spacing", func() {
			p, ok := g.Resolve("  Central   DELHI ")

			Convey("Then the place is found", func() {
				So(ok, ShouldBeTrue)
				So(p, ShouldResemble, Point{Lat: 28.6139, Lng: 77.2090})
			})
		})

		Convey("When resolving an unknown place", func() {
			_, ok := g.Resolve("Atlantis")
			So(ok, ShouldBeFalse)
		})

		Convey("Then invalid entries are dropped", func() {
			g2 := NewGazetteer(map[string]Point{"bad": {Lat: 200}, "": {Lat: 1, Lng: 1}, "ok": {Lat: 1, Lng: 1}})
			So(g2.Len(), ShouldEqual, 1)
		})

		Convey("Then a nil gazetteer resolves nothing", func() {
			var nilG *Gazetteer
			_, ok := nilG.Resolve("noida")
			So(ok, ShouldBeFalse)
			So(nilG.Len(), ShouldEqual, 0)
		})
	})
}
