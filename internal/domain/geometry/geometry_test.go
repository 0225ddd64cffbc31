package geometry_test

import (
	"context"
	"testing"

	geometry "github.com/okian/seccard/internal/domain/geometry"
	"github.com/okian/seccard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculator_Evaluate(t *testing.T) {
	Convey("Given a calculator with default configuration", t, func() {
		calc := geometry.NewCalculator()
		ctx := context.Background()

		Convey("When evaluating a three-shot group left and low of center", func() {
			in := geometry.Input{
				Anchor: model.Point2D{X: 0.5, Y: 0.5},
				Hits: []model.Point2D{
					{X: 0.55, Y: 0.48},
					{X: 0.52, Y: 0.50},
					{X: 0.58, Y: 0.46},
				},
			}
			res, err := calc.Evaluate(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then POIB is the component-wise mean", func() {
				So(res.POIB.X, ShouldAlmostEqual, 0.55, 1e-9)
				So(res.POIB.Y, ShouldAlmostEqual, 0.48, 1e-9)
			})

			Convey("And the offset is anchor minus POIB", func() {
				So(res.Offset.X, ShouldAlmostEqual, -0.05, 1e-9)
				So(res.Offset.Y, ShouldAlmostEqual, 0.02, 1e-9)
			})

			Convey("And the directions follow the screen-space sign convention", func() {
				So(res.Windage.Dir, ShouldEqual, model.DirLeft)
				So(res.Elevation.Dir, ShouldEqual, model.DirDown)
			})

			Convey("And click counts match the MOA formula to two decimals", func() {
				// 0.05 * 4in = 0.2in; 0.2 / 1.047 = 0.191 MOA; / 0.25 = 0.76 clicks
				So(geometry.Round2(res.Windage.Clicks), ShouldAlmostEqual, 0.76, 1e-9)
				// 0.02 * 4in = 0.08in; 0.08 / 1.047 = 0.0764 MOA; / 0.25 = 0.31 clicks
				So(geometry.Round2(res.Elevation.Clicks), ShouldAlmostEqual, 0.31, 1e-9)
			})

			Convey("And clicks are non-negative on both axes", func() {
				So(res.Windage.Clicks, ShouldBeGreaterThanOrEqualTo, 0)
				So(res.Elevation.Clicks, ShouldBeGreaterThanOrEqualTo, 0)
			})
		})

		Convey("When a single hit lands exactly at the anchor", func() {
			in := geometry.Input{
				Anchor: model.Point2D{X: 0.4, Y: 0.6},
				Hits:   []model.Point2D{{X: 0.4, Y: 0.6}},
			}
			res, err := calc.Evaluate(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then the result is degenerate, not an error", func() {
				So(res.POIB, ShouldResemble, in.Anchor)
				So(res.Offset.X, ShouldAlmostEqual, 0, 1e-12)
				So(res.Offset.Y, ShouldAlmostEqual, 0, 1e-12)
				So(res.Windage.Clicks, ShouldAlmostEqual, 0, 1e-12)
				So(res.Elevation.Clicks, ShouldAlmostEqual, 0, 1e-12)
			})

			Convey("And zero offsets tie-break to the non-negative branch", func() {
				So(res.Windage.Dir, ShouldEqual, model.DirRight)
				So(res.Elevation.Dir, ShouldEqual, model.DirDown)
			})

			Convey("And the score is a perfect 100", func() {
				So(res.Score, ShouldEqual, 100)
			})
		})

		Convey("When the group sits right and high of the anchor", func() {
			in := geometry.Input{
				Anchor: model.Point2D{X: 0.5, Y: 0.5},
				Hits:   []model.Point2D{{X: 0.40, Y: 0.62}},
			}
			res, err := calc.Evaluate(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then corrections point RIGHT and UP", func() {
				So(res.Windage.Dir, ShouldEqual, model.DirRight)
				So(res.Elevation.Dir, ShouldEqual, model.DirUp)
				So(res.Windage.Clicks, ShouldBeGreaterThan, 0)
				So(res.Elevation.Clicks, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When there are no hits", func() {
			_, err := calc.Evaluate(ctx, geometry.Input{Anchor: model.Point2D{X: 0.5, Y: 0.5}})

			Convey("Then it reports ErrNoHits", func() {
				So(err, ShouldEqual, geometry.ErrNoHits)
			})
		})
	})
}

func TestCalculator_Options(t *testing.T) {
	Convey("Given a calculator with custom distance and templates", t, func() {
		calc := geometry.NewCalculator(
			geometry.WithDistance(50),
			geometry.WithMOAPerClick(0.5),
			geometry.WithTargetWidths(map[string]float64{"splatter-12": 12.0}),
		)
		ctx := context.Background()

		Convey("When evaluating against a known template", func() {
			in := geometry.Input{
				Anchor:    model.Point2D{X: 0.5, Y: 0.5},
				Hits:      []model.Point2D{{X: 0.6, Y: 0.5}},
				TargetKey: "splatter-12",
			}
			res, err := calc.Evaluate(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then the template width and distance scale the clicks", func() {
				// 0.1 * 12in = 1.2in; inchesPerMOA = 1.047 * 50 / 100 = 0.5235
				// 1.2 / 0.5235 = 2.2923 MOA; / 0.5 = 4.58 clicks
				So(geometry.Round2(res.Windage.Clicks), ShouldAlmostEqual, 4.58, 1e-9)
				So(res.Windage.Dir, ShouldEqual, model.DirLeft)
			})
		})

		Convey("When the template key is unknown", func() {
			in := geometry.Input{
				Anchor:    model.Point2D{X: 0.5, Y: 0.5},
				Hits:      []model.Point2D{{X: 0.6, Y: 0.5}},
				TargetKey: "no-such-template",
			}
			res, err := calc.Evaluate(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then the default width applies", func() {
				// 0.1 * 4in = 0.4in; / 0.5235 = 0.7641 MOA; / 0.5 = 1.53 clicks
				So(geometry.Round2(res.Windage.Clicks), ShouldAlmostEqual, 1.53, 1e-9)
			})
		})

		Convey("When options carry invalid values", func() {
			ignored := geometry.NewCalculator(
				geometry.WithDistance(-10),
				geometry.WithMOAPerClick(0),
				geometry.WithDefaultTargetWidth(-1),
			)

			Convey("Then defaults are preserved", func() {
				So(ignored.DistanceYds(), ShouldEqual, geometry.DefaultDistanceYds)
				So(ignored.MOAPerClick(), ShouldEqual, geometry.DefaultMOAPerClick)
			})
		})
	})
}

func TestRound2(t *testing.T) {
	Convey("Given full-precision click values", t, func() {
		Convey("Then Round2 formats to two decimals without mutating sign", func() {
			So(geometry.Round2(0.764087), ShouldEqual, 0.76)
			So(geometry.Round2(0.306), ShouldEqual, 0.31)
			So(geometry.Round2(0), ShouldEqual, 0)
		})
	})
}
