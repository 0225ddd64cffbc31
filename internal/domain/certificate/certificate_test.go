package certificate_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/okian/seccard/internal/domain/certificate"
	"github.com/okian/seccard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// targetPNG renders a small stand-in target photo.
func targetPNG(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(240, 320, color.NRGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func payload() model.SECPayload {
	return model.SECPayload{
		SessionID: "01J8ZK3V9XCN5T",
		Score:     97,
		Shots:     3,
		Windage:   model.Correction{Clicks: 0.764087, Dir: model.DirLeft},
		Elevation: model.Correction{Clicks: 0.305635, Dir: model.DirDown},
		Target:    model.TargetRef{Key: "splatter-4"},
		Dial:      model.Dial{Unit: "MOA", ClickValue: 0.25},
		VendorURL: "https://printer.example/targets",
		Debug: model.DebugTrace{
			Aim:    model.Point2D{X: 0.5, Y: 0.5},
			Hits:   []model.Point2D{{X: 0.55, Y: 0.48}, {X: 0.52, Y: 0.5}, {X: 0.58, Y: 0.46}},
			AvgPOI: model.Point2D{X: 0.55, Y: 0.48},
		},
	}
}

func TestCompose(t *testing.T) {
	Convey("Given a composer pinned to a fixed clock", t, func() {
		ts := time.UnixMilli(1756400000000)
		comp := certificate.NewComposer(certificate.WithNow(func() time.Time { return ts }))
		ctx := context.Background()

		Convey("When composing a full payload", func() {
			art, err := comp.Compose(ctx, payload(), targetPNG(t))
			So(err, ShouldBeNil)

			Convey("Then the artifact is a 1400x1800 PNG", func() {
				img, derr := imaging.Decode(bytes.NewReader(art.PNG))
				So(derr, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 1400)
				So(img.Bounds().Dy(), ShouldEqual, 1800)
			})

			Convey("And the filename zero-pads the score and carries epoch millis", func() {
				So(art.Filename, ShouldEqual, "SEC_097_1756400000000.png")
			})

			Convey("And composition is deterministic for identical inputs", func() {
				again, aerr := comp.Compose(ctx, payload(), targetPNG(t))
				So(aerr, ShouldBeNil)
				So(bytes.Equal(art.PNG, again.PNG), ShouldBeTrue)
			})
		})

		Convey("When the payload has no confirmed hits", func() {
			p := payload()
			p.Shots = 0
			p.Debug.Hits = nil

			Convey("Then the composer falls back to avgPoi and still renders", func() {
				art, err := comp.Compose(ctx, p, targetPNG(t))
				So(err, ShouldBeNil)
				So(len(art.PNG), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When the target image is missing or not an image", func() {
			Convey("Then nil bytes fail with the missing-image condition", func() {
				_, err := comp.Compose(ctx, payload(), nil)
				So(errors.Is(err, certificate.ErrMissingTargetImage), ShouldBeTrue)
			})

			Convey("And undecodable bytes fail the same way, with no partial artifact", func() {
				art, err := comp.Compose(ctx, payload(), []byte("not an image"))
				So(errors.Is(err, certificate.ErrMissingTargetImage), ShouldBeTrue)
				So(art.PNG, ShouldBeNil)
			})
		})

		Convey("When composing a low score", func() {
			p := payload()
			p.Score = 8

			Convey("Then the filename zero-pads to three digits", func() {
				art, err := comp.Compose(ctx, p, targetPNG(t))
				So(err, ShouldBeNil)
				So(art.Filename, ShouldEqual, "SEC_008_1756400000000.png")
			})
		})
	})
}

func TestResolveVendor(t *testing.T) {
	Convey("Given the footer vendor resolution rule", t, func() {
		Convey("Then a well-formed http URL flags the known vendor", func() {
			So(certificate.ResolveVendor("https://printer.example/t", "RangeWorks Printing"), ShouldEqual, "RangeWorks Printing")
			So(certificate.ResolveVendor("http://printer.example", "RangeWorks Printing"), ShouldEqual, "RangeWorks Printing")
		})

		Convey("Then anything else falls back to the em-dash placeholder", func() {
			So(certificate.ResolveVendor("", "V"), ShouldEqual, "—")
			So(certificate.ResolveVendor("ftp://printer.example", "V"), ShouldEqual, "—")
			So(certificate.ResolveVendor("http://", "V"), ShouldEqual, "—")
			So(certificate.ResolveVendor("not a url", "V"), ShouldEqual, "—")
		})
	})
}

func TestFilename(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	if got := certificate.Filename(5, ts); got != "SEC_005_1700000000123.png" {
		t.Errorf("unexpected filename: %s", got)
	}
	if got := certificate.Filename(100, ts); got != "SEC_100_1700000000123.png" {
		t.Errorf("unexpected filename: %s", got)
	}
}
