package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/seccard/internal/adapters/storage"
	service "github.com/okian/seccard/internal/app"
	"github.com/okian/seccard/internal/domain/banding"
	"github.com/okian/seccard/internal/domain/codec"
	"github.com/okian/seccard/internal/domain/geometry"
	"github.com/okian/seccard/internal/domain/model"
	"github.com/okian/seccard/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	m.Run()
}

func targetPNG(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(80, 60, color.NRGBA{R: 0xd8, G: 0xc9, B: 0xa8, A: 0xff})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func startedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{service.WithStore(storage.NewMemoryStore())}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_ScoreSession(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		convey.Convey("When scoring a centered run", func() {
			res, err := svc.ScoreSession(ctx, service.ScoreRequest{
				Anchor:    model.Point2D{X: 0.5, Y: 0.5},
				Hits:      []model.Point2D{{X: 0.55, Y: 0.48}, {X: 0.55, Y: 0.48}},
				TargetKey: "splatter-4",
			})

			convey.Convey("Then it should produce a full payload", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Duplicate, convey.ShouldBeFalse)
				convey.So(res.Payload.SessionID, convey.ShouldNotBeEmpty)
				convey.So(res.Payload.Shots, convey.ShouldEqual, 2)
				convey.So(res.Payload.Windage.Dir, convey.ShouldEqual, model.DirLeft)
				convey.So(res.Payload.Elevation.Dir, convey.ShouldEqual, model.DirDown)
				convey.So(res.Payload.Dial.ClickValue, convey.ShouldEqual, geometry.DefaultMOAPerClick)
				convey.So(res.Token, convey.ShouldNotBeEmpty)
				convey.So(res.Label, convey.ShouldNotBeEmpty)
				convey.So(res.Daily.N, convey.ShouldEqual, 1)
			})

			convey.Convey("Then the token should decode back to the payload", func() {
				convey.So(err, convey.ShouldBeNil)
				p, derr := codec.Decode(res.Token)
				convey.So(derr, convey.ShouldBeNil)
				convey.So(p.SessionID, convey.ShouldEqual, res.Payload.SessionID)
				convey.So(p.Score, convey.ShouldEqual, res.Payload.Score)
			})
		})

		convey.Convey("When scoring a perfect run", func() {
			res, err := svc.ScoreSession(ctx, service.ScoreRequest{
				Anchor: model.Point2D{X: 0.5, Y: 0.5},
				Hits:   []model.Point2D{{X: 0.5, Y: 0.5}},
			})

			convey.Convey("Then it should land in the green band", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Payload.Score, convey.ShouldEqual, 100)
				convey.So(res.Band.Tag, convey.ShouldEqual, banding.TagGreen)
			})
		})

		convey.Convey("When replaying the same session id", func() {
			req := service.ScoreRequest{
				SessionID: "sess-replay",
				Anchor:    model.Point2D{X: 0.5, Y: 0.5},
				Hits:      []model.Point2D{{X: 0.5, Y: 0.5}},
			}
			first, err1 := svc.ScoreSession(ctx, req)
			second, err2 := svc.ScoreSession(ctx, req)

			convey.Convey("Then the replay should be acknowledged without a record", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(first.Duplicate, convey.ShouldBeFalse)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(second.Duplicate, convey.ShouldBeTrue)

				recs, err := svc.RecentM(ctx, 10)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When overriding the sighting setup for one run", func() {
			res, err := svc.ScoreSession(ctx, service.ScoreRequest{
				Anchor:      model.Point2D{X: 0.5, Y: 0.5},
				Hits:        []model.Point2D{{X: 0.55, Y: 0.5}},
				DistanceYds: 50,
				MOAPerClick: 0.5,
			})

			convey.Convey("Then the overrides should drive the correction", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(res.Payload.Dial.ClickValue, convey.ShouldEqual, 0.5)
				// 0.05 * 4in / (1.047 * 50/100) / 0.5
				convey.So(res.Payload.Windage.Clicks, convey.ShouldAlmostEqual, 0.764, 0.01)
				convey.So(res.Payload.Windage.Dir, convey.ShouldEqual, model.DirLeft)
			})
		})

		convey.Convey("When scoring with no hits", func() {
			_, err := svc.ScoreSession(ctx, service.ScoreRequest{
				SessionID: "sess-empty",
				Anchor:    model.Point2D{X: 0.5, Y: 0.5},
			})

			convey.Convey("Then it should fail and leave the id retryable", func() {
				convey.So(errors.Is(err, geometry.ErrNoHits), convey.ShouldBeTrue)

				res, rerr := svc.ScoreSession(ctx, service.ScoreRequest{
					SessionID: "sess-empty",
					Anchor:    model.Point2D{X: 0.5, Y: 0.5},
					Hits:      []model.Point2D{{X: 0.5, Y: 0.5}},
				})
				convey.So(rerr, convey.ShouldBeNil)
				convey.So(res.Duplicate, convey.ShouldBeFalse)
			})
		})
	})
}

func TestService_Certificates(t *testing.T) {
	convey.Convey("Given a started service with a target image", t, func() {
		ctx := context.Background()
		svc := startedService(t, service.WithRenderWorkerCount(1))
		convey.So(svc.SetTargetImage(ctx, targetPNG(t)), convey.ShouldBeNil)

		res, err := svc.ScoreSession(ctx, service.ScoreRequest{
			SessionID: "sess-cert",
			Anchor:    model.Point2D{X: 0.5, Y: 0.5},
			Hits:      []model.Point2D{{X: 0.52, Y: 0.5}},
		})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When fetching the certificate by token", func() {
			art, cerr := svc.Certificate(ctx, res.Token, "")

			convey.Convey("Then it should compose a full-size PNG", func() {
				convey.So(cerr, convey.ShouldBeNil)
				convey.So(art.Filename, convey.ShouldStartWith, "SEC_")
				img, derr := imaging.Decode(bytes.NewReader(art.PNG))
				convey.So(derr, convey.ShouldBeNil)
				convey.So(img.Bounds(), convey.ShouldResemble, image.Rect(0, 0, 1400, 1800))
			})
		})

		convey.Convey("When fetching without a token", func() {
			art, cerr := svc.Certificate(ctx, "", "")

			convey.Convey("Then the stored payload should back the render", func() {
				convey.So(cerr, convey.ShouldBeNil)
				convey.So(len(art.PNG), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the async render has finished", func() {
			var art struct {
				PNG      []byte
				Filename string
			}
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				a, cerr := svc.Certificate(ctx, "", "sess-cert")
				if cerr == nil && a.Filename != "" {
					art.PNG, art.Filename = a.PNG, a.Filename
					break
				}
				time.Sleep(10 * time.Millisecond)
			}

			convey.Convey("Then the stored artifact should be served", func() {
				convey.So(art.Filename, convey.ShouldStartWith, "SEC_")
				convey.So(len(art.PNG), convey.ShouldBeGreaterThan, 0)
			})
		})
	})

	convey.Convey("Given a started service without a target image", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		convey.Convey("When fetching a certificate with no payload on file", func() {
			_, err := svc.Certificate(ctx, "", "")

			convey.Convey("Then it should report the missing payload", func() {
				convey.So(codec.IsMissing(err), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When uploading bytes that are not an image", func() {
			err := svc.SetTargetImage(ctx, []byte("not a png"))

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, service.ErrBadImage), convey.ShouldBeTrue)
			})
		})
	})
}

func TestService_HistoryPassthrough(t *testing.T) {
	convey.Convey("Given a service with a few scored runs", t, func() {
		ctx := context.Background()
		svc := startedService(t)

		hits := [][]model.Point2D{
			{{X: 0.5, Y: 0.5}},
			{{X: 0.6, Y: 0.5}},
			{{X: 0.8, Y: 0.8}},
		}
		for _, h := range hits {
			_, err := svc.ScoreSession(ctx, service.ScoreRequest{
				Anchor: model.Point2D{X: 0.5, Y: 0.5},
				Hits:   h,
			})
			convey.So(err, convey.ShouldBeNil)
		}

		convey.Convey("Then TopN should order by score descending", func() {
			top, err := svc.TopN(ctx, 2)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(top), convey.ShouldEqual, 2)
			convey.So(top[0].Score, convey.ShouldBeGreaterThanOrEqualTo, top[1].Score)
		})

		convey.Convey("Then Stats should cover every run", func() {
			st, err := svc.Stats(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(st.Count, convey.ShouldEqual, 3)
			convey.So(st.Best, convey.ShouldEqual, 100)
		})

		convey.Convey("Then ClearLog should empty the history", func() {
			svc.ClearLog(ctx)
			_, err := svc.Stats(ctx)
			convey.So(err, convey.ShouldNotBeNil)

			stats := svc.GetStats()
			convey.So(stats["totalSessions"], convey.ShouldEqual, 0)
		})
	})
}
