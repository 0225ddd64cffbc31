package codec_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/okian/seccard/internal/adapters/storage"
	"github.com/okian/seccard/internal/domain/codec"
	"github.com/okian/seccard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func samplePayload() model.SECPayload {
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
			Hits:   []model.Point2D{{X: 0.55, Y: 0.48}, {X: 0.52, Y: 0.5}},
			AvgPOI: model.Point2D{X: 0.535, Y: 0.49},
		},
		SKU: "SKU-目标-αβ", // non-ASCII must survive the round trip
	}
}

func TestEncodeDecode(t *testing.T) {
	Convey("Given a fully populated payload", t, func() {
		p := samplePayload()

		Convey("When encoded to a transport token", func() {
			token, err := codec.Encode(p)
			So(err, ShouldBeNil)
			So(token, ShouldNotBeEmpty)

			Convey("Then the token is URL-safe", func() {
				So(token, ShouldNotContainSubstring, "+")
				So(token, ShouldNotContainSubstring, "/")
				So(token, ShouldNotContainSubstring, "=")
			})

			Convey("And decoding round-trips deep-equal, unicode included", func() {
				got, err := codec.Decode(token)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, p)
			})
		})

		Convey("When decoding a padded token from an older encoder", func() {
			raw, _ := codec.Encode(p)
			decoded, _ := base64.RawURLEncoding.DecodeString(raw)
			padded := base64.URLEncoding.EncodeToString(decoded)

			got, err := codec.Decode(padded)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, p)
		})
	})
}

func TestDecodeMalformed(t *testing.T) {
	Convey("Given malformed transport tokens", t, func() {
		cases := map[string]string{
			"empty":           "",
			"not base64":      "not a token!!",
			"invalid json":    base64.RawURLEncoding.EncodeToString([]byte("{nope")),
			"json scalar":     base64.RawURLEncoding.EncodeToString([]byte("42")),
			"json array":      base64.RawURLEncoding.EncodeToString([]byte("[1,2]")),
			"json null":       base64.RawURLEncoding.EncodeToString([]byte("null")),
			"json string":     base64.RawURLEncoding.EncodeToString([]byte(`"hi"`)),
			"whitespace only": base64.RawURLEncoding.EncodeToString([]byte("   ")),
		}

		Convey("Then every case degrades to the missing-payload condition", func() {
			for name, token := range cases {
				_, err := codec.Decode(token)
				So(codec.IsMissing(err), ShouldBeTrue)
				_ = name
			}
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a store with a persisted payload", t, func() {
		ctx := context.Background()
		store := storage.NewMemoryStore()
		stored := samplePayload()
		stored.SessionID = "stored-session"
		So(codec.Persist(ctx, store, stored), ShouldBeNil)

		Convey("When a valid token is supplied", func() {
			fresh := samplePayload()
			fresh.SessionID = "token-session"
			token, _ := codec.Encode(fresh)

			Convey("Then the token takes precedence over storage", func() {
				got, err := codec.Resolve(ctx, token, store)
				So(err, ShouldBeNil)
				So(got.SessionID, ShouldEqual, "token-session")
			})
		})

		Convey("When the token is malformed", func() {
			got, err := codec.Resolve(ctx, "!!broken!!", store)

			Convey("Then resolution falls back to the stored payload", func() {
				So(err, ShouldBeNil)
				So(got.SessionID, ShouldEqual, "stored-session")
			})
		})

		Convey("When no token is supplied", func() {
			got, err := codec.Resolve(ctx, "", store)
			So(err, ShouldBeNil)
			So(got.SessionID, ShouldEqual, "stored-session")
		})
	})

	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := storage.NewMemoryStore()

		Convey("When nothing resolves", func() {
			_, err := codec.Resolve(ctx, "", store)

			Convey("Then the terminal missing-payload state is reported", func() {
				So(codec.IsMissing(err), ShouldBeTrue)
			})
		})
	})
}
