package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/seccard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"SECCARD_CONFIG",
		"SECCARD_ADDR",
		"SECCARD_LOG_LEVEL",
		"SECCARD_DATA_PATH",
		"SECCARD_DISTANCE_YDS",
		"SECCARD_MOA_PER_CLICK",
		"SECCARD_SESSION_LOG_CAP",
		"SECCARD_DAILY_BUCKET_CAP",
		"SECCARD_RENDER_QUEUE_SIZE",
		"SECCARD_RENDER_WORKER_COUNT",
		"SECCARD_DEDUPE_SIZE",
		"SECCARD_DEFAULT_TARGET_WIDTH",
		"SECCARD_VENDOR_NAME",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DistanceYds, convey.ShouldEqual, 100)
				convey.So(cfg.MOAPerClick, convey.ShouldEqual, 0.25)
				convey.So(cfg.SessionLogCap, convey.ShouldEqual, 5000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SECCARD_ADDR", ":8080")
			_ = os.Setenv("SECCARD_DISTANCE_YDS", "50")
			_ = os.Setenv("SECCARD_MOA_PER_CLICK", "0.5")
			_ = os.Setenv("SECCARD_SESSION_LOG_CAP", "1000")
			_ = os.Setenv("SECCARD_RENDER_WORKER_COUNT", "4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DistanceYds, convey.ShouldEqual, 50)
				convey.So(cfg.MOAPerClick, convey.ShouldEqual, 0.5)
				convey.So(cfg.SessionLogCap, convey.ShouldEqual, 1000)
				convey.So(cfg.RenderWorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			clearConfigEnvVars()

			dir := t.TempDir()
			path := filepath.Join(dir, "seccard.yaml")
			yamlBody := "addr: \":7070\"\nmoa_per_click: 0.125\nvendor_name: \"Precision Prints\"\ntarget_widths:\n  splatter-4: 4\n  steel-18: 18\n"
			convey.So(os.WriteFile(path, []byte(yamlBody), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("SECCARD_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MOAPerClick, convey.ShouldEqual, 0.125)
				convey.So(cfg.VendorName, convey.ShouldEqual, "Precision Prints")
				convey.So(cfg.TargetWidths["steel-18"], convey.ShouldEqual, 18.0)
			})
		})

		convey.Convey("When env overrides the config file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "seccard.yaml")
			convey.So(os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("SECCARD_CONFIG", path)
			_ = os.Setenv("SECCARD_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When a value fails validation", func() {
			clearConfigEnvVars()
			_ = os.Setenv("SECCARD_MOA_PER_CLICK", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is missing", func() {
			clearConfigEnvVars()
			_ = os.Setenv("SECCARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return ErrLoadConfig", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}
