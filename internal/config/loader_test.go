package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/movies/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 1234)
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, config.DefaultAllowedOrigins())
			})
		})

		convey.Convey("When PORT is set", func() {
			_ = os.Setenv("PORT", "8081")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it overrides the default port", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 8081)
				convey.So(cfg.Addr(), convey.ShouldEqual, ":8081")
			})
		})

		convey.Convey("When prefixed environment variables are set", func() {
			_ = os.Setenv("MOVIES_HOST", "127.0.0.1")
			_ = os.Setenv("MOVIES_LOG_LEVEL", "debug")
			_ = os.Setenv("MOVIES_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")
			_ = os.Setenv("MOVIES_SEED_FILE", "/tmp/seed.json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Host, convey.ShouldEqual, "127.0.0.1")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
				convey.So(cfg.SeedFile, convey.ShouldEqual, "/tmp/seed.json")
				convey.So(cfg.Addr(), convey.ShouldEqual, "127.0.0.1:1234")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
port: 9090
log_level: warn
allowed_origins:
  - https://movies.com
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MOVIES_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then values come from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 9090)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, []string{"https://movies.com"})
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile(`
port: 9090
log_level: warn
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MOVIES_CONFIG", tmpFile)
			_ = os.Setenv("PORT", "7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 7070)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.AllowedOrigins, convey.ShouldResemble, config.DefaultAllowedOrigins())
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MOVIES_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("MOVIES_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When PORT is not a number", func() {
			_ = os.Setenv("PORT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When PORT is out of range", func() {
			_ = os.Setenv("PORT", "70000")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "port must be between")
			})
		})

		convey.Convey("When the allow-list is configured empty", func() {
			_ = os.Setenv("MOVIES_ALLOWED_ORIGINS", " , ")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an unrelated variable shares the PORT prefix", func() {
			_ = os.Setenv("PORTAL_URL", "http://portal")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it is ignored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, 1234)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"MOVIES_CONFIG",
		"MOVIES_ENV_FILE",
		"MOVIES_HOST",
		"MOVIES_LOG_LEVEL",
		"MOVIES_ALLOWED_ORIGINS",
		"MOVIES_SEED_FILE",
		"PORT",
		"PORTAL_URL",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "movies-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
