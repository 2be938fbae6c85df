package logger_test

import (
	"bytes"
	"errors"
	"inncore/config"
	"inncore/shared/constant"
	"inncore/shared/logger"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitLogger(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	logger.InitLogger()

	if zerolog.TimeFieldFormat != zerolog.TimeFormatUnix {
		t.Errorf("expected TimeFieldFormat to be %s, got %s", zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
	}

	if zerolog.GlobalLevel() != zerolog.TraceLevel {
		t.Errorf("expected global level to be %s, got %s", zerolog.TraceLevel, zerolog.GlobalLevel())
	}
}

func TestErrorWithStack(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	var buf bytes.Buffer
	log.Logger = log.Output(&buf)

	logger.ErrorWithStack(errors.New("exclusion violation"))

	if !bytes.Contains(buf.Bytes(), []byte("exclusion violation")) {
		t.Error("expected log output to contain 'exclusion violation'")
	}
}

func TestUseJSONOutput(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer

	cfg := &config.Config{}
	cfg.App.Name = "inncore"
	cfg.Server.Env = constant.ServerEnvDevelopment

	logger.UseJSONOutput(cfg, &buf)
	log.Info().Msg("development")

	if buf.Len() != 0 {
		t.Error("expected development env to keep the existing logger")
	}

	cfg.Server.Env = constant.ServerEnvProduction

	logger.UseJSONOutput(cfg, &buf)
	log.Info().Msg("production")

	if !bytes.Contains(buf.Bytes(), []byte(`"app":"inncore"`)) {
		t.Errorf("expected JSON output with app field, got %s", buf.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		expectedLevel zerolog.Level
	}{
		{name: "debug level", logLevel: "debug", expectedLevel: zerolog.DebugLevel},
		{name: "info level", logLevel: "info", expectedLevel: zerolog.InfoLevel},
		{name: "error level", logLevel: "error", expectedLevel: zerolog.ErrorLevel},
		{name: "invalid level defaults to trace", logLevel: "verbose", expectedLevel: zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.logLevel

			logger.SetLogLevel(cfg)

			if zerolog.GlobalLevel() != tt.expectedLevel {
				t.Errorf("expected global level to be %s, got %s", tt.expectedLevel, zerolog.GlobalLevel())
			}
		})
	}
}
