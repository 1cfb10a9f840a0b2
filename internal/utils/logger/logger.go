// Package logger provides a global logger for the application
package logger

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}
}

// EnvironmentLevel maps the ENVIRONMENT value to its default log level.
func EnvironmentLevel(environment string) zerolog.Level {
	switch strings.ToLower(environment) {
	case "dev", "test":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func environment() string {
	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "prod"
	}
	return environment
}

func initLogger() {
	loadDotEnv()

	debug := flag.Bool("debug", false, "sets log level to debug")
	trace := flag.Bool("trace", false, "sets log level to trace")
	info := flag.Bool("info", false, "sets log level to info (default)")
	flag.Parse()

	env := environment()
	logLevel := EnvironmentLevel(env)

	if *debug {
		logLevel = zerolog.DebugLevel
	} else if *trace {
		logLevel = zerolog.TraceLevel
	} else if *info {
		logLevel = zerolog.InfoLevel
	}

	configure(logLevel)

	switch logLevel {
	case zerolog.DebugLevel:
		log.Debug().Str("environment", env).Msg("Debug logging enabled")
	case zerolog.TraceLevel:
		log.Trace().Str("environment", env).Msg("Trace logging enabled")
	case zerolog.InfoLevel:
		log.Info().Str("environment", env).Msg("Info logging enabled")
	}
}

func configure(logLevel zerolog.Level) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	zerolog.SetGlobalLevel(logLevel)

	zapLogger, err := newZapLogger(logLevel)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build zap logger, falling back to no-op")
		zapLogger = zap.NewNop()
	}
	Logger = zapLogger
}

func newZapLogger(logLevel zerolog.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(logLevel))
	return cfg.Build()
}

func zapLevel(logLevel zerolog.Level) zapcore.Level {
	switch logLevel {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return zapcore.DebugLevel
	case zerolog.WarnLevel:
		return zapcore.WarnLevel
	case zerolog.ErrorLevel:
		return zapcore.ErrorLevel
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the logger with the configuration from the environment
// and command line flags.
// It sets up the global logger to use zerolog with console output.
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Then, `go run cmd/server/main.go --debug`
func Init() {
	initLogger()
}

// InitWithLevel is Init for entrypoints that parse their own flags. An empty
// level falls back to the ENVIRONMENT default.
func InitWithLevel(level string) error {
	loadDotEnv()

	logLevel := EnvironmentLevel(environment())
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", level, err)
		}
		logLevel = parsed
	}

	configure(logLevel)
	return nil
}

// Sugar returns a sugared logger for easier use
func Sugar() *zap.SugaredLogger {
	if Logger == nil {
		return zap.NewNop().Sugar()
	}
	return Logger.Sugar()
}
