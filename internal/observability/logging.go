// Package observability constructs the process-wide zap loggers.
//
// Two profiles exist: a structured JSON logger for the long-running server
// and a human-oriented console logger for one-shot CLI commands.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used by the server and poller.
var Logger = zap.NewNop()

// CLILogger is the console logger used by one-shot commands.
var CLILogger = zap.NewNop()

// Init builds both loggers at the given level. profile selects the encoder
// for Logger: "structured" (JSON) or "console".
func Init(level, profile string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if profile == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	structured, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	cliCfg := zap.NewDevelopmentConfig()
	cliCfg.Level = zap.NewAtomicLevelAt(lvl)
	cliCfg.DisableStacktrace = true
	cliCfg.DisableCaller = true
	cliCfg.EncoderConfig.TimeKey = ""
	cli, err := cliCfg.Build()
	if err != nil {
		return fmt.Errorf("build CLI logger: %w", err)
	}

	Logger = structured
	CLILogger = cli
	return nil
}

// Sync flushes buffered log entries. Safe to call at process exit.
func Sync() {
	_ = Logger.Sync()
	_ = CLILogger.Sync()
}
