// internal/logger/pretty.go
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

// customTimeEncoder formats time in a readable way
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// newPrettyCore пишет в w только человекочитаемые сообщения без полей.
func newPrettyCore(w io.Writer, level zapcore.Level) zapcore.Core {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(prettyEncoderConfig()),
		zapcore.AddSync(zapcore.Lock(zapcore.AddSync(w))),
		level,
	)
	return &FieldFilterCore{core: core}
}

// CreatePrettyLogger creates a logger with user-friendly output
func CreatePrettyLogger(debug bool) (*zap.Logger, error) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	return zap.New(newPrettyCore(os.Stdout, level)), nil
}

// FormatMessage creates user-friendly log messages
func FormatMessage(msg string, fields ...zap.Field) string {
	switch {
	case strings.Contains(msg, "Wallet connected"):
		wallet := extractField(fields, "wallet")
		return fmt.Sprintf("%s🔑 Wallet connected: %s%s", ColorGreen, shortenAddress(wallet), ColorReset)

	case strings.Contains(msg, "RPC node reachable"):
		version := extractField(fields, "version")
		return fmt.Sprintf("%s🌐 RPC node ready (solana-core %s)%s", ColorBlue, version, ColorReset)

	case strings.Contains(msg, "Sending transaction to wallet"):
		mint := extractField(fields, "mint")
		return fmt.Sprintf("%s✍  Waiting for wallet approval%s\n    Mint: %s", ColorCyan, ColorReset, mint)

	case strings.Contains(msg, "Signing rejected"):
		return fmt.Sprintf("%s✗ Signing rejected in wallet%s", ColorYellow, ColorReset)

	case strings.Contains(msg, "Transaction sent"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s📤 Transaction sent: %s%s", ColorYellow, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "Transaction confirmed"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s✅ Transaction confirmed: %s%s", ColorGreen, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "confirmation timed out"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s⌛ Confirmation timed out, check %s later%s", ColorYellow, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "Token launched"):
		mint := extractField(fields, "mint")
		return fmt.Sprintf("%s🎉 Token launched! Mint: %s%s", ColorGreen+ColorBold, mint, ColorReset)

	case strings.Contains(msg, "Duplicate launch request"):
		return fmt.Sprintf("%s⚠ Duplicate request joined the launch already in flight%s", ColorPurple, ColorReset)

	default:
		return msg
	}
}

// Helper functions
func extractField(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		enc := zapcore.NewMapObjectEncoder()
		field.AddTo(enc)
		return fmt.Sprintf("%v", enc.Fields[key])
	}
	return ""
}

func shortenAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}

func shortenSignature(sig string) string {
	if len(sig) > 16 {
		return sig[:8] + "..." + sig[len(sig)-8:]
	}
	return sig
}

// FieldFilterCore wraps a zapcore.Core: fields are used only to build a friendly
// message and are not printed.
type FieldFilterCore struct {
	core    zapcore.Core
	context []zapcore.Field
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	ctx := make([]zapcore.Field, 0, len(c.context)+len(fields))
	ctx = append(ctx, c.context...)
	ctx = append(ctx, fields...)
	return &FieldFilterCore{core: c.core, context: ctx}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := make([]zapcore.Field, 0, len(c.context)+len(fields))
	all = append(all, c.context...)
	all = append(all, fields...)

	cleanEntry := entry
	cleanEntry.Message = FormatMessage(entry.Message, all...)
	if entry.Level >= zapcore.ErrorLevel {
		if errText := extractField(all, "error"); errText != "" {
			cleanEntry.Message += ": " + errText
		}
	}
	return c.core.Write(cleanEntry, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}
