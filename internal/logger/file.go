// internal/logger/file.go
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	LogFile    string
	MaxSize    int  // мегабайты
	MaxAge     int  // дни
	MaxBackups int  // количество файлов
	Compress   bool // сжимать ротированные файлы
	Debug      bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		LogFile:    "logs/launchpad.log",
		MaxSize:    20,
		MaxAge:     14,
		MaxBackups: 3,
		Compress:   true,
	}
}

func (c Config) level() zapcore.Level {
	if c.Debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// newFileCore пишет JSON в файл с ротацией. Пустой LogFile - файл не ведётся.
func newFileCore(cfg Config) zapcore.Core {
	if cfg.LogFile == "" {
		return zapcore.NewNopCore()
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), cfg.level())
}

// NewConsoleLogger - для headless-режима: понятные сообщения в stdout и JSON в файл.
func NewConsoleLogger(cfg Config) *zap.Logger {
	core := zapcore.NewTee(
		newPrettyCore(os.Stdout, cfg.level()),
		newFileCore(cfg),
	)
	return zap.New(core)
}

// NewTUILogger никогда не пишет в терминал: только файл и буфер для панели логов.
func NewTUILogger(cfg Config, buffer *LogBuffer) *zap.Logger {
	cores := []zapcore.Core{newFileCore(cfg)}
	if buffer != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(bufferEncoderConfig()),
			buffer,
			cfg.level(),
		))
	}
	return zap.New(zapcore.NewTee(cores...))
}
