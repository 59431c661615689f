package logger

import (
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/huynhanx03/go-ringqueue/pkg/settings"
)

const (
	defaultMaxSize    = 100 // megabytes
	defaultMaxBackups = 3
	defaultMaxAge     = 28 // days
)

// New builds a JSON zap logger from cfg.
// Output goes to a rotating file when FileLogName is set, stdout otherwise.
func New(cfg *settings.Logger) (*zap.Logger, error) {
	if cfg == nil {
		return Nop(), nil
	}

	level, err := zapcore.ParseLevel(levelOrDefault(cfg.LogLevel))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}

	core := zapcore.NewCore(newEncoder(), writerFor(cfg), level)
	return zap.New(core, zap.AddCaller()), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func newEncoder() zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(encCfg)
}

// writerFor returns the sink for cfg, applying rotation defaults where unset.
func writerFor(cfg *settings.Logger) zapcore.WriteSyncer {
	if cfg.FileLogName == "" {
		return zapcore.Lock(os.Stdout)
	}

	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FileLogName,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAge,
		Compress:   cfg.Compress,
	})
}
