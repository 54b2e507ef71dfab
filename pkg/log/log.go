package log

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const contextKey = "fde-logger"

// Logger wraps a *zap.Logger and accumulates per-request fields on the
// *gin.Context itself, so WithValue/WithContext calls scattered across a
// single request see the same growing field set.
type Logger struct {
	*zap.Logger
}

func NewLog(conf *viper.Viper) *Logger {
	level := levelFromString(conf.GetString("log.level"))

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.GetString("log.file_name"),
			MaxSize:    conf.GetInt("log.max_size"),
			MaxBackups: conf.GetInt("log.max_backups"),
			MaxAge:     conf.GetInt("log.max_age"),
			Compress:   conf.GetBool("log.compress"),
		}),
		level,
	)

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(os.Stdout),
		level,
	)

	core := zapcore.NewTee(fileCore, consoleCore)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{logger}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func levelFromString(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// WithValue appends fields to the logger accumulated on ctx, storing the
// result back onto the request so later WithContext calls in the same
// handler chain see it.
func (l *Logger) WithValue(ctx context.Context, fields ...zap.Field) {
	gc, ok := ctx.(*gin.Context)
	if !ok {
		return
	}
	gc.Set(contextKey, l.WithContext(ctx).With(fields...))
}

// WithContext returns the logger accumulated on ctx via WithValue, or the
// base logger if none was attached yet.
func (l *Logger) WithContext(ctx context.Context) *zap.Logger {
	gc, ok := ctx.(*gin.Context)
	if !ok {
		return l.Logger
	}
	if v, ok := gc.Get(contextKey); ok {
		if logger, ok := v.(*zap.Logger); ok {
			return logger
		}
	}
	return l.Logger
}
