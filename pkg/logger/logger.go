package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger = zap.NewNop()

// Init builds the process logger. Safe to call more than once; tests call it
// from their setup path.
func Init() {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	built, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return
	}
	log = built
}

func Sync() {
	_ = log.Sync()
}

func Info(event string, fields map[string]interface{}) {
	log.Info(event, toZapFields(fields)...)
}

func Warn(event string, fields map[string]interface{}) {
	log.Warn(event, toZapFields(fields)...)
}

func Error(event string, err error, fields map[string]interface{}) {
	zf := toZapFields(fields)
	zf = append(zf, zap.Error(err))
	log.Error(event, zf...)
}

func InfoWithUser(userID, event string, fields map[string]interface{}) {
	zf := toZapFields(fields)
	zf = append(zf, zap.String("user_id", userID))
	log.Info(event, zf...)
}

func WarnWithUser(userID, event string, fields map[string]interface{}) {
	zf := toZapFields(fields)
	zf = append(zf, zap.String("user_id", userID))
	log.Warn(event, zf...)
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	zf := make([]zap.Field, 0, len(fields)+1)
	for key, value := range fields {
		zf = append(zf, zap.Any(key, value))
	}
	return zf
}
