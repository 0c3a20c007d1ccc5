package logger

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger интерфейс логирования, реализация на zap
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Sync() error
}

// Field поле лога
type Field struct {
	zap.Field
}

type zapLogger struct {
	z *zap.Logger
}

// New создает логгер. В окружении development пишет в консольном формате,
// в остальных в JSON.
func New(environment, level, serviceName string) (Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	if environment == "development" || environment == "dev" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "time"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeDuration = zapcore.SecondsDurationEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(zapLevel))
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zap.ErrorLevel)).
		With(zap.String("service", serviceName), zap.String("environment", environment))

	return &zapLogger{z: z}, nil
}

// NewFromZap оборачивает готовый zap.Logger (например, zaptest или observer в тестах)
func NewFromZap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

// Nop логгер, который ничего не пишет
func Nop() Logger {
	return &zapLogger{z: zap.NewNop()}
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, unwrap(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, unwrap(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, unwrap(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, unwrap(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(unwrap(fields)...)}
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

func unwrap(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zapFields[i] = f.Field
	}
	return zapFields
}

func String(key, val string) Field {
	return Field{zap.String(key, val)}
}

func Int(key string, val int) Field {
	return Field{zap.Int(key, val)}
}

func Duration(key string, val time.Duration) Field {
	return Field{zap.Duration(key, val)}
}

// Error поле с ошибкой, nil пишется как "nil"
func Error(err error) Field {
	if err == nil {
		return Field{zap.String("error", "nil")}
	}
	return Field{zap.Error(err)}
}

func Any(key string, val interface{}) Field {
	return Field{zap.Any(key, val)}
}
