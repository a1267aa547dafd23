package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers start as no-ops so packages can log before (or without) Init.
var (
	AppLogger   = zap.NewNop() // application events (server/db start/stop)
	ErrorLogger = zap.NewNop() // API errors
	QueryLogger = zap.NewNop() // SQL queries
)

func getEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.LevelKey = "level"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = customTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.CallerKey = ""
	encoderConfig.NameKey = ""
	encoderConfig.StacktraceKey = ""

	return zapcore.NewConsoleEncoder(encoderConfig)
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

// Init builds the three loggers. With an empty logDir everything goes to
// stdout/stderr; otherwise each logger appends to its own daily file.
func Init(level, logDir string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	appOut, err := openSink(logDir, "app", os.Stdout)
	if err != nil {
		return err
	}
	errorOut, err := openSink(logDir, "error", os.Stderr)
	if err != nil {
		return err
	}
	queryOut, err := openSink(logDir, "query", os.Stdout)
	if err != nil {
		return err
	}

	AppLogger = zap.New(zapcore.NewCore(getEncoder(), appOut, lvl))
	ErrorLogger = zap.New(zapcore.NewCore(getEncoder(), errorOut, zap.ErrorLevel))
	QueryLogger = zap.New(zapcore.NewCore(getEncoder(), queryOut, lvl))
	return nil
}

func openSink(logDir, name string, fallback *os.File) (zapcore.WriteSyncer, error) {
	if logDir == "" {
		return zapcore.Lock(fallback), nil
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	currentDate := time.Now().Format("2006-01-02")
	f, err := os.OpenFile(
		filepath.Join(logDir, fmt.Sprintf("%s_%s.log", name, currentDate)),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(f), nil
}

// Sync flushes all loggers; errors from syncing stdout are ignored.
func Sync() {
	_ = AppLogger.Sync()
	_ = ErrorLogger.Sync()
	_ = QueryLogger.Sync()
}
