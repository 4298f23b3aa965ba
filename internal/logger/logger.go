// Package logger builds the process-wide zap logger: JSON output to a
// size-rotated file under <root>/log, optionally teed to stdout for local
// development. New installs the result as zap's global logger, so the
// rest of the service can just call zap.S()/zap.L() without threading a
// logger handle through every function signature.
package logger

import (
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds and installs the global zap logger, writing to
// rootDir/log/explainer.log with size-based rotation (100 MB per file, 14
// compressed backups, 28-day retention). When tee is true, output also goes to stdout for local
// development. Returns the underlying *zap.Logger so callers that want a
// scoped logger (rather than the package-level zap.S()/zap.L()) can use
// it directly.
func New(rootDir string, tee bool) (*zap.Logger, error) {
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(rootDir, "log", "explainer.log"),
		MaxSize:    100, // megabytes
		MaxBackups: 14,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	writers := []zapcore.WriteSyncer{zapcore.AddSync(rotator)}
	if tee {
		writers = append(writers, zapcore.AddSync(os.Stdout))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), zap.NewAtomicLevelAt(zapcore.DebugLevel))
	l := zap.New(core, zap.AddCaller())

	zap.ReplaceGlobals(l)
	l.Sugar().Infow("logger online", "tee", tee)
	return l, nil
}
