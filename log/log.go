package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the logger for normal use
	Log = zap.NewNop().Sugar()
	// Error is the Logger for errors
	Error = zap.NewNop().Sugar()

	mu         sync.Mutex
	baseLog    *zap.Logger
	baseErrLog *zap.Logger
)

const errLogName = "error.log"

// Config holds logger settings.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// ErrorFile receives a copy of every error line. Defaults to error.log.
	ErrorFile string `mapstructure:"error_file"`
	// Rotation of ErrorFile, megabytes/files/days.
	MaxSize    int `mapstructure:"max_size"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAge     int `mapstructure:"max_age"`
}

// Init creates logger instance to loggers
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}

	baseLog = initLogger(level)
	baseErrLog = initErrorLogger(cfg)

	Log = baseLog.Sugar()
	Error = baseErrLog.Sugar()
}

func encoderConfig() zapcore.EncoderConfig {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return encCfg
}

func initLogger(level zap.AtomicLevel) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(os.Stdout),
		level,
	)
	return zap.New(core)
}

func initErrorLogger(cfg Config) *zap.Logger {
	filename := cfg.ErrorFile
	if filename == "" {
		filename = errLogName
	}

	file := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	})

	errHandler := zapcore.NewMultiWriteSyncer(zapcore.Lock(os.Stderr), file)
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		errHandler,
		zapcore.ErrorLevel,
	)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

// UpdatePrefix Sets new prefix
func UpdatePrefix(prefix string) {
	mu.Lock()
	defer mu.Unlock()

	if baseLog == nil {
		return
	}

	Log = baseLog.Named(prefix).Sugar()
	Error = baseErrLog.Named(prefix).Sugar()
}

// Printf is the alias for Log.Infof
func Printf(format string, v ...interface{}) {
	Log.Infof(format, v...)
}

// Println is the alias for Log.Infoln
func Println(v ...interface{}) {
	Log.Infoln(v...)
}

// Errorf writes formatted error to stderr and the error file.
func Errorf(format string, v ...interface{}) {
	Error.Errorf(format, v...)
}

// Errorln writes error to stderr and the error file.
func Errorln(v ...interface{}) {
	Error.Errorln(v...)
}

// Sync flushes buffered log entries.
func Sync() {
	Log.Sync()
	Error.Sync()
}
