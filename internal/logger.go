// Structured logging, condensed from the teacher's logger.go: a single
// root logrus.Logger wrapped as a CollectableLogger (so tests can capture
// and restore level/output), with per-component sub-loggers obtained via
// NewCompLogger. Caller file:line is reported relative to this module's
// root rather than an absolute path.

package cosched_internal

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LOGGER_CONFIG_USE_JSON_DEFAULT             = false
	LOGGER_CONFIG_LEVEL_DEFAULT                = "info"
	LOGGER_CONFIG_LOG_FILE_DEFAULT             = "" // i.e. stderr
	LOGGER_CONFIG_LOG_FILE_MAX_SIZE_MB_DEFAULT = 10
	LOGGER_CONFIG_LOG_FILE_MAX_BACKUP_DEFAULT  = 1

	LOGGER_DEFAULT_LEVEL        = logrus.InfoLevel
	LOGGER_TIMESTAMP_FORMAT     = time.RFC3339
	LOGGER_COMPONENT_FIELD_NAME = "comp"
)

// CollectableLogger exposes the Get/Set accessors testutils.TestLogCollect
// needs to capture and restore logger state around a test.
type CollectableLogger struct {
	logrus.Logger
}

func (log *CollectableLogger) GetOutput() io.Writer { return log.Out }
func (log *CollectableLogger) GetLevel() any         { return log.Logger.GetLevel() }

func (log *CollectableLogger) SetLevel(level any) {
	if l, ok := level.(logrus.Level); ok {
		log.Logger.SetLevel(l)
	}
}

// LoggerConfig is the YAML-facing logging configuration (A2/A1 overlap,
// nested under Config.LoggerConfig).
type LoggerConfig struct {
	UseJson             bool   `yaml:"use_json"`
	Level               string `yaml:"level"`
	LogFile             string `yaml:"log_file"`
	LogFileMaxSizeMB    int    `yaml:"log_file_max_size_mb"`
	LogFileMaxBackupNum int    `yaml:"log_file_max_backup_num"`
}

func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		UseJson:             LOGGER_CONFIG_USE_JSON_DEFAULT,
		Level:               LOGGER_CONFIG_LEVEL_DEFAULT,
		LogFile:             LOGGER_CONFIG_LOG_FILE_DEFAULT,
		LogFileMaxSizeMB:    LOGGER_CONFIG_LOG_FILE_MAX_SIZE_MB_DEFAULT,
		LogFileMaxBackupNum: LOGGER_CONFIG_LOG_FILE_MAX_BACKUP_DEFAULT,
	}
}

var logCallerPrefix string

func callerPrettyfier(f *runtime.Frame) (string, string) {
	file := f.File
	if logCallerPrefix != "" && len(file) > len(logCallerPrefix) && file[:len(logCallerPrefix)] == logCallerPrefix {
		file = file[len(logCallerPrefix):]
	}
	return "", fmt.Sprintf("%s:%d", file, f.Line)
}

var LogTextFormatter = &logrus.TextFormatter{
	DisableColors:    true,
	FullTimestamp:    true,
	TimestampFormat:  LOGGER_TIMESTAMP_FORMAT,
	CallerPrettyfier: callerPrettyfier,
}

var LogJsonFormatter = &logrus.JSONFormatter{
	TimestampFormat:  LOGGER_TIMESTAMP_FORMAT,
	CallerPrettyfier: callerPrettyfier,
}

// RootLogger is the single logger instance every component logger derives
// from via WithField.
var RootLogger = &CollectableLogger{
	Logger: logrus.Logger{
		Out:          os.Stderr,
		Formatter:    LogTextFormatter,
		Level:        LOGGER_DEFAULT_LEVEL,
		ReportCaller: true,
	},
}

// GetRootLogger exposes RootLogger for testutils.TestLogCollect.
func GetRootLogger() *CollectableLogger { return RootLogger }

func init() {
	if _, file, _, ok := runtime.Caller(0); ok {
		logCallerPrefix = path.Dir(path.Dir(file)) + "/"
	}
}

// SetLogger applies cfg (DefaultLoggerConfig if nil) to RootLogger: level,
// formatter, and output target (stderr/stdout/a rotating file via
// lumberjack).
func SetLogger(cfg *LoggerConfig) error {
	if cfg == nil {
		cfg = DefaultLoggerConfig()
	}

	if cfg.Level != "" {
		level, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		RootLogger.SetLevel(level)
	}

	if cfg.UseJson {
		RootLogger.SetFormatter(LogJsonFormatter)
	} else {
		RootLogger.SetFormatter(LogTextFormatter)
	}

	switch cfg.LogFile {
	case "", "stderr":
		RootLogger.SetOutput(os.Stderr)
	case "stdout":
		RootLogger.SetOutput(os.Stdout)
	default:
		logDir := path.Dir(cfg.LogFile)
		if _, err := os.Stat(logDir); err != nil {
			if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
				return err
			}
		}
		RootLogger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackupNum,
		})
	}

	return nil
}

// NewCompLogger returns a sub-logger tagging every record with the given
// component name, the same pattern every package-level *Log var in this
// module uses (pendingSchedulerLog, gpioLog, etc).
func NewCompLogger(compName string) *logrus.Entry {
	return RootLogger.WithField(LOGGER_COMPONENT_FIELD_NAME, compName)
}
