package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger = newDefault()

type Fields = logrus.Fields

// Options настройки логгера из конфигурации
type Options struct {
	Level string // debug, info, warn, error
	File  string // пустая строка: только stderr
	Env   string // в окружении test файл не пишется
}

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(textFormatter(false))
	l.SetOutput(os.Stderr)
	return l
}

func textFormatter(callers bool) *formatter.Formatter {
	f := &formatter.Formatter{
		NoColors:        false,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
	}
	if callers {
		f.CustomCallerFormatter = func(fr *runtime.Frame) string {
			s := strings.Split(fr.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(fr.File), fr.Line, funcName)
		}
	}
	return f
}

// Setup перенастраивает общий логгер
func Setup(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	debug := level >= logrus.DebugLevel
	logger.SetLevel(level)
	logger.SetFormatter(textFormatter(debug))
	logger.SetReportCaller(debug)

	writers := []io.Writer{os.Stderr}
	if opts.File != "" && opts.Env != "test" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger, nil
}

func Debug(fields Fields, msg string) {
	logger.WithFields(orEmpty(fields)).Debug(msg)
}

func Info(fields Fields, msg string) {
	logger.WithFields(orEmpty(fields)).Info(msg)
}

func Warn(fields Fields, msg string) {
	logger.WithFields(orEmpty(fields)).Warn(msg)
}

func Error(fields Fields, msg string) {
	logger.WithFields(orEmpty(fields)).Error(msg)
}

func Fatal(fields Fields, msg string) {
	logger.WithFields(orEmpty(fields)).Fatal(msg)
}

// Infof строка без полей, для построчного вывода обучения
func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func orEmpty(fields Fields) Fields {
	if fields == nil {
		return Fields{}
	}
	return fields
}
