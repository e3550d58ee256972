package utils

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Log is the shared logger instance. It is safe to use directly;
	// the first access initializes it.
	Log      *LoggerService
	initOnce sync.Once
)

type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	Fatal(msg string, err error)
}

type LoggerService struct {
	log zerolog.Logger
}

func NewLoggerService() *LoggerService {
	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	logger := zerolog.New(output).With().Timestamp().Logger()
	return &LoggerService{
		log: logger,
	}
}

func InitLoggerOnce() {
	initOnce.Do(func() {
		Log = NewLoggerService()
		Log.Info("[LOG]: Logger initialized successfully")
	})
}

func GetLogger() *LoggerService {
	if Log == nil {
		InitLoggerOnce()
	}
	return Log
}

// Event opens a structured log entry at the given level for callers that
// attach their own fields, such as the request logging middleware.
func (l *LoggerService) Event(level zerolog.Level) *zerolog.Event {
	return l.log.WithLevel(level)
}

func (l *LoggerService) Debug(msg string) {
	l.log.WithLevel(zerolog.DebugLevel).Msgf("%s", msg)
}

func (l *LoggerService) Info(msg string) {
	l.log.WithLevel(zerolog.InfoLevel).Msgf("%s", msg)
}

func (l *LoggerService) Warn(msg string) {
	l.log.WithLevel(zerolog.WarnLevel).Msgf("%s", msg)
}

func (l *LoggerService) Error(msg string, err error) {
	l.log.WithLevel(zerolog.ErrorLevel).Err(err).Msgf("%s", msg)
}

// Fatal logs critical errors and exits the application. Use only for
// errors that should stop the process.
func (l *LoggerService) Fatal(msg string, err error) {
	l.log.WithLevel(zerolog.FatalLevel).Err(err).Msgf("%s", msg)
}
