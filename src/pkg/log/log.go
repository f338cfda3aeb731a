// Package log provides functionality for logging commands, errors and
// application activity as JSON records.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"powertree/local-app/src/pkg/model"
)

// Fields carries the structured attributes of a log record.
type Fields map[string]interface{}

// LogMessage represents a message to be logged
type LogMessage struct {
	Level   LogLevel
	Content string
	Fields  Fields
	Context context.Context
}

// Logger writes command records, error records and general activity to
// separate JSON log sinks through a single background goroutine.
type Logger struct {
	commandLogger *slog.Logger
	errorLogger   *slog.Logger
	infoLogger    *slog.Logger
	files         []*os.File
	logChan       chan LogMessage
	done          chan struct{}
	wg            sync.WaitGroup
	closeOnce     sync.Once
	level         LogLevel
}

// NewLogger creates a new Logger writing to the log files named in cfg.
// Messages less severe than level are dropped.
func NewLogger(cfg *model.Config, level LogLevel) (*Logger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(cfg.LogFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, name := range []string{cfg.CommandLog, cfg.ErrorLog, cfg.InfoLog} {
		f, err := os.OpenFile(filepath.Join(cfg.LogFolder, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
		}
		files = append(files, f)
	}

	logger := newLogger(files[0], files[1], files[2], level)
	logger.files = files
	return logger, nil
}

// NewWriterLogger creates a Logger that writes every sink to w.
func NewWriterLogger(w io.Writer, level LogLevel) *Logger {
	return newLogger(w, w, w, level)
}

// NewNopLogger creates a Logger that discards everything.
func NewNopLogger() *Logger {
	return NewWriterLogger(io.Discard, LevelError)
}

func newLogger(commandW, errorW, infoW io.Writer, level LogLevel) *Logger {
	logger := &Logger{
		commandLogger: slog.New(slog.NewJSONHandler(commandW, &slog.HandlerOptions{Level: slog.LevelInfo})),
		errorLogger:   slog.New(slog.NewJSONHandler(errorW, &slog.HandlerOptions{Level: slog.LevelError})),
		infoLogger:    slog.New(slog.NewJSONHandler(infoW, &slog.HandlerOptions{Level: slog.LevelDebug})),
		logChan:       make(chan LogMessage, 100),
		done:          make(chan struct{}),
		level:         level,
	}

	logger.wg.Add(1)
	go logger.processLogs()

	return logger
}

// processLogs handles incoming log messages until Close is called,
// then drains whatever is still buffered.
func (l *Logger) processLogs() {
	defer l.wg.Done()
	for {
		select {
		case msg := <-l.logChan:
			l.write(msg)
		case <-l.done:
			for {
				select {
				case msg := <-l.logChan:
					l.write(msg)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(msg LogMessage) {
	attrs := make([]any, 0, len(msg.Fields)*2)
	for k, v := range msg.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		attrs = append(attrs, k, v)
	}

	switch msg.Level {
	case LevelCommand:
		l.commandLogger.Log(msg.Context, slog.LevelInfo, msg.Content, attrs...)
	case LevelError:
		l.errorLogger.Log(msg.Context, slog.LevelError, msg.Content, attrs...)
		l.infoLogger.Log(msg.Context, slog.LevelError, msg.Content, attrs...)
	default:
		l.infoLogger.Log(msg.Context, msg.Level.toSlogLevel(), msg.Content, attrs...)
	}
}

func (l *Logger) log(ctx context.Context, level LogLevel, message string, fields Fields) {
	if level != LevelCommand && level > l.level {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case l.logChan <- LogMessage{Level: level, Content: message, Fields: fields, Context: ctx}:
	case <-l.done:
	}
}

// Command records a user command in the command log.
func (l *Logger) Command(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelCommand, message, fields)
}

func (l *Logger) Error(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelError, message, fields)
}

func (l *Logger) Warn(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelWarn, message, fields)
}

func (l *Logger) Info(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelInfo, message, fields)
}

func (l *Logger) Debug(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelDebug, message, fields)
}

// SetLevel changes the most verbose level that is still written.
// It must not be called concurrently with logging calls.
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// Close stops the logging goroutine and closes all log files
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	l.wg.Wait()

	for _, f := range l.files {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close log file %s: %w", filepath.Base(f.Name()), err)
		}
	}
	l.files = nil
	return nil
}
