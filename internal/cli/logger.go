package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/minutes/internal/config"
	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/logging"
)

// fileSink owns the rotating log file shared by every logger the CLI builds.
//
//nolint:gochecknoglobals // one log file per process
var fileSink struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// InitLogger builds the CLI logger and installs it as the zerolog global.
//
// verbose selects debug, quiet selects warn, otherwise info. Console output
// is human-readable on a color terminal and JSON elsewhere. Every record is
// also appended to ~/.minutes/logs/minutes.log with secrets filtered; when
// the file cannot be opened the console is used alone.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	var w io.Writer = consoleWriter()
	if file, err := openLogFile(); err == nil {
		w = zerolog.MultiLevelWriter(w, file)
	}
	return installLogger(w, levelFor(verbose, quiet))
}

// InitLoggerWithWriter builds a logger writing only to w. Used by tests.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	return installLogger(w, levelFor(verbose, quiet))
}

func installLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	logger := zerolog.New(w).
		Level(level).
		Hook(logging.NewSensitiveDataHook()).
		With().Timestamp().Logger()

	fileSink.mu.Lock()
	log.Logger = logger
	fileSink.mu.Unlock()
	return logger
}

// CloseLogFile flushes and closes the log file, if one is open.
func CloseLogFile() {
	fileSink.mu.Lock()
	defer fileSink.mu.Unlock()
	if fileSink.w != nil {
		_ = fileSink.w.Close()
		fileSink.w = nil
	}
}

func levelFor(verbose, quiet bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	if quiet {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

func consoleWriter() io.Writer {
	_, noColor := os.LookupEnv("NO_COLOR")
	if noColor || !term.IsTerminal(int(os.Stderr.Fd())) { //nolint:gosec // G115: fd fits in int
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
}

// redactingFile filters secrets before they reach the rotating file.
type redactingFile struct {
	*logging.FilteringWriter
	file *lumberjack.Logger
}

func (r redactingFile) Close() error {
	return r.file.Close()
}

// openLogFile opens the rotating log file once per process and returns it.
func openLogFile() (io.Writer, error) {
	fileSink.mu.Lock()
	defer fileSink.mu.Unlock()
	if fileSink.w != nil {
		return fileSink.w, nil
	}

	path, err := LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}
	fileSink.w = redactingFile{FilteringWriter: logging.NewFilteringWriter(file), file: file}
	return fileSink.w, nil
}

// LogFilePath returns the path to the CLI log file.
func LogFilePath() (string, error) {
	home, err := config.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir, constants.CLILogFileName), nil
}
