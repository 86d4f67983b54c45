// Package watcher feeds files dropped into a folder to the capture pipeline.
//
// New audio files and images are handed to a handler one at a time, after a
// short settle delay so the writer can finish. Other files are ignored.
//
// Import rules:
//   - CAN import: internal/constants, internal/ctxutil, internal/errors, std lib
//   - MUST NOT import: internal/capture, internal/cli
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/ctxutil"
)

// queueDepth is how many detected files may wait for the handler.
const queueDepth = 64

//nolint:gochecknoglobals // Read-only extension lookup tables
var (
	audioExtensions = []string{".m4a", ".mp3", ".wav", ".flac", ".aac", ".ogg"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".heic"}
)

// Event is a detected input file.
type Event struct {
	Path string
	Kind constants.ArtifactKind
}

// Handler processes one detected file. Errors are logged; the watcher keeps going.
type Handler func(ctx context.Context, event Event) error

// Classify returns the artifact kind for path based on its extension.
// Hidden files are never classified.
func Classify(path string) (constants.ArtifactKind, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	ext := strings.ToLower(filepath.Ext(base))
	switch {
	case slices.Contains(audioExtensions, ext):
		return constants.ArtifactAudio, true
	case slices.Contains(imageExtensions, ext):
		return constants.ArtifactImages, true
	default:
		return "", false
	}
}

// Watcher watches one directory.
type Watcher struct {
	dir         string
	handler     Handler
	settleDelay time.Duration
	watcher     *fsnotify.Watcher
	queue       chan Event
	wg          sync.WaitGroup
}

// New creates a Watcher for dir, creating the directory if needed.
func New(dir string, handler Handler, settleDelay time.Duration) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create watch directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:         dir,
		handler:     handler,
		settleDelay: settleDelay,
		watcher:     fw,
		queue:       make(chan Event, queueDepth),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run dispatches detected files until ctx is done, then waits for the file
// in progress and returns ctx.Err().
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("component", "watcher").Str("dir", w.dir).Logger()
	logger.Info().Msg("watching for new recordings and images")

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.work(workerCtx)
	}()

	for {
		select {
		case <-ctx.Done():
			stopWorker()
			w.wg.Wait()
			logger.Info().Msg("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				stopWorker()
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			kind, ok := Classify(event.Name)
			if !ok {
				logger.Debug().Str("path", event.Name).Msg("ignoring file")
				continue
			}

			logger.Info().Str("path", event.Name).Str("kind", kind.String()).Msg("new file detected")
			select {
			case w.queue <- Event{Path: event.Name, Kind: kind}:
			default:
				logger.Warn().Str("path", event.Name).Msg("queue full, file skipped")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				stopWorker()
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error().Err(err).Msg("watcher error")
		}
	}
}

// work handles queued files strictly one after another.
func (w *Watcher) work(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("component", "watcher").Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-w.queue:
			// Small delay so the file is fully written.
			if err := ctxutil.Sleep(ctx, w.settleDelay); err != nil {
				return
			}
			if err := w.handler(ctx, event); err != nil {
				logger.Error().Err(err).Str("path", event.Path).Msg("failed to process file")
			}
		}
	}
}

// Stop closes the file watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
