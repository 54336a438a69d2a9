package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
)

// errPartialRead marks a file that looks mid-write: empty, or cut inside a
// UTF-8 sequence
var errPartialRead = errors.New("file appears partially written")

// FileLoader reads book files, retrying while a writer is still busy with them
type FileLoader struct {
	Attempts uint
	Delay    time.Duration
	Logger   *slog.Logger
}

// NewFileLoader creates a loader with sensible retry defaults
func NewFileLoader(logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLoader{Attempts: 5, Delay: 100 * time.Millisecond, Logger: logger}
}

// Load returns the contents of path. A missing file fails immediately; an
// empty or truncated one is retried.
func (l *FileLoader) Load(ctx context.Context, path string) (string, error) {
	var text string
	err := retry.Do(
		func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			if len(data) == 0 || !utf8.Valid(data) {
				return errPartialRead
			}
			text = string(data)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(l.Attempts),
		retry.Delay(l.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.Logger.Debug("retrying book load", "path", path, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	return text, nil
}

// FileWatcher reports changes to a single file. It watches the parent
// directory so editors that replace the file on save are still seen.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// WatchFile calls onChange, on its own goroutine, after path is written,
// created or replaced. Bursts of events within debounce collapse into one call.
func WatchFile(path string, debounce time.Duration, logger *slog.Logger, onChange func()) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	fw := &FileWatcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go fw.run(onChange)
	return fw, nil
}

func (fw *FileWatcher) run(onChange func()) {
	defer close(fw.done)
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != fw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			fw.logger.Debug("book file changed", "path", fw.path, "op", ev.Op.String())
			fw.schedule(onChange)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "path", fw.path, "error", err)
		}
	}
}

func (fw *FileWatcher) schedule(onChange func()) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, onChange)
}

// Close stops watching
func (fw *FileWatcher) Close() error {
	err := fw.watcher.Close()
	<-fw.done
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	return err
}
