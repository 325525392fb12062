package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/wayfinder/internal/compiler"
	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long RouteFile waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// RouteFile loads routes from a YAML or JSON file. It implements
// ports.RouteLoader and ports.Watchable.
type RouteFile struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// RouteFileOption configures a RouteFile.
type RouteFileOption func(*RouteFile)

// WithDebounce sets how long a burst of file events is coalesced.
func WithDebounce(d time.Duration) RouteFileOption {
	return func(f *RouteFile) {
		f.debounce = d
	}
}

// WithLogger configures a logger for the RouteFile.
func WithLogger(logger *slog.Logger) RouteFileOption {
	return func(f *RouteFile) {
		f.logger = logger
	}
}

// NewRouteFile creates a loader for the route file at path. The format
// follows the extension: .json is JSON, anything else YAML.
func NewRouteFile(path string, opts ...RouteFileOption) *RouteFile {
	f := &RouteFile{
		path:     path,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the watched file.
func (f *RouteFile) Path() string {
	return f.path
}

// LoadRoutes reads and parses the file.
func (f *RouteFile) LoadRoutes(ctx context.Context) ([]domain.RouteConfig, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	configs, err := compiler.Parse(data, compiler.FormatFromPath(f.path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return configs, nil
}

// Watch signals after the file was written, created or renamed into place.
// The directory is watched rather than the file so editors that replace
// the file on save keep being followed. The channel closes with ctx.
func (f *RouteFile) Watch(ctx context.Context) (<-chan struct{}, error) {
	absPath, err := filepath.Abs(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve route file path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch route directory: %w", err)
	}

	out := make(chan struct{}, 1)
	go f.watchLoop(ctx, watcher, filepath.Base(absPath), out)
	return out, nil
}

func (f *RouteFile) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, name string, out chan<- struct{}) {
	defer close(out)
	defer watcher.Close()

	// Nil until the first event, so the timer case never fires early.
	var fire <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				if event.Op&fsnotify.Remove != 0 {
					f.logger.Warn("route file removed", "file", event.Name)
				}
				continue
			}
			f.logger.Debug("route file change detected", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(f.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case out <- struct{}{}:
			default:
				// Reload already pending
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error("route watcher error", "err", err)
		}
	}
}
