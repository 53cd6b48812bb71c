// Package watch re-runs revisioning when files below the root change, debouncing bursts of
// filesystem events and optionally forcing a periodic full resync.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
	"git.home.luguber.info/inful/assetrev/internal/logfields"
)

// Trigger reasons passed to RunFunc.
const (
	ReasonInitial = "initial"
	ReasonChange  = "change"
	ReasonResync  = "resync"
)

// RunFunc performs one complete revision run.
type RunFunc func(ctx context.Context, reason string) error

// Config configures a Watcher.
type Config struct {
	Root     string
	Skip     []string      // Directories whose events are ignored, such as the output directory
	Debounce time.Duration // Quiet window after the last event
	MaxDelay time.Duration // Upper bound on postponement during a continuous burst; defaults to 10x Debounce
	Resync   time.Duration // Periodic full run; 0 disables
	Run      RunFunc
	Logger   *slog.Logger
}

// Watcher coalesces filesystem events into serial runs. Runs never overlap: events that
// arrive during a run are picked up afterwards and cause exactly one follow-up.
type Watcher struct {
	cfg      Config
	root     string
	skip     []string
	fsw      *fsnotify.Watcher
	requests chan string
	log      *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// New validates cfg and creates the underlying filesystem watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Run == nil {
		return nil, errors.ValidationError("run function is required").Build()
	}
	if cfg.Debounce <= 0 {
		return nil, errors.ValidationError("debounce must be > 0").Build()
	}
	if cfg.Resync < 0 {
		return nil, errors.ValidationError("resync must not be negative").Build()
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * cfg.Debounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve root directory").
			WithContext("root_dir", cfg.Root).
			Build()
	}
	skip := make([]string, 0, len(cfg.Skip))
	for _, s := range cfg.Skip {
		if abs, err := filepath.Abs(s); err == nil {
			skip = append(skip, abs)
		}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	return &Watcher{
		cfg:      cfg,
		root:     root,
		skip:     skip,
		fsw:      fsw,
		requests: make(chan string, 1),
		log:      cfg.Logger,
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once the initial run has finished and events are being consumed.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Request asks for a full run outside the debounce window. Requests made while one is
// already pending are dropped.
func (w *Watcher) Request(reason string) {
	select {
	case w.requests <- reason:
	default:
	}
}

// Run watches until ctx is canceled. Failed runs are logged and do not stop watching.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	if err := w.addTree(w.root); err != nil {
		return err
	}

	if w.cfg.Resync > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
		}
		if _, err := s.NewJob(
			gocron.DurationJob(w.cfg.Resync),
			gocron.NewTask(w.Request, ReasonResync),
			gocron.WithName("assetrev-resync"),
		); err != nil {
			_ = s.Shutdown()
			return errors.WrapError(err, errors.CategoryConfig, "failed to schedule resync").
				WithContext("interval", w.cfg.Resync.String()).
				Build()
		}
		s.Start()
		defer func() { _ = s.Shutdown() }()
	}

	w.log.Info("Watching for changes",
		logfields.Root(w.root),
		slog.Duration("debounce", w.cfg.Debounce),
		slog.Duration("resync", w.cfg.Resync))
	w.execute(ctx, ReasonInitial, 0)
	w.readyOnce.Do(func() { close(w.ready) })

	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	var quietC, maxC <-chan time.Time
	pending := 0

	flush := func() {
		if pending == 0 {
			return
		}
		count := pending
		pending = 0
		stopTimer(quietTimer)
		stopTimer(maxTimer)
		quietC, maxC = nil, nil
		w.execute(ctx, ReasonChange, count)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				w.watchIfDir(ev.Name)
			}
			w.log.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			pending++
			resetTimer(quietTimer, w.cfg.Debounce)
			quietC = quietTimer.C
			if pending == 1 {
				resetTimer(maxTimer, w.cfg.MaxDelay)
				maxC = maxTimer.C
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File watcher error", logfields.Error(err))

		case reason := <-w.requests:
			// A full run covers any pending changes.
			pending = 0
			stopTimer(quietTimer)
			stopTimer(maxTimer)
			quietC, maxC = nil, nil
			w.execute(ctx, reason, 0)

		case <-quietC:
			flush()

		case <-maxC:
			flush()
		}
	}
}

func (w *Watcher) execute(ctx context.Context, reason string, events int) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := w.cfg.Run(ctx, reason)
	attrs := []any{
		slog.String("reason", reason),
		slog.Int("events", events),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())),
	}
	if err != nil {
		w.log.Error("Revision run failed", append(attrs, logfields.Error(err))...)
		return
	}
	w.log.Info("Revision run complete", attrs...)
}

// relevant drops chmod-only events, hidden files and anything below a skipped directory.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return !w.skipped(ev.Name)
}

func (w *Watcher) skipped(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, s := range w.skip {
		if abs == s || strings.HasPrefix(abs, s+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// addTree registers dir and every non-hidden, non-skipped directory below it; fsnotify
// watches are not recursive.
func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if p != dir && (strings.HasPrefix(entry.Name(), ".") || w.skipped(p)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
			WithContext("path", dir).
			Build()
	}
	return nil
}

func (w *Watcher) watchIfDir(p string) {
	if err := w.addTree(p); err != nil {
		// The path may already be gone again.
		w.log.Debug("Could not watch new path", logfields.Path(p), logfields.Error(err))
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	stopTimer(t)
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, after time.Duration) {
	stopTimer(t)
	t.Reset(after)
}
