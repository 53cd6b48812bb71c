package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetrev/internal/foundation/errors"
)

type runLog struct {
	mu      sync.Mutex
	reasons []string
	notify  chan string
}

func newRunLog() *runLog {
	return &runLog{notify: make(chan string, 64)}
}

func (r *runLog) run(_ context.Context, reason string) error {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
	r.notify <- reason
	return nil
}

func (r *runLog) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q run", want)
	}
}

func startWatcher(t *testing.T, cfg Config) *Watcher {
	t.Helper()
	cfg.Logger = slog.New(slog.DiscardHandler)
	w, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, w.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never became ready")
	}
	return w
}

func TestWatcherBurstCoalesces(t *testing.T) {
	root := t.TempDir()
	runs := newRunLog()
	startWatcher(t, Config{Root: root, Debounce: 50 * time.Millisecond, Run: runs.run})
	waitFor(t, runs.notify, ReasonInitial)

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.css"), []byte{byte(i)}, 0o600))
		time.Sleep(5 * time.Millisecond)
	}
	waitFor(t, runs.notify, ReasonChange)

	select {
	case got := <-runs.notify:
		t.Fatalf("expected a single run for the burst, got extra %q", got)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, 2, runs.count())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	runs := newRunLog()
	startWatcher(t, Config{Root: root, Debounce: 30 * time.Millisecond, Run: runs.run})
	waitFor(t, runs.notify, ReasonInitial)

	sub := filepath.Join(root, "css")
	require.NoError(t, os.Mkdir(sub, 0o750))
	waitFor(t, runs.notify, ReasonChange)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "a.css"), []byte("a"), 0o600))
	waitFor(t, runs.notify, ReasonChange)
}

func TestWatcherIgnoresSkippedAndHidden(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "dist")
	require.NoError(t, os.Mkdir(out, 0o750))

	runs := newRunLog()
	startWatcher(t, Config{Root: root, Skip: []string{out}, Debounce: 30 * time.Millisecond, Run: runs.run})
	waitFor(t, runs.notify, ReasonInitial)

	require.NoError(t, os.WriteFile(filepath.Join(out, "a.css"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".swp"), []byte("a"), 0o600))

	select {
	case got := <-runs.notify:
		t.Fatalf("unexpected %q run", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherPeriodicResync(t *testing.T) {
	runs := newRunLog()
	startWatcher(t, Config{Root: t.TempDir(), Debounce: time.Second, Resync: 50 * time.Millisecond, Run: runs.run})
	waitFor(t, runs.notify, ReasonInitial)
	waitFor(t, runs.notify, ReasonResync)
}

func TestWatcherRequest(t *testing.T) {
	runs := newRunLog()
	w := startWatcher(t, Config{Root: t.TempDir(), Debounce: time.Second, Run: runs.run})
	waitFor(t, runs.notify, ReasonInitial)

	w.Request("manual")
	waitFor(t, runs.notify, "manual")
}

func TestWatcherSurvivesFailedRuns(t *testing.T) {
	root := t.TempDir()
	calls := make(chan string, 8)
	run := func(_ context.Context, reason string) error {
		calls <- reason
		return errors.RevisionError("boom").Build()
	}
	startWatcher(t, Config{Root: root, Debounce: 30 * time.Millisecond, Run: run})
	waitFor(t, calls, ReasonInitial)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.css"), []byte("a"), 0o600))
	waitFor(t, calls, ReasonChange)
}

func TestNewValidation(t *testing.T) {
	noop := func(context.Context, string) error { return nil }
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing run", Config{Root: ".", Debounce: time.Second}},
		{"zero debounce", Config{Root: ".", Run: noop}},
		{"negative resync", Config{Root: ".", Debounce: time.Second, Resync: -time.Second, Run: noop}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}
