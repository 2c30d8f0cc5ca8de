// Package ui provides the terminal user interface for treetable.
// This file implements the BackgroundWorker that reloads sources off the UI thread.
package ui

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/goccy/go-json"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/treetable/pkg/loader"
	"github.com/vanderheijden86/treetable/pkg/watcher"
)

// WorkerState represents the current state of the background worker.
type WorkerState int

const (
	// WorkerIdle means the worker is waiting for file changes.
	WorkerIdle WorkerState = iota
	// WorkerProcessing means the worker is loading sources.
	WorkerProcessing
	// WorkerStopped means the worker has been stopped.
	WorkerStopped
)

// WorkerError wraps errors with phase and retry context.
type WorkerError struct {
	Phase   string    // "load"
	Cause   error     // The underlying error
	Time    time.Time // When the error occurred
	Retries int       // Consecutive failures so far
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("%s failed: %v (retries: %d)", e.Phase, e.Cause, e.Retries)
}

func (e WorkerError) Unwrap() error {
	return e.Cause
}

// DataSnapshot is one successful load of every source.
type DataSnapshot struct {
	Result   *loader.Result
	DataHash string
	LoadedAt time.Time
}

// LoadFunc reads every source.
type LoadFunc func(ctx context.Context, paths []string) (*loader.Result, error)

// BackgroundWorker watches the sources and reloads them when they change.
// Reloads that arrive while one is running are coalesced into a single rerun.
type BackgroundWorker struct {
	// Configuration
	sources       []string
	debounceDelay time.Duration
	load          LoadFunc
	send          func(tea.Msg)

	// State
	mu       sync.RWMutex
	state    WorkerState
	dirty    bool // True if a change came in while processing
	snapshot *DataSnapshot
	started  bool
	lastHash string // Content hash of last snapshot (for dedup)

	// Error tracking
	lastError  *WorkerError
	errorCount int

	// Components
	watcher *watcher.Watcher

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup
}

// WorkerConfig configures the BackgroundWorker.
type WorkerConfig struct {
	Sources       []string
	DebounceDelay time.Duration
	// Watch starts a file watcher on Sources
	Watch bool
	// Load defaults to loader.LoadAll
	Load LoadFunc
	// Send delivers messages to the UI, usually (*tea.Program).Send
	Send func(tea.Msg)
}

// NewBackgroundWorker creates a new background worker.
func NewBackgroundWorker(cfg WorkerConfig) (*BackgroundWorker, error) {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = watcher.DefaultDebounce
	}
	if cfg.Load == nil {
		cfg.Load = loader.LoadAll
	}

	w := &BackgroundWorker{
		sources:       cfg.Sources,
		debounceDelay: cfg.DebounceDelay,
		load:          cfg.Load,
		send:          cfg.Send,
		state:         WorkerIdle,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
	}

	if cfg.Watch && len(cfg.Sources) > 0 {
		fw, err := watcher.NewWatcher(cfg.Sources,
			watcher.WithDebounceDuration(cfg.DebounceDelay),
		)
		if err != nil {
			cancel()
			return nil, err
		}
		w.watcher = fw
	}

	return w, nil
}

// Start begins watching for file changes.
// Start is idempotent - calling it multiple times has no effect.
func (w *BackgroundWorker) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if w.watcher != nil {
		if err := w.watcher.Start(); err != nil {
			close(w.done)
			return err
		}
		go w.processLoop()
	} else {
		// No watcher - close done channel immediately so Stop() doesn't block
		close(w.done)
	}

	return nil
}

// Stop halts the background worker and cleans up resources.
// Stop is idempotent - calling it multiple times has no effect.
func (w *BackgroundWorker) Stop() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.state = WorkerStopped
	wasStarted := w.started
	w.mu.Unlock()

	w.cancel()

	if w.watcher != nil {
		w.watcher.Stop()
	}

	if wasStarted {
		select {
		case <-w.done:
		case <-time.After(2 * time.Second):
			// Timeout waiting for graceful shutdown
		}
	}
	w.wg.Wait()
}

// TriggerRefresh reloads the sources now.
// Has no effect if the worker is stopped; coalesces if already processing.
func (w *BackgroundWorker) TriggerRefresh() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	if w.state == WorkerProcessing {
		w.dirty = true
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		w.process()
	}()
}

// GetSnapshot returns the current snapshot (may be nil).
func (w *BackgroundWorker) GetSnapshot() *DataSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.snapshot
}

// State returns the current worker state.
func (w *BackgroundWorker) State() WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// processLoop reloads on every settled change.
func (w *BackgroundWorker) processLoop() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-w.watcher.Changed():
			w.process()
		}
	}
}

// process loads the sources, rerunning while changes keep arriving.
func (w *BackgroundWorker) process() {
	for {
		w.mu.Lock()
		if w.state != WorkerIdle {
			if w.state == WorkerProcessing {
				w.dirty = true
			}
			w.mu.Unlock()
			return
		}
		w.state = WorkerProcessing
		w.dirty = false
		w.mu.Unlock()

		// nil means unchanged or failed
		snapshot := w.buildSnapshot()

		w.mu.Lock()
		if w.state == WorkerStopped {
			w.mu.Unlock()
			return
		}
		if snapshot != nil {
			w.snapshot = snapshot
		}
		wasDirty := w.dirty
		w.state = WorkerIdle
		w.mu.Unlock()

		if w.send != nil && snapshot != nil {
			w.send(SnapshotReadyMsg{Snapshot: snapshot})
		}
		if !wasDirty {
			return
		}
	}
}

// safeCompute executes fn and recovers from any panics.
func (w *BackgroundWorker) safeCompute(phase string, fn func() error) *WorkerError {
	var result *WorkerError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &WorkerError{
					Phase: phase,
					Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:  time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &WorkerError{
				Phase: phase,
				Cause: err,
				Time:  time.Now(),
			}
		}
	}()
	return result
}

// recordError tracks an error and updates error state.
func (w *BackgroundWorker) recordError(err *WorkerError) {
	w.mu.Lock()
	w.lastError = err
	if err != nil {
		w.errorCount++
		err.Retries = w.errorCount
	} else {
		w.errorCount = 0
	}
	w.mu.Unlock()
}

// LastError returns the most recent error (nil if last operation succeeded).
func (w *BackgroundWorker) LastError() *WorkerError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

// buildSnapshot loads every source. Called from the worker goroutine, never
// the UI thread. Returns nil when loading fails or content is unchanged.
func (w *BackgroundWorker) buildSnapshot() *DataSnapshot {
	if len(w.sources) == 0 {
		return nil
	}

	start := time.Now()

	var res *loader.Result
	loadErr := w.safeCompute("load", func() error {
		var err error
		res, err = w.load(w.ctx, w.sources)
		return err
	})
	if loadErr != nil {
		log.Printf("buildSnapshot: error loading sources: %v", loadErr)
		w.recordError(loadErr)
		if w.send != nil {
			w.send(SnapshotErrorMsg{
				Err:         loadErr,
				Recoverable: true, // Usually fixed by the next save
			})
		}
		return nil
	}

	hash, err := ComputeDataHash(res)
	if err != nil {
		log.Printf("warning: hashing sources: %v", err)
	}

	w.mu.RLock()
	lastHash := w.lastHash
	w.mu.RUnlock()

	if hash != "" && hash == lastHash {
		log.Printf("buildSnapshot: content unchanged (hash=%s), skipping reload", hashPrefix(hash))
		w.recordError(nil)
		return nil
	}

	w.recordError(nil)
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()

	log.Printf("buildSnapshot: loaded %d records, %d units (skipped=%d, took=%v, hash=%s)",
		len(res.Records), len(res.Units), res.Skipped, time.Since(start), hashPrefix(hash))

	return &DataSnapshot{
		Result:   res,
		DataHash: hash,
		LoadedAt: time.Now(),
	}
}

// ComputeDataHash returns a content hash of a load result.
func ComputeDataHash(res *loader.Result) (string, error) {
	if res == nil {
		return "", nil
	}
	data, err := json.Marshal(struct {
		Records any `json:"records"`
		Units   any `json:"units"`
	}{res.Records, res.Units})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SnapshotReadyMsg is sent to the UI when a reload produced new content.
type SnapshotReadyMsg struct {
	Snapshot *DataSnapshot
}

// SnapshotErrorMsg is sent to the UI when a reload fails.
type SnapshotErrorMsg struct {
	Err         error
	Recoverable bool // True if we expect to recover on next file change
}

// LastHash returns the content hash from the last successful load.
func (w *BackgroundWorker) LastHash() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastHash
}

// SetInitialHash records the hash of a load done before the worker started,
// so an unchanged first reload is skipped.
func (w *BackgroundWorker) SetInitialHash(hash string) {
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()
}

// hashPrefix returns up to 16 characters of hash for logging.
func hashPrefix(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
