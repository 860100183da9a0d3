package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"
)

// ChangeOp describes what happened to a file under the root.
type ChangeOp int

const (
	Created ChangeOp = iota
	Modified
	Removed
)

func (op ChangeOp) String() string {
	switch op {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Change is one debounced file event. Path is relative to the root, in
// slash form.
type Change struct {
	Path string
	Op   ChangeOp
}

// Watcher reports edits under a directory tree so the developer knows when
// to reload. Hidden files and directories are ignored. A file rewritten
// with identical content is not reported again.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func([]Change)
	logger   *slog.Logger

	fsw *fsnotify.Watcher
	wg  sync.WaitGroup

	mu      sync.Mutex
	pending map[string]fsnotify.Op
	digests map[string][32]byte
	timer   *time.Timer
	closed  bool
}

// NewWatcher creates a watcher for every non-hidden directory under root.
func NewWatcher(root string, debounce time.Duration, logger *slog.Logger, onChange func([]Change)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		fsw:      fsw,
		pending:  make(map[string]fsnotify.Op),
		digests:  make(map[string][32]byte),
	}

	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and all non-hidden directories below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := relativeToRoot(w.root, path); ok && isHidden(rel) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Start processes events until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("Watcher error", "error", err)
			}
		}
	}()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	rel, ok := relativeToRoot(w.root, event.Name)
	if !ok || rel == "." || isHidden(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[event.Name] |= event.Op
	if w.timer != nil {
		w.timer.Reset(w.debounce)
	} else {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	}
}

// flush turns the pending events into changes, dropping rewrites that
// left the content as it was.
func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.timer = nil
	closed := w.closed
	w.mu.Unlock()

	if closed || len(pending) == 0 {
		return
	}

	var changes []Change
	for name, op := range pending {
		rel, _ := relativeToRoot(w.root, name)

		digest, err := hashFile(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.mu.Lock()
				_, known := w.digests[name]
				delete(w.digests, name)
				w.mu.Unlock()
				if known || op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					changes = append(changes, Change{Path: rel, Op: Removed})
				}
				continue
			}
			// Directories and unreadable files: report without a digest.
			changes = append(changes, Change{Path: rel, Op: Modified})
			continue
		}

		w.mu.Lock()
		prev, known := w.digests[name]
		w.digests[name] = digest
		w.mu.Unlock()

		switch {
		case known && prev == digest:
			continue
		case op.Has(fsnotify.Create) && !known:
			changes = append(changes, Change{Path: rel, Op: Created})
		default:
			changes = append(changes, Change{Path: rel, Op: Modified})
		}
	}

	if len(changes) == 0 {
		return
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	// Close may have run while the files were hashed. Registering with wg
	// under mu makes Close wait for a delivery that is already under way.
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer w.wg.Done()

	w.onChange(changes)
}

// Close stops the watcher and waits for its goroutine and any change
// delivery in progress. onChange is never called after Close returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func hashFile(path string) ([32]byte, error) {
	var sum [32]byte

	f, err := os.Open(path)
	if err != nil {
		return sum, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return sum, err
	}
	if info.IsDir() {
		return sum, errors.New("is a directory")
	}

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum, err
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
