package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// ErrRegistryStarted is returned when Start is called twice.
var ErrRegistryStarted = errors.New("file registry already started")

// FileRegistry treats the files under a set of directories as documents.
// A file appearing is an open, a file disappearing is a close and a write is
// a change.
type FileRegistry struct {
	roots    []string
	patterns []string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	docs    map[string]*fileDocument
	done    chan struct{}

	lifecycle handlerSet[interfaces.LifecycleHandler]
}

// NewFileRegistry creates a registry over roots. Only files whose base name
// matches one of patterns are documents; no patterns means every file.
func NewFileRegistry(roots, patterns []string) *FileRegistry {
	return &FileRegistry{
		roots:    roots,
		patterns: patterns,
		docs:     make(map[string]*fileDocument),
	}
}

// Start scans the roots and watches them until ctx is cancelled or Close is
// called. Files found by the scan are open documents but produce no
// lifecycle events.
func (r *FileRegistry) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.watcher != nil {
		r.mu.Unlock()
		return ErrRegistryStarted
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	r.watcher = watcher
	r.done = make(chan struct{})
	r.mu.Unlock()

	for _, root := range r.roots {
		if err := r.scan(root, false); err != nil {
			r.mu.Lock()
			r.watcher = nil
			r.docs = make(map[string]*fileDocument)
			r.mu.Unlock()
			_ = watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	go r.run(ctx, watcher)
	return nil
}

// Close stops watching. Documents stay listed but stop changing.
func (r *FileRegistry) Close() error {
	r.mu.Lock()
	watcher := r.watcher
	done := r.done
	r.watcher = nil
	r.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

// Documents returns the open documents sorted by path.
func (r *FileRegistry) Documents() []interfaces.Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, 0, len(r.docs))
	for p := range r.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	result := make([]interfaces.Document, len(paths))
	for i, p := range paths {
		result[i] = r.docs[p]
	}
	return result
}

// OnLifecycle subscribes to future open and close events.
func (r *FileRegistry) OnLifecycle(handler interfaces.LifecycleHandler) interfaces.Subscription {
	return r.lifecycle.add(handler)
}

// scan adds a watch on every directory under root and opens the matching
// files in it.
func (r *FileRegistry) scan(root string, announce bool) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			r.mu.Lock()
			watcher := r.watcher
			r.mu.Unlock()
			if watcher == nil {
				return filepath.SkipAll
			}
			return watcher.Add(path)
		}
		if r.matches(path) {
			r.open(path, announce)
		}
		return nil
	})
}

func (r *FileRegistry) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			if r.watcher == watcher {
				r.watcher = nil
			}
			r.mu.Unlock()
			_ = watcher.Close()
			// Drain so Close does not block on an unread channel.
			for range watcher.Events {
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			r.handle(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are non-fatal; continue watching.
			log.Warningf("document watcher error: %v", err)
		}
	}
}

// handle applies one filesystem event to the document set.
func (r *FileRegistry) handle(event fsnotify.Event) {
	path := event.Name

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		r.close(path)

	case event.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := r.scan(path, true); err != nil {
				log.Warningf("failed to watch new directory %s: %v", path, err)
			}
			return
		}
		// Saving by renaming a temp file over a document shows up as a
		// Create on a path that is already tracked.
		if doc := r.lookup(path); doc != nil {
			doc.notify(event.Op.String())
			return
		}
		if r.matches(path) {
			r.open(path, true)
		}

	case event.Has(fsnotify.Write):
		doc := r.lookup(path)
		if doc == nil {
			if !r.matches(path) {
				return
			}
			doc = r.open(path, true)
		}
		doc.notify(event.Op.String())
	}
}

// open registers path as a document, announcing it when requested. Opening
// a known path returns the existing document.
func (r *FileRegistry) open(path string, announce bool) *fileDocument {
	r.mu.Lock()
	if doc, ok := r.docs[path]; ok {
		r.mu.Unlock()
		return doc
	}
	doc := &fileDocument{path: path}
	r.docs[path] = doc
	r.mu.Unlock()

	if announce {
		r.dispatch(interfaces.LifecycleEvent{Kind: interfaces.DocumentOpened, Document: doc})
	}
	return doc
}

func (r *FileRegistry) close(path string) {
	doc := r.lookup(path)
	if doc == nil {
		return
	}

	r.dispatch(interfaces.LifecycleEvent{Kind: interfaces.DocumentWillClose, Document: doc})

	r.mu.Lock()
	delete(r.docs, path)
	r.mu.Unlock()
}

func (r *FileRegistry) lookup(path string) *fileDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[path]
}

func (r *FileRegistry) dispatch(event interfaces.LifecycleEvent) {
	for _, h := range r.lifecycle.snapshot() {
		h(event)
	}
}

// matches reports whether the base name of path matches a pattern.
func (r *FileRegistry) matches(path string) bool {
	if len(r.patterns) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range r.patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// fileDocument is a file under a FileRegistry root.
type fileDocument struct {
	path     string
	handlers handlerSet[interfaces.ChangeHandler]
}

func (d *fileDocument) ID() string {
	return d.path
}

func (d *fileDocument) Name() string {
	return filepath.Base(d.path)
}

func (d *fileDocument) OnChange(handler interfaces.ChangeHandler) interfaces.Subscription {
	return d.handlers.add(handler)
}

func (d *fileDocument) notify(op string) {
	n := types.ChangeNotification{
		ID:         uuid.NewString(),
		Name:       ChangedNotificationName,
		DocumentID: d.path,
		Data:       op,
	}
	for _, h := range d.handlers.snapshot() {
		h(n)
	}
}

var _ interfaces.DocumentRegistry = (*FileRegistry)(nil)
