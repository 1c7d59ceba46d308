package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"papergen/internal/platform/logger"

	"github.com/fsnotify/fsnotify"
)

const blobFileExt = ".json"

// FileBlobStore keeps one file per key inside dir and caches what it has read.
// A filesystem watcher drops cache entries when the file changes underneath
// us, e.g. when a second process shares the same directory.
type FileBlobStore struct {
	dir     string
	log     *logger.Logger
	watcher *fsnotify.Watcher

	mu    sync.RWMutex
	cache map[string][]byte
	// versions counts invalidations per key. Get only caches what it read if
	// no invalidation happened during the read.
	versions map[string]uint64
	readFile func(name string) ([]byte, error)

	stopOnce sync.Once
	doneCh   chan struct{}
}

func NewFileBlobStore(dir string, log *logger.Logger) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir %s: %w", dir, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create store watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch store dir %s: %w", dir, err)
	}
	return &FileBlobStore{
		dir:      dir,
		log:      log,
		watcher:  watcher,
		cache:    map[string][]byte{},
		versions: map[string]uint64{},
		readFile: os.ReadFile,
		doneCh:   make(chan struct{}),
	}, nil
}

// Start consumes watcher events until ctx is done or Close is called.
func (s *FileBlobStore) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *FileBlobStore) run(ctx context.Context) {
	defer close(s.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			key, isBlob := s.keyFor(event.Name)
			if !isBlob {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.invalidate(key)
				s.log.Debug("store file changed, cache dropped", "key", key, "op", event.Op.String())
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("store watcher error", "error", err)
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (s *FileBlobStore) Close() error {
	var err error
	s.stopOnce.Do(func() {
		err = s.watcher.Close()
	})
	return err
}

func (s *FileBlobStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	cached, ok := s.cache[key]
	version := s.versions[key]
	s.mu.RUnlock()
	if ok {
		return append([]byte(nil), cached...), true, nil
	}

	data, err := s.readFile(s.pathFor(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("FileBlobStore.Get: %w", err)
	}

	s.mu.Lock()
	if s.versions[key] == version {
		s.cache[key] = data
	}
	s.mu.Unlock()
	return append([]byte(nil), data...), true, nil
}

func (s *FileBlobStore) invalidate(key string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.versions[key]++
	s.mu.Unlock()
}

// Put writes through a temp file and rename so readers never see a torn blob.
func (s *FileBlobStore) Put(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("FileBlobStore.Put: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("FileBlobStore.Put: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("FileBlobStore.Put: %w", err)
	}
	if err := os.Rename(tmpName, s.pathFor(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("FileBlobStore.Put: %w", err)
	}

	s.mu.Lock()
	s.versions[key]++
	s.cache[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *FileBlobStore) pathFor(key string) string {
	return filepath.Join(s.dir, key+blobFileExt)
}

func (s *FileBlobStore) keyFor(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, blobFileExt) {
		return "", false
	}
	return strings.TrimSuffix(base, blobFileExt), true
}
