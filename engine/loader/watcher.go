package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to model and texture files under the roots of a search path. The
// editor polls Changed once per frame and swaps in a fresh loader when it returns true.
type Watcher struct {
	watcher *fsnotify.Watcher
	changed atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher starts watching every directory below the roots of sp. Roots that do not exist
// are skipped.
//
// Parameters:
//   - sp: the search path whose roots are watched
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if the file system watcher could not be created
func NewWatcher(sp SearchPath) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create asset watcher: %w", err)
	}
	w := &Watcher{
		watcher: fw,
		done:    make(chan struct{}),
	}
	for _, root := range sp.Roots() {
		w.addTree(root)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) addTree(root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			common.Logger().Warn("failed to watch asset directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		common.Logger().Warn("failed to walk asset root", "root", root, "error", err)
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				w.addTree(event.Name)
			}
			if isAssetFile(event.Name) && event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				common.Logger().Debug("asset changed", "path", event.Name, "op", event.Op.String())
				w.changed.Store(true)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			common.Logger().Error("asset watcher error", "error", err)
		}
	}
}

// Changed reports whether an asset changed since the last call.
func (w *Watcher) Changed() bool {
	return w.changed.Swap(false)
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// isAssetFile reports whether a path names a file the loader reads.
func isAssetFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if textureExtensions[ext] {
		return true
	}
	return ext == ".gltf" || ext == ".glb" || ext == ".bin"
}
