package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type fileState struct {
	Entries map[string]string `json:"entries"`
}

// FileStore keeps every entry in one JSON document and rewrites it through a
// temp file and rename on each change. Several processes may share one path:
// every read and write goes back to the file under a lock on path+".lock".
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore opens path. A missing file is an empty store; an unreadable
// document is moved to path+".corrupt" and the store starts empty.
func NewFileStore(path string, log *zap.Logger) (*FileStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f := &FileStore{path: path}
	unlock, err := f.lock(true)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if _, err := loadFileState(path); err != nil {
		var corrupt *corruptFileError
		if !errors.As(err, &corrupt) {
			return nil, err
		}
		log.Warn("store file is not valid json, starting empty", zap.String("path", path), zap.Error(corrupt.err))
		if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil {
			return nil, renameErr
		}
	}
	return f, nil
}

type corruptFileError struct{ err error }

func (e *corruptFileError) Error() string { return "corrupt store file: " + e.err.Error() }

func loadFileState(path string) (fileState, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileState{Entries: map[string]string{}}, nil
		}
		return fileState{}, err
	}
	var st fileState
	if err := json.Unmarshal(blob, &st); err != nil {
		return fileState{}, &corruptFileError{err: err}
	}
	if st.Entries == nil {
		st.Entries = map[string]string{}
	}
	return st, nil
}

func saveFileState(path string, st fileState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// lock takes the sidecar lock file that serialises every process sharing
// path. Readers take it shared and writers exclusive.
func (f *FileStore) lock(exclusive bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return nil, err
	}
	fl := flock.New(f.path + ".lock")
	var err error
	if exclusive {
		err = fl.Lock()
	} else {
		err = fl.RLock()
	}
	if err != nil {
		return nil, fmt.Errorf("lock store file: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}

// update re-reads the document under the exclusive lock, applies change and
// writes the merged result, so entries written by another process since this
// store last looked are kept.
func (f *FileStore) update(change func(entries map[string]string) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	unlock, err := f.lock(true)
	if err != nil {
		return err
	}
	defer unlock()

	st, err := loadFileState(f.path)
	if err != nil {
		return err
	}
	if !change(st.Entries) {
		return nil
	}
	return saveFileState(f.path, st)
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unlock, err := f.lock(false)
	if err != nil {
		return nil, false, err
	}
	st, err := loadFileState(f.path)
	unlock()
	if err != nil {
		return nil, false, err
	}
	v, ok := st.Entries[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (f *FileStore) Put(_ context.Context, key string, value []byte) error {
	return f.update(func(entries map[string]string) bool {
		entries[key] = string(value)
		return true
	})
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	return f.update(func(entries map[string]string) bool {
		if _, ok := entries[key]; !ok {
			return false
		}
		delete(entries, key)
		return true
	})
}

func (f *FileStore) Close() error { return nil }
