package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// DefaultFile is the file FileKV uses when given an empty path.
const DefaultFile = "prefs.json"

// FileKV keeps every key in one JSON object on disk, the way a browser keeps
// localStorage for an origin. Each Set rewrites the whole file. A sibling
// ".lock" file serializes writers across processes sharing the file.
type FileKV struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileKV returns a FileKV backed by path. The file is created on the
// first Set.
func NewFileKV(path string) *FileKV {
	if path == "" {
		path = DefaultFile
	}
	return &FileKV{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the backing file.
func (f *FileKV) Path() string {
	return f.path
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := os.Stat(filepath.Dir(f.path)); errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err := f.lock.RLock(); err != nil {
		return nil, false, fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value, which must be valid JSON, under key.
func (f *FileKV) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("set %q: value is not JSON", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		// An unreadable file is replaced, as a browser would drop a
		// corrupted entry on the next write.
		values = make(map[string]json.RawMessage)
	}
	values[key] = json.RawMessage(value)
	return f.save(values)
}

func (f *FileKV) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileKV) save(values map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".prefs-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
