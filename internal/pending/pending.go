// Package pending buffers a single assessment submitted before sign-in so it
// can be replayed once a session exists. The buffer holds at most one entry;
// a newer submission overwrites the older one.
package pending

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/gofrs/flock"

	"github.com/pathforge/platform/internal/app/domain/assessment"
)

// Key names the buffer slot in the serialized form.
const Key = "pendingAssessment"

// Store is a single-slot buffer for a not-yet-persisted assessment.
type Store interface {
	// Get returns the buffered assessment, or nil when the slot is empty.
	Get() (*assessment.Assessment, error)

	// Set overwrites the slot.
	Set(a assessment.Assessment) error

	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear() error
}

// Memory is an in-process buffer.
type Memory struct {
	mu   sync.Mutex
	slot *assessment.Assessment
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-process buffer.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() (*assessment.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slot == nil {
		return nil, nil
	}
	copied := *m.slot
	return &copied, nil
}

func (m *Memory) Set(a assessment.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = &a
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slot = nil
	return nil
}

// File persists the buffer as a small JSON file so it survives restarts.
// A sibling lock file guards against concurrent processes.
type File struct {
	path string
	lock *flock.Flock
}

var _ Store = (*File)(nil)

// NewFile creates a file-backed buffer at path.
func NewFile(path string) *File {
	return &File{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (f *File) Get() (*assessment.Assessment, error) {
	if err := f.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock pending buffer: %w", err)
	}
	defer f.lock.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read pending buffer: %w", err)
	}

	var doc map[string]assessment.Assessment
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode pending buffer: %w", err)
	}
	a, ok := doc[Key]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *File) Set(a assessment.Assessment) error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock pending buffer: %w", err)
	}
	defer f.lock.Unlock()

	data, err := json.Marshal(map[string]assessment.Assessment{Key: a})
	if err != nil {
		return fmt.Errorf("encode pending buffer: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write pending buffer: %w", err)
	}
	return nil
}

func (f *File) Clear() error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock pending buffer: %w", err)
	}
	defer f.lock.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear pending buffer: %w", err)
	}
	return nil
}
