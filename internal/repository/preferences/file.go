package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xpanvictor/liveslides/internal/domains/preferences"
)

// FileRepo stores the preferences blob in a JSON file. Used when Redis is not
// configured.
type FileRepo struct {
	path string
	mu   sync.Mutex
}

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Load implements preferences.Repository.
func (f *FileRepo) Load(ctx context.Context) (preferences.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return preferences.Preferences{}, preferences.ErrNotFound
		}
		return preferences.Preferences{}, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	var p preferences.Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return preferences.Preferences{}, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return p, nil
}

// Save implements preferences.Repository. The file is replaced atomically.
func (f *FileRepo) Save(ctx context.Context, p preferences.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(f.path), err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.path)
}
