package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// FileStore keeps each slot as a small text file holding one Unix timestamp.
type FileStore struct{}

func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load returns def when the file does not exist yet.
func (s *FileStore) Load(path string, def float64) (float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return def, nil
		}
		return 0, fmt.Errorf("error reading checkpoint %s: %w", path, err)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing checkpoint %s: %w", path, err)
	}
	return value, nil
}

func (s *FileStore) Save(path string, value float64) error {
	data := strconv.FormatFloat(value, 'f', -1, 64) + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("error writing checkpoint %s: %w", path, err)
	}
	return nil
}
