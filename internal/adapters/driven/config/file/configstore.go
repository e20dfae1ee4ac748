package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/agenda/internal/adapters/driven/config/values"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const (
	fileName = "config.toml"
	// The file may hold API keys.
	filePerm = 0o600
	dirPerm  = 0o700
)

// ConfigStore reads and writes settings as nested TOML tables.
type ConfigStore struct {
	*values.Table
	path string
}

// NewConfigStore opens dir/config.toml, creating dir if needed. An empty dir
// means ~/.agenda. A missing file is an empty store.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		dir = filepath.Join(home, ".agenda")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{Table: values.New(), path: filepath.Join(dir, fileName)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Path() string { return s.path }

// Set updates key and rewrites the file. The in-memory value is rolled back
// if the write fails.
func (s *ConfigStore) Set(key string, value any) error {
	return s.Update(key, value, s.write)
}

func (s *ConfigStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	var nested map[string]any
	if err := toml.Unmarshal(raw, &nested); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}
	s.Replace(nested)
	return nil
}

// write replaces the file through a rename so readers never see a partial file.
func (s *ConfigStore) write(nested map[string]any) error {
	data, err := toml.Marshal(nested)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), fileName+".*")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
