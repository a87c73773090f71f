package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ptpanel/ptpanel/model"
)

// ErrNotFound is returned by Read when no config file exists yet.
var ErrNotFound = errors.New("tunnel config not found")

// Store persists the single TunnelConfig.
type Store interface {
	Read() (*model.TunnelConfig, error)
	WriteAtomic(cfg *model.TunnelConfig) error
	Delete() error
	Exists() bool
}

// FileStore keeps the config as one JSON file at a fixed path. Writes go
// to a temp file in the same directory and are renamed into place, so a
// reader always sees either the old or the new complete file and a crash
// mid-write cannot corrupt the live config.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Read() (*model.TunnelConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read config %s: %w", s.path, err)
	}
	var cfg model.TunnelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", s.path, err)
	}
	return &cfg, nil
}

func (s *FileStore) WriteAtomic(cfg *model.TunnelConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// The temp file must live in the same directory as the target so the
	// rename stays within one filesystem and is atomic.
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *FileStore) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
