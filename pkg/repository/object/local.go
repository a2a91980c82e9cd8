package object

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type localStorage struct {
	root   string
	logger *zap.Logger
}

// NewLocalStorage creates a Storage implementation rooted at the upload
// directory. Paths stored in file records may be absolute (legacy rows)
// or relative to the root; both resolve to the same location as long as
// they stay inside the root.
func NewLocalStorage(root string, logger *zap.Logger) (Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload root: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &localStorage{root: absRoot, logger: logger}, nil
}

// resolve maps a stored path onto the upload root, rejecting anything
// that escapes it.
func (l *localStorage) resolve(path string) (string, error) {
	p := path
	if filepath.IsAbs(p) {
		// Legacy records store absolute paths; keep only the part under
		// the root.
		rel, err := filepath.Rel(l.root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path %q is outside the upload root", path)
		}
		p = rel
	}
	full := filepath.Join(l.root, filepath.Clean("/"+p))
	if !strings.HasPrefix(full, l.root+string(os.PathSeparator)) && full != l.root {
		return "", fmt.Errorf("path %q is outside the upload root", path)
	}
	return full, nil
}

func (l *localStorage) SaveFile(_ context.Context, path string, content []byte) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, content, 0o644)
}

func (l *localStorage) ReadFile(_ context.Context, path string) ([]byte, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (l *localStorage) DeleteFile(_ context.Context, path string) (DeleteStatus, error) {
	full, err := l.resolve(path)
	if err != nil {
		return AlreadyAbsent, err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("blob already absent", zap.String("path", path))
			return AlreadyAbsent, nil
		}
		return AlreadyAbsent, err
	}
	return Deleted, nil
}
