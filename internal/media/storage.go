package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Storage persists an object and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

// LocalStorage writes objects below Root and serves them from BaseURL.
type LocalStorage struct {
	Root    string
	BaseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) Upload(ctx context.Context, objectPath string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean("/" + objectPath)[1:]
	if clean == "" || clean != objectPath {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}

	dest := filepath.Join(s.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("publish object: %w", err)
	}
	return s.BaseURL + "/uploads/" + clean, nil
}
