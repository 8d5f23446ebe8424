package utils

import (
	"context"
	"os"
	"path/filepath"
)

// UploadDir is where LocalStore writes and what main serves under /uploads.
const UploadDir = "uploads"

// LocalStore writes screenshots to disk when R2 is not configured.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: "/uploads"}
}

// Save writes data to Dir/key, creating parent directories as needed.
func (l *LocalStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	destPath := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return "", err
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", err
	}
	return l.BaseURL + "/" + filepath.ToSlash(key), nil
}
