package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// LocalClient stores files on the local filesystem under a base directory
type LocalClient struct {
	baseDir string
}

// NewLocalClient creates a local storage client rooted at baseDir
func NewLocalClient(baseDir string) (*LocalClient, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}
	return &LocalClient{baseDir: baseDir}, nil
}

// Close is a no-op for local storage
func (l *LocalClient) Close() error {
	return nil
}

// StoreFile writes a file under the base directory
func (l *LocalClient) StoreFile(ctx context.Context, filePath string, data []byte) error {
	full := filepath.Join(l.baseDir, filePath)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", full, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", full, err)
	}
	return nil
}

// GetFile reads a file under the base directory
func (l *LocalClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	full := filepath.Join(l.baseDir, filePath)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", full, err)
	}
	return data, nil
}

// FileExists reports whether a file exists under the base directory
func (l *LocalClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filepath.Join(l.baseDir, filePath))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListDir lists file paths under a directory, sorted ascending
func (l *LocalClient) ListDir(ctx context.Context, dirPath string) ([]string, error) {
	root := filepath.Join(l.baseDir, dirPath)

	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(l.baseDir, path)
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(out)
	return out, nil
}

// DeleteFile removes a file; a missing file is not an error
func (l *LocalClient) DeleteFile(ctx context.Context, filePath string) error {
	err := os.Remove(filepath.Join(l.baseDir, filePath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", filePath, err)
	}
	return nil
}
