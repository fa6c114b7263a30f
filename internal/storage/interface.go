package storage

import "context"

// Client is the interface shared by local and GCS storage backends
type Client interface {
	// Close releases backend resources
	Close() error

	// StoreFile writes a file at the given path, creating parents as needed
	StoreFile(ctx context.Context, filePath string, data []byte) error

	// GetFile reads a file from the given path
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// FileExists reports whether a file exists at the given path
	FileExists(ctx context.Context, filePath string) (bool, error)

	// ListDir lists file paths under a directory
	ListDir(ctx context.Context, dirPath string) ([]string, error)

	// DeleteFile removes a file; missing files are not an error
	DeleteFile(ctx context.Context, filePath string) error
}
