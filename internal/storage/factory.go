package storage

import (
	"context"
	"fmt"

	"github.com/ayushsingh08-ds/Zephra/internal/config"
)

// Mode selects the storage backend
type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCS   Mode = "gcs"
)

// NewClient creates a storage client for the configured backend
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	switch Mode(cfg.StorageMode) {
	case ModeLocal, "":
		dir := cfg.ModelDir
		if dir == "" {
			dir = "models"
		}
		client, err := NewLocalClient(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return client, nil

	case ModeGCS:
		client, err := NewGCSClient(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS storage: %w", err)
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.StorageMode)
	}
}
