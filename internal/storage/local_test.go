package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalClientStoreAndGet(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	payload := []byte(`{"rmse": 8.2}`)

	if err := client.StoreFile(ctx, "aqi_model/metrics.json", payload); err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}

	got, err := client.GetFile(ctx, "aqi_model/metrics.json")
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("round trip mismatch: %q vs %q", got, payload)
	}
}

func TestLocalClientFileExists(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	exists, err := client.FileExists(ctx, "missing.json")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("missing file reported as existing")
	}

	if err := client.StoreFile(ctx, "present.json", []byte("{}")); err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}
	exists, err = client.FileExists(ctx, "present.json")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if !exists {
		t.Error("stored file reported as missing")
	}
}

func TestLocalClientListDir(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	files := []string{
		"aqi_model/model.json",
		"aqi_model/scaler.json",
		"aqi_model/metrics.json",
	}
	for _, f := range files {
		if err := client.StoreFile(ctx, f, []byte("{}")); err != nil {
			t.Fatalf("StoreFile(%s) failed: %v", f, err)
		}
	}

	listed, err := client.ListDir(ctx, "aqi_model")
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	if len(listed) != len(files) {
		t.Fatalf("expected %d entries, got %d: %v", len(files), len(listed), listed)
	}
	// Sorted ascending
	for i := 1; i < len(listed); i++ {
		if listed[i-1] > listed[i] {
			t.Errorf("listing not sorted: %v", listed)
		}
	}
}

func TestLocalClientDeleteFile(t *testing.T) {
	client, err := NewLocalClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.StoreFile(ctx, "old/model.json", []byte("{}")); err != nil {
		t.Fatalf("StoreFile failed: %v", err)
	}
	if err := client.DeleteFile(ctx, "old/model.json"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}
	// Deleting again is not an error
	if err := client.DeleteFile(ctx, "old/model.json"); err != nil {
		t.Errorf("DeleteFile on missing file returned error: %v", err)
	}
}

func TestNewLocalClientCreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "models")
	client, err := NewLocalClient(base)
	if err != nil {
		t.Fatalf("NewLocalClient failed: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(base); os.IsNotExist(err) {
		t.Error("base directory was not created")
	}
}
