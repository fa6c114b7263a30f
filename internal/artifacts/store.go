package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/ayushsingh08-ds/Zephra/internal/dataset"
	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/storage"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

// ErrModelNotFound indicates the store holds no model document at the
// requested path.
var ErrModelNotFound = errors.New("model artifact not found")

// Artifact file names within a bundle directory. The four documents are
// written and read together as one generation.
const (
	ModelFile      = "model.json"
	ScalerFile     = "scaler.json"
	MetricsFile    = "metrics.json"
	ImportanceFile = "feature_importance.json"
)

// Bundle is everything a predictor needs to serve forecasts: the fitted
// model, the normalization parameters it was trained with, and the
// evaluation record of the run that produced it. Scaler, Metrics and
// Importance may be nil when loading a partial bundle.
type Bundle struct {
	Model      *training.Model
	Scaler     *dataset.Scaler
	Metrics    *training.Metrics
	Importance []training.FeatureImportance
}

// FromTrainer assembles a bundle from a completed training run
func FromTrainer(t *training.Trainer) *Bundle {
	return &Bundle{
		Model:      t.Model(),
		Scaler:     t.Engineer().Scaler(),
		Metrics:    t.Metrics(),
		Importance: t.Importance(),
	}
}

// Store persists bundles through a storage client, so the same code path
// lands artifacts on local disk or in a GCS bucket.
type Store struct {
	client storage.Client
	log    *logger.Logger
}

// NewStore wraps a storage client
func NewStore(client storage.Client) *Store {
	return &Store{
		client: client,
		log:    logger.GetGlobalLogger().WithComponent("artifacts"),
	}
}

// Save writes the bundle under dir. The model document is mandatory; the
// other three are written only when present.
func (s *Store) Save(ctx context.Context, dir string, b *Bundle) error {
	if b == nil || b.Model == nil || !b.Model.Fitted() {
		return errors.New("cannot save bundle without a fitted model")
	}

	if err := s.writeJSON(ctx, path.Join(dir, ModelFile), b.Model); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if b.Scaler != nil {
		if err := s.writeJSON(ctx, path.Join(dir, ScalerFile), b.Scaler); err != nil {
			return fmt.Errorf("save scaler: %w", err)
		}
	}
	if b.Metrics != nil {
		if err := s.writeJSON(ctx, path.Join(dir, MetricsFile), b.Metrics); err != nil {
			return fmt.Errorf("save metrics: %w", err)
		}
	}
	if b.Importance != nil {
		if err := s.writeJSON(ctx, path.Join(dir, ImportanceFile), b.Importance); err != nil {
			return fmt.Errorf("save feature importance: %w", err)
		}
	}

	s.log.Info("saved model bundle", map[string]interface{}{
		"dir":      dir,
		"trees":    len(b.Model.Trees),
		"features": len(b.Model.FeatureNames),
	})
	return nil
}

// Load reads a bundle from dir. A missing model document is a hard
// ErrModelNotFound; missing companion documents degrade to nil fields
// with a warning, since an older generation may predate them.
func (s *Store) Load(ctx context.Context, dir string) (*Bundle, error) {
	b := &Bundle{}

	modelPath := path.Join(dir, ModelFile)
	exists, err := s.client.FileExists(ctx, modelPath)
	if err != nil {
		return nil, fmt.Errorf("check model artifact: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
	}

	b.Model = &training.Model{}
	if err := s.readJSON(ctx, modelPath, b.Model); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	scaler := &dataset.Scaler{}
	switch err := s.readJSONIfExists(ctx, path.Join(dir, ScalerFile), scaler); {
	case err == nil:
		b.Scaler = scaler
	case errors.Is(err, errArtifactMissing):
		s.log.Warn("bundle has no scaler, predictions will use raw features", nil)
	default:
		return nil, fmt.Errorf("load scaler: %w", err)
	}

	metrics := &training.Metrics{}
	switch err := s.readJSONIfExists(ctx, path.Join(dir, MetricsFile), metrics); {
	case err == nil:
		b.Metrics = metrics
	case errors.Is(err, errArtifactMissing):
		s.log.Warn("bundle has no metrics, confidence intervals unavailable", nil)
	default:
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	var importance []training.FeatureImportance
	switch err := s.readJSONIfExists(ctx, path.Join(dir, ImportanceFile), &importance); {
	case err == nil:
		b.Importance = importance
	case errors.Is(err, errArtifactMissing):
		s.log.Warn("bundle has no feature importance ranking", nil)
	default:
		return nil, fmt.Errorf("load feature importance: %w", err)
	}

	s.log.Info("loaded model bundle", map[string]interface{}{
		"dir":        dir,
		"trees":      len(b.Model.Trees),
		"has_scaler": b.Scaler != nil,
	})
	return b, nil
}

// Exists reports whether a model document is present under dir
func (s *Store) Exists(ctx context.Context, dir string) (bool, error) {
	return s.client.FileExists(ctx, path.Join(dir, ModelFile))
}

// Delete removes every artifact document under dir
func (s *Store) Delete(ctx context.Context, dir string) error {
	for _, name := range []string{ModelFile, ScalerFile, MetricsFile, ImportanceFile} {
		if err := s.client.DeleteFile(ctx, path.Join(dir, name)); err != nil {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return nil
}

var errArtifactMissing = errors.New("artifact missing")

func (s *Store) writeJSON(ctx context.Context, p string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.client.StoreFile(ctx, p, data)
}

func (s *Store) readJSON(ctx context.Context, p string, v interface{}) error {
	data, err := s.client.GetFile(ctx, p)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) readJSONIfExists(ctx context.Context, p string, v interface{}) error {
	exists, err := s.client.FileExists(ctx, p)
	if err != nil {
		return err
	}
	if !exists {
		return errArtifactMissing
	}
	return s.readJSON(ctx, p, v)
}
