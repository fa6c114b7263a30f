package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/ayushsingh08-ds/Zephra/internal/artifacts"
	"github.com/ayushsingh08-ds/Zephra/internal/config"
	"github.com/ayushsingh08-ds/Zephra/internal/dataset"
	"github.com/ayushsingh08-ds/Zephra/internal/fetchers"
	"github.com/ayushsingh08-ds/Zephra/internal/llm"
	"github.com/ayushsingh08-ds/Zephra/internal/logger"
	"github.com/ayushsingh08-ds/Zephra/internal/mocks"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
	"github.com/ayushsingh08-ds/Zephra/internal/predict"
	"github.com/ayushsingh08-ds/Zephra/internal/reports"
	"github.com/ayushsingh08-ds/Zephra/internal/storage"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

// modelDir is the artifact folder within model storage
const modelDir = "aqi_model"

// Server wires the forecast pipeline behind the HTTP API
type Server struct {
	cfg       *config.Config
	fetcher   *fetchers.DataFetcher
	mockGen   *mocks.Generator
	store     storage.Client
	artifacts *artifacts.Store
	reportGen *reports.Generator
	log       *logger.Logger

	// trainMu admits one training run at a time; mu guards predictor swaps
	trainMu   sync.Mutex
	mu        sync.RWMutex
	predictor *predict.Predictor
}

// NewServer builds a server from configuration. A missing persisted model
// is not an error: forecast endpoints report it until a training run
// produces one.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := storage.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize model storage: %w", err)
	}

	artifactStore := artifacts.NewStore(store)
	predictor := predict.NewPredictor(artifactStore, dataset.DefaultConfig())

	log := logger.GetGlobalLogger().WithComponent("server")
	if err := predictor.Load(ctx, modelDir); err != nil {
		log.Warnf("no usable model at startup, train one via POST /api/model/train: %v", err)
	}

	reportStore := store
	if storage.Mode(cfg.StorageMode) != storage.ModeGCS {
		reportStore, err = storage.NewLocalClient(cfg.LocalReportsDir)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("initialize report storage: %w", err)
		}
	}

	s := &Server{
		cfg:       cfg,
		fetcher:   fetchers.NewDataFetcher(cfg.WeatherAPIURL, cfg.AirQualityAPIURL),
		store:     store,
		artifacts: artifactStore,
		predictor: predictor,
		reportGen: reports.NewGenerator(reportStore, llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel), cfg.LocalReportsDir),
		log:       log,
	}

	if cfg.MockupMode {
		s.mockGen = mocks.NewGenerator(42)
		log.Info("mockup mode enabled, serving synthetic measurements", nil)
	}

	return s, nil
}

// Routes configures the HTTP mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/locations", s.handleLocations)
	mux.HandleFunc("/api/forecast", s.handleForecast)
	mux.HandleFunc("/api/forecast/hourly", s.handleHourlyForecast)
	mux.HandleFunc("/api/model/info", s.handleModelInfo)
	mux.HandleFunc("/api/model/train", s.handleTrain)
	mux.HandleFunc("/api/validate", s.handleValidate)
	mux.HandleFunc("/api/report", s.handleReport)
	return mux
}

// Close releases server resources
func (s *Server) Close() error {
	return s.store.Close()
}

// measurements returns the hourly input series for a location, synthetic
// in mockup mode and fetched otherwise.
func (s *Server) measurements(ctx context.Context, loc fetchers.Location, hours int) ([]models.Measurement, error) {
	if s.mockGen != nil {
		return s.mockGen.Hourly(nowUTC(), hours), nil
	}
	return s.fetcher.FetchHourly(ctx, loc, hours)
}

// locationFromQuery resolves the location query parameter, falling back
// to the configured default.
func (s *Server) locationFromQuery(r *http.Request) (fetchers.Location, error) {
	name := r.URL.Query().Get("location")
	if name == "" {
		name = s.cfg.DefaultLocation
	}
	return fetchers.LookupLocation(name)
}

// currentPredictor returns the predictor under the swap lock
func (s *Server) currentPredictor() *predict.Predictor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.predictor
}

// swapPredictor installs a freshly trained predictor
func (s *Server) swapPredictor(p *predict.Predictor) {
	s.mu.Lock()
	s.predictor = p
	s.mu.Unlock()
}

// trainParams returns the hyperparameters for an on-demand training run
func (s *Server) trainParams() training.Params {
	return training.DefaultParams()
}
