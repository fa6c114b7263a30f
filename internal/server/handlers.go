package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ayushsingh08-ds/Zephra/internal/artifacts"
	"github.com/ayushsingh08-ds/Zephra/internal/dataset"
	"github.com/ayushsingh08-ds/Zephra/internal/fetchers"
	"github.com/ayushsingh08-ds/Zephra/internal/models"
	"github.com/ayushsingh08-ds/Zephra/internal/predict"
	"github.com/ayushsingh08-ds/Zephra/internal/reports"
	"github.com/ayushsingh08-ds/Zephra/internal/training"
)

// defaultTrainingHours is the history window a training run fetches when
// the request does not specify one. Thirty days of hourly data leaves a
// comfortable margin over the minimum usable row count.
const defaultTrainingHours = 720

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"model_loaded": s.currentPredictor().Loaded(),
		"mockup_mode":  s.mockGen != nil,
		"timestamp":    nowUTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	locations := fetchers.Locations()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"locations": locations,
		"count":     len(locations),
		"timestamp": nowUTC().Format(time.RFC3339),
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loc, err := s.locationFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.measurements(r.Context(), loc, s.cfg.HistoryHours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	forecast, err := s.currentPredictor().PredictSingle(records, models.FieldAQI, s.cfg.ForecastHorizonHours)
	if err != nil {
		writeError(w, forecastStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"location":  loc.Name,
		"forecast":  forecast,
		"timestamp": nowUTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHourlyForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loc, err := s.locationFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	hours := s.cfg.ForecastHorizonHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 72 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("hours must be between 1 and 72"))
			return
		}
		hours = parsed
	}

	records, err := s.measurements(r.Context(), loc, s.cfg.HistoryHours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	hourly, err := s.currentPredictor().PredictSequence(records, models.FieldAQI, hours)
	if err != nil {
		writeError(w, forecastStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"location":  loc.Name,
		"hourly":    hourly,
		"count":     len(hourly),
		"timestamp": nowUTC().Format(time.RFC3339),
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	p := s.currentPredictor()
	if !p.Loaded() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"loaded":  false,
			"message": "no trained model available",
		})
		return
	}

	bundle := p.Bundle()
	info := map[string]interface{}{
		"loaded":        true,
		"params":        bundle.Model.Params,
		"feature_count": len(bundle.Model.FeatureNames),
		"tree_count":    len(bundle.Model.Trees),
		"has_scaler":    bundle.Scaler != nil,
	}
	if bundle.Metrics != nil {
		info["metrics"] = bundle.Metrics
	}
	if contributions, err := p.FeatureContributions(10); err == nil {
		info["top_features"] = contributions
	}

	writeJSON(w, http.StatusOK, info)
}

// handleTrain runs the full training pipeline: fetch history, engineer
// features, cross-validate, fit, persist the bundle, and swap it into the
// predictor. One run at a time.
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.trainMu.TryLock() {
		writeError(w, http.StatusConflict, errors.New("a training run is already in progress"))
		return
	}
	defer s.trainMu.Unlock()

	loc, err := s.locationFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	hours := defaultTrainingHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("hours must be a positive integer"))
			return
		}
		hours = parsed
	}

	ctx := r.Context()
	start := time.Now()

	records, err := s.measurements(ctx, loc, hours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	trainer := training.NewTrainer(dataset.DefaultConfig(), s.trainParams())
	table, y, err := trainer.PrepareData(records, models.FieldAQI, s.cfg.ForecastHorizonHours)
	if err != nil {
		writeError(w, forecastStatus(err), err)
		return
	}

	cv, err := trainer.CrossValidate(table, y, 5)
	if err != nil {
		s.log.Warnf("cross-validation skipped: %v", err)
	}

	metrics, err := trainer.Train(table, y, training.TrainOptions{
		TestSize:  s.cfg.TestSize,
		Normalize: true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	bundle := artifacts.FromTrainer(trainer)
	if err := s.artifacts.Save(ctx, modelDir, bundle); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("persist model: %w", err))
		return
	}

	fresh := predict.NewPredictor(s.artifacts, trainer.Engineer().Config())
	fresh.SetBundle(bundle)
	s.swapPredictor(fresh)

	response := map[string]interface{}{
		"success":     true,
		"location":    loc.Name,
		"metrics":     metrics,
		"duration_ms": time.Since(start).Milliseconds(),
		"timestamp":   nowUTC().Format(time.RFC3339),
	}
	if cv != nil {
		response["cross_validation"] = cv
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Measurements []models.Measurement `json:"measurements"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	result := s.currentPredictor().ValidateInput(payload.Measurements)
	writeJSON(w, http.StatusOK, result)
}

// handleReport builds a complete forecast report and returns its storage
// location along with the rendered HTML path.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loc, err := s.locationFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	records, err := s.measurements(ctx, loc, s.cfg.HistoryHours)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	p := s.currentPredictor()
	forecast, err := p.PredictSingle(records, models.FieldAQI, s.cfg.ForecastHorizonHours)
	if err != nil {
		writeError(w, forecastStatus(err), err)
		return
	}
	hourly, err := p.PredictSequence(records, models.FieldAQI, s.cfg.ForecastHorizonHours)
	if err != nil {
		writeError(w, forecastStatus(err), err)
		return
	}

	contributions, _ := p.FeatureContributions(5)
	var metrics *training.Metrics
	if b := p.Bundle(); b != nil {
		metrics = b.Metrics
	}

	now := nowUTC()
	folder := fmt.Sprintf("%s/%s", now.Format("2006-01-02_15-04-05"), slug(loc.Name))
	reportPath, err := s.reportGen.Generate(ctx, folder, &reports.ReportData{
		Location:      loc.Name,
		GeneratedAt:   now,
		History:       records,
		Forecast:      forecast,
		Hourly:        hourly,
		Contributions: contributions,
		Metrics:       metrics,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"location":  loc.Name,
		"report":    reportPath,
		"timestamp": now.Format(time.RFC3339),
	})
}

// forecastStatus maps pipeline errors to HTTP statuses
func forecastStatus(err error) int {
	switch {
	case errors.Is(err, artifacts.ErrModelNotFound):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
