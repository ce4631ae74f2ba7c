package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rxtech-lab/argo-forge/internal/synth"
	"github.com/rxtech-lab/argo-forge/internal/types"
	"github.com/rxtech-lab/argo-forge/internal/validation"
	"github.com/rxtech-lab/argo-forge/internal/version"
	"github.com/rxtech-lab/argo-forge/pkg/errors"
	"github.com/rxtech-lab/argo-forge/pkg/forge"
	"github.com/rxtech-lab/argo-forge/pkg/marketdata"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.GetVersion()})
}

// handleValidate runs the diagnostic scenarios. The status code and the
// X-Test-Status header both reflect the outcome.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	report, crashed := s.runValidation(r)
	if crashed {
		w.Header().Set(TestStatusHeader, string(validation.StatusFailed))
		s.writeJSON(w, http.StatusInternalServerError, report)

		return
	}

	w.Header().Set(TestStatusHeader, string(report.Status))

	status := http.StatusOK
	if !report.Passed() {
		status = http.StatusInternalServerError
	}

	s.log.Info("Validation finished",
		zap.String("status", string(report.Status)),
		zap.Int("passed", report.PassedTests),
		zap.Int("total", report.TotalTests),
	)

	s.writeJSON(w, status, report)
}

func (s *Server) runValidation(r *http.Request) (report validation.Report, crashed bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.log.Error("Validation runner panicked", zap.Any("panic", recovered))

			report = validationCrash(fmt.Sprint(recovered))
			crashed = true
		}
	}()

	return s.validator(r.Context()), false
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid request body", err))

		return
	}

	response, err := s.runBacktest(r, req, forge.Callbacks{})
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	scenario := query.Get("scenario")
	if scenario == "" {
		scenario = string(synth.ScenarioNormal)
	}

	length, err := intParam(query.Get("length"), DefaultLength)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid length", err))

		return
	}

	seed, err := intParam(query.Get("seed"), int(synth.DefaultSeed))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid seed", err))

		return
	}

	candles, err := synthesize(scenario, length, int64(seed))
	if err != nil {
		s.writeError(w, err)

		return
	}

	parsed, _ := synth.ParseScenario(scenario)

	s.writeJSON(w, http.StatusOK, SynthesizeResponse{
		Scenario: string(parsed),
		Seed:     int64(seed),
		Candles:  candles,
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	providers := make([]marketdata.ProviderInfo, 0)

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			s.writeError(w, err)

			return
		}

		providers = append(providers, info)
	}

	s.writeJSON(w, http.StatusOK, providers)
}

func (s *Server) handleConfigSchema(w http.ResponseWriter, _ *http.Request) {
	config := forge.DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(schema)); err != nil {
		s.log.Warn("Failed to write schema", zap.Error(err))
	}
}

// runBacktest resolves the candles and configuration of req and runs it.
func (s *Server) runBacktest(r *http.Request, req BacktestRequest, callbacks forge.Callbacks) (BacktestResponse, error) {
	candles, err := requestCandles(req)
	if err != nil {
		return BacktestResponse{}, err
	}

	config := forge.DefaultConfig()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &config); err != nil {
			return BacktestResponse{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
		}
	}

	result, err := forge.RunSimulation(r.Context(), req.Nodes, req.Edges, candles,
		forge.WithConfig(config),
		forge.WithLogger(s.log.Logger),
		forge.WithCallbacks(callbacks),
	)
	if err != nil {
		return BacktestResponse{}, err
	}

	response := BacktestResponse{Result: result}
	if req.Report {
		response.Report = forge.Report(result, candles)
	}

	return response, nil
}

func requestCandles(req BacktestRequest) ([]types.Candle, error) {
	if len(req.Candles) > 0 {
		return types.SortCandles(req.Candles), nil
	}

	scenario := req.Scenario
	if scenario == "" {
		scenario = string(synth.ScenarioNormal)
	}

	length := req.Length
	if length == 0 {
		length = DefaultLength
	}

	seed := req.Seed
	if seed == 0 {
		seed = synth.DefaultSeed
	}

	return synthesize(scenario, length, seed)
}

func synthesize(scenario string, length int, seed int64) ([]types.Candle, error) {
	if length <= 0 || length > MaxLength {
		return nil, errors.Newf(errors.ErrCodeInvalidLength, "length must be between 1 and %d, got %d", MaxLength, length)
	}

	return forge.Synthesize(scenario, length, forge.WithSeed(seed))
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
