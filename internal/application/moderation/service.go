// Package moderation exposes the application-level analysis operations: one
// entry point per supported modality, each running the full normalize ->
// prompt -> generate -> validate pipeline.
package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/safespeak/internal/domain/analysis"
	"github.com/turtacn/safespeak/internal/infrastructure/monitoring/logging"
	monPrometheus "github.com/turtacn/safespeak/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/safespeak/internal/intelligence/riskanalyzer"
	"github.com/turtacn/safespeak/pkg/errors"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

// Service is the moderation application service.  It is stateless: no report
// is cached and no input is persisted, so identical requests may yield
// different provider responses.
type Service struct {
	analyzer *riskanalyzer.Analyzer
	metrics  *monPrometheus.AppMetrics
	logger   logging.Logger
}

// NewService builds the moderation service.  metrics may be nil when metric
// collection is disabled.
func NewService(analyzer *riskanalyzer.Analyzer, metrics *monPrometheus.AppMetrics, logger logging.Logger) (*Service, error) {
	if analyzer == nil {
		return nil, errors.New(errors.CodeInvalidParam, "analyzer is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		analyzer: analyzer,
		metrics:  metrics,
		logger:   logger.Named("moderation"),
	}, nil
}

// AnalyzeText analyzes free-form text.  Empty or whitespace-only input is
// rejected before any provider call.
func (s *Service) AnalyzeText(ctx context.Context, text string) (risk.Report, error) {
	req, err := analysis.NewTextRequest(text)
	if err != nil {
		return s.rejectInput(analysis.ModalityText, err)
	}
	return s.analyze(ctx, req)
}

// AnalyzeImage analyzes image bytes.  An empty mediaType defaults to
// image/png.
func (s *Service) AnalyzeImage(ctx context.Context, payload []byte, mediaType string) (risk.Report, error) {
	req, err := analysis.NewMediaRequest(analysis.ModalityImage, payload, mediaType)
	if err != nil {
		return s.rejectInput(analysis.ModalityImage, err)
	}
	return s.analyze(ctx, req)
}

// AnalyzeAudio analyzes pre-recorded audio.  An empty mediaType defaults to
// audio/mp3.
func (s *Service) AnalyzeAudio(ctx context.Context, payload []byte, mediaType string) (risk.Report, error) {
	req, err := analysis.NewMediaRequest(analysis.ModalityAudio, payload, mediaType)
	if err != nil {
		return s.rejectInput(analysis.ModalityAudio, err)
	}
	return s.analyze(ctx, req)
}

// AnalyzeSpeech analyzes live speech recordings with the extended
// transcription, tone, and legal procedure.  An empty mediaType defaults to
// audio/wav.
func (s *Service) AnalyzeSpeech(ctx context.Context, payload []byte, mediaType string) (risk.Report, error) {
	req, err := analysis.NewMediaRequest(analysis.ModalitySpeech, payload, mediaType)
	if err != nil {
		return s.rejectInput(analysis.ModalitySpeech, err)
	}
	return s.analyze(ctx, req)
}

func (s *Service) analyze(ctx context.Context, req *analysis.Request) (risk.Report, error) {
	requestID := uuid.NewString()
	logger := s.logger.With(
		logging.String("request_id", requestID),
		logging.String("modality", req.Modality.String()),
	)

	started := time.Now()
	report, err := s.analyzer.Analyze(ctx, req)
	elapsed := time.Since(started)

	if err != nil {
		s.metrics.ObserveAnalysis(req.Modality.String(), outcomeForError(err), elapsed)
		logger.Error("analysis failed",
			logging.String("code", errors.GetCode(err).String()),
			logging.Duration("elapsed", elapsed),
			logging.Err(err),
		)
		return risk.Report{}, err
	}

	report.RequestID = requestID
	s.metrics.ObserveAnalysis(req.Modality.String(), "ok", elapsed)
	if s.metrics != nil {
		s.metrics.AnalysisRiskScore.WithLabelValues(req.Modality.String()).Observe(report.RiskScore)
		if report.LevelOutOfEnum {
			s.metrics.LevelOutOfEnumTotal.WithLabelValues().Inc()
		}
	}
	return report, nil
}

// rejectInput records an input rejection without touching the provider.
func (s *Service) rejectInput(modality analysis.Modality, err error) (risk.Report, error) {
	if s.metrics != nil && errors.IsEmptyInput(err) {
		s.metrics.EmptyInputsTotal.WithLabelValues(modality.String()).Inc()
	}
	s.logger.Debug("input rejected",
		logging.String("modality", modality.String()),
		logging.String("code", errors.GetCode(err).String()),
	)
	return risk.Report{}, err
}

func outcomeForError(err error) string {
	switch errors.GetCode(err) {
	case errors.CodeProviderTimeout:
		return "timeout"
	case errors.CodeProviderTransport:
		return "transport_error"
	case errors.CodeProviderRejected:
		return "rejected"
	case errors.CodeSchemaViolation:
		return "schema_violation"
	default:
		return "error"
	}
}
