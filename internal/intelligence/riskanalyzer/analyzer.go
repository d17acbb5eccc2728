// Package riskanalyzer turns normalized analysis requests into validated
// risk reports via a schema-constrained generative backend.
package riskanalyzer

import (
	"context"
	"time"

	"github.com/turtacn/safespeak/internal/domain/analysis"
	"github.com/turtacn/safespeak/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/safespeak/pkg/errors"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

// Analyzer runs the prompt -> generate -> validate pipeline for a single
// request.  It is stateless and safe for concurrent use; each call is
// independent and nothing is cached between calls.
type Analyzer struct {
	backend GenerativeBackend
	logger  logging.Logger
}

// NewAnalyzer builds an Analyzer over the given backend.
func NewAnalyzer(backend GenerativeBackend, logger logging.Logger) (*Analyzer, error) {
	if backend == nil {
		return nil, errors.New(errors.CodeInvalidParam, "generative backend is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Analyzer{backend: backend, logger: logger.Named("riskanalyzer")}, nil
}

// Analyze performs exactly one provider call for the request and returns the
// validated report.  Provider failures are never retried here; the error
// taxonomy tells the caller whether a retry is worthwhile.
func (a *Analyzer) Analyze(ctx context.Context, req *analysis.Request) (risk.Report, error) {
	parts, err := BuildPrompt(req)
	if err != nil {
		return risk.Report{}, err
	}

	started := time.Now()
	raw, err := a.backend.GenerateJSON(ctx, &GenerateRequest{
		Parts:  parts,
		Schema: ProviderSchema(),
	})
	if err != nil {
		a.logger.Warn("provider call failed",
			logging.String("modality", req.Modality.String()),
			logging.String("model", a.backend.Model()),
			logging.Err(err),
		)
		return risk.Report{}, err
	}

	report, err := ParseReport(raw)
	if err != nil {
		a.logger.Warn("provider response failed validation",
			logging.String("modality", req.Modality.String()),
			logging.Err(err),
		)
		return risk.Report{}, err
	}

	report.Modality = req.Modality.String()
	report.AnalyzedAt = time.Now().UTC()

	if report.LevelOutOfEnum {
		a.logger.Warn("provider returned out-of-enum risk level",
			logging.String("modality", req.Modality.String()),
			logging.String("risk_level", string(report.RiskLevel)),
		)
	}
	a.logger.Info("analysis completed",
		logging.String("modality", req.Modality.String()),
		logging.Float64("risk_score", report.RiskScore),
		logging.String("risk_level", string(report.RiskLevel)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}
