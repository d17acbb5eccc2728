package riskanalyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/safespeak/internal/domain/analysis"
	"github.com/turtacn/safespeak/internal/testutil"
	"github.com/turtacn/safespeak/pkg/errors"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

// mockBackend is a function-field test double for GenerativeBackend.
type mockBackend struct {
	generateFunc func(ctx context.Context, req *GenerateRequest) ([]byte, error)
	calls        int
}

func (m *mockBackend) GenerateJSON(ctx context.Context, req *GenerateRequest) ([]byte, error) {
	m.calls++
	return m.generateFunc(ctx, req)
}

func (m *mockBackend) Model() string { return "mock-model" }

func TestNewAnalyzer(t *testing.T) {
	t.Parallel()

	_, err := NewAnalyzer(nil, nil)
	require.Error(t, err)

	a, err := NewAnalyzer(&mockBackend{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestAnalyzerHappyPath(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{
		generateFunc: func(_ context.Context, req *GenerateRequest) ([]byte, error) {
			require.NotNil(t, req.Schema, "response schema attached to every call")
			require.NotEmpty(t, req.Parts)
			return validReportJSON(t, nil), nil
		},
	}
	analyzer, err := NewAnalyzer(backend, nil)
	require.NoError(t, err)

	req, err := analysis.NewTextRequest("some text")
	require.NoError(t, err)

	report, err := analyzer.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, risk.LevelHigh, report.RiskLevel)
	assert.Equal(t, "text", report.Modality)
	assert.False(t, report.AnalyzedAt.IsZero())
}

func TestAnalyzerNoRetryOnFailure(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{
		generateFunc: func(context.Context, *GenerateRequest) ([]byte, error) {
			return nil, errors.New(errors.CodeProviderTimeout, "provider call timed out")
		},
	}
	analyzer, err := NewAnalyzer(backend, nil)
	require.NoError(t, err)

	req, err := analysis.NewTextRequest("some text")
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeProviderTimeout, errors.GetCode(err))
	assert.Equal(t, 1, backend.calls, "a failed call is surfaced, never retried")
}

func TestAnalyzerSchemaViolationYieldsNoReport(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{
		generateFunc: func(context.Context, *GenerateRequest) ([]byte, error) {
			return []byte(`{"risk_score": 50}`), nil
		},
	}
	analyzer, err := NewAnalyzer(backend, nil)
	require.NoError(t, err)

	req, err := analysis.NewTextRequest("some text")
	require.NoError(t, err)

	report, err := analyzer.Analyze(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsSchemaViolation(err))
	assert.Zero(t, report)
}

func TestAnalyzerLogsOutOfEnumLevel(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{
		generateFunc: func(_ context.Context, _ *GenerateRequest) ([]byte, error) {
			return validReportJSON(t, map[string]interface{}{"risk_level": "severe"}), nil
		},
	}
	logger := testutil.NewMockLogger()
	analyzer, err := NewAnalyzer(backend, logger)
	require.NoError(t, err)

	req, err := analysis.NewTextRequest("some text")
	require.NoError(t, err)

	report, err := analyzer.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, report.LevelOutOfEnum)
	assert.True(t, logger.HasMessage("warn", "provider returned out-of-enum risk level"))
	assert.True(t, logger.HasMessage("info", "analysis completed"))
}

func TestAnalyzerRejectsBadPrompt(t *testing.T) {
	t.Parallel()

	backend := &mockBackend{
		generateFunc: func(context.Context, *GenerateRequest) ([]byte, error) {
			t.Fatal("backend must not be called when prompt building fails")
			return nil, nil
		},
	}
	analyzer, err := NewAnalyzer(backend, nil)
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 0, backend.calls)
}
