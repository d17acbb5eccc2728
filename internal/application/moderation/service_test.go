package moderation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/safespeak/internal/intelligence/riskanalyzer"
	"github.com/turtacn/safespeak/pkg/errors"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

type stubBackend struct {
	generateFunc func(ctx context.Context, req *riskanalyzer.GenerateRequest) ([]byte, error)
	calls        int
}

func (s *stubBackend) GenerateJSON(ctx context.Context, req *riskanalyzer.GenerateRequest) ([]byte, error) {
	s.calls++
	return s.generateFunc(ctx, req)
}

func (s *stubBackend) Model() string { return "stub-model" }

func reportJSON(t *testing.T, level string, score float64) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"risk_score":               score,
		"risk_level":               level,
		"categories":               []string{"harassment"},
		"explanations":             []string{"targets an individual"},
		"problematic_text":         []string{"__idiot__"},
		"legal_sections_triggered": []string{},
		"legal_risk_summary":       "Possible platform policy violation.",
		"suggested_rewrites":       []string{"I think this could be handled differently."},
		"tone_analysis":            "hostile",
		"detected_emotions":        []string{"Anger"},
	})
	require.NoError(t, err)
	return raw
}

func newTestService(t *testing.T, backend *stubBackend) *Service {
	t.Helper()
	analyzer, err := riskanalyzer.NewAnalyzer(backend, nil)
	require.NoError(t, err)
	svc, err := NewService(analyzer, nil, nil)
	require.NoError(t, err)
	return svc
}

func TestNewService(t *testing.T) {
	t.Parallel()

	_, err := NewService(nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestAnalyzeText(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{
		generateFunc: func(context.Context, *riskanalyzer.GenerateRequest) ([]byte, error) {
			return reportJSON(t, "medium", 45), nil
		},
	}
	svc := newTestService(t, backend)

	report, err := svc.AnalyzeText(context.Background(), "you absolute idiot")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, risk.LevelMedium, report.RiskLevel)
	assert.Equal(t, 45.0, report.RiskScore)
	assert.Equal(t, "text", report.Modality)
	assert.NotEmpty(t, report.RequestID)
}

func TestAnalyzeTextEmptyInputShortCircuits(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{
		generateFunc: func(context.Context, *riskanalyzer.GenerateRequest) ([]byte, error) {
			t.Fatal("provider must not be called for empty input")
			return nil, nil
		},
	}
	svc := newTestService(t, backend)

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := svc.AnalyzeText(context.Background(), in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.IsEmptyInput(err))
	}
	assert.Equal(t, 0, backend.calls)
}

func TestAnalyzeBinaryModalities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		analyze      func(svc *Service, payload []byte, mediaType string) (risk.Report, error)
		wantModality string
	}{
		{
			name: "image",
			analyze: func(svc *Service, p []byte, mt string) (risk.Report, error) {
				return svc.AnalyzeImage(context.Background(), p, mt)
			},
			wantModality: "image",
		},
		{
			name: "audio",
			analyze: func(svc *Service, p []byte, mt string) (risk.Report, error) {
				return svc.AnalyzeAudio(context.Background(), p, mt)
			},
			wantModality: "audio",
		},
		{
			name: "speech",
			analyze: func(svc *Service, p []byte, mt string) (risk.Report, error) {
				return svc.AnalyzeSpeech(context.Background(), p, mt)
			},
			wantModality: "speech",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			backend := &stubBackend{
				generateFunc: func(context.Context, *riskanalyzer.GenerateRequest) ([]byte, error) {
					return reportJSON(t, "low", 5), nil
				},
			}
			svc := newTestService(t, backend)

			report, err := tt.analyze(svc, []byte{0x01}, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantModality, report.Modality)

			_, err = tt.analyze(svc, nil, "")
			require.Error(t, err)
			assert.True(t, errors.IsEmptyInput(err))
			assert.Equal(t, 1, backend.calls, "empty payload never reaches the provider")
		})
	}
}

func TestAnalyzePropagatesProviderErrors(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{
		generateFunc: func(context.Context, *riskanalyzer.GenerateRequest) ([]byte, error) {
			return nil, errors.New(errors.CodeProviderTransport, "provider unavailable")
		},
	}
	svc := newTestService(t, backend)

	report, err := svc.AnalyzeText(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, errors.CodeProviderTransport, errors.GetCode(err))
	assert.True(t, errors.IsRetryable(err))
	assert.Zero(t, report)
}

func TestAnalyzeOutOfEnumLevelSurvives(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{
		generateFunc: func(context.Context, *riskanalyzer.GenerateRequest) ([]byte, error) {
			return reportJSON(t, "extreme", 99), nil
		},
	}
	svc := newTestService(t, backend)

	report, err := svc.AnalyzeText(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, report.LevelOutOfEnum)
	assert.Equal(t, risk.Level("extreme"), report.RiskLevel)
}
