package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelIsValid(t *testing.T) {
	t.Parallel()

	for _, l := range []Level{LevelLow, LevelMedium, LevelHigh, LevelCritical} {
		assert.True(t, l.IsValid(), "level %q", l)
	}
	for _, raw := range []string{"", "LOW", "severe", "moderate", "critical "} {
		assert.False(t, Level(raw).IsValid(), "raw %q", raw)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	l, ok := ParseLevel("high")
	assert.True(t, ok)
	assert.Equal(t, LevelHigh, l)

	l, ok = ParseLevel("severe")
	assert.False(t, ok)
	assert.Equal(t, Level("severe"), l)
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 42.5, 42.5},
		{"lower bound", 0, 0},
		{"upper bound", 100, 100},
		{"below range", -7, 0},
		{"above range", 180, 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClampScore(tt.in))
		})
	}
}

func TestReportDisplayLevel(t *testing.T) {
	t.Parallel()

	t.Run("valid level wins over fallback", func(t *testing.T) {
		t.Parallel()
		r := Report{RiskLevel: LevelCritical}
		assert.Equal(t, LevelCritical, r.DisplayLevel(LevelMedium))
	})

	t.Run("out-of-enum level yields fallback", func(t *testing.T) {
		t.Parallel()
		r := Report{RiskLevel: Level("severe"), LevelOutOfEnum: true}
		assert.Equal(t, LevelMedium, r.DisplayLevel(LevelMedium))
		assert.Equal(t, Level("severe"), r.RiskLevel, "raw value preserved")
	})

	t.Run("invalid fallback degrades to low", func(t *testing.T) {
		t.Parallel()
		r := Report{RiskLevel: Level("severe")}
		assert.Equal(t, LevelLow, r.DisplayLevel(Level("bogus")))
	})
}
