package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/turtacn/safespeak/pkg/client"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorOrange = "\033[38;5;208m"
	colorRed    = "\033[31m"
	colorBold   = "\033[1m"
)

func levelColor(level risk.Level) string {
	switch level {
	case risk.LevelLow:
		return colorGreen
	case risk.LevelMedium:
		return colorYellow
	case risk.LevelHigh:
		return colorOrange
	case risk.LevelCritical:
		return colorRed
	default:
		return colorReset
	}
}

func levelLabel(level risk.Level) string {
	switch level {
	case risk.LevelLow:
		return "Low"
	case risk.LevelMedium:
		return "Medium"
	case risk.LevelHigh:
		return "High"
	case risk.LevelCritical:
		return "Critical"
	default:
		return string(level)
	}
}

// scoreBar renders a fixed-width progress bar for a 0-100 score.
func scoreBar(score float64, width int) string {
	filled := int(math.Round(score / 100 * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// RenderRiskBox prints an analysis result as a readable terminal report:
// overall assessment first, then legal findings, problematic passages,
// rewrite suggestions, and the tone breakdown.
func RenderRiskBox(w io.Writer, result *client.AnalysisResult, noColor bool) {
	if result == nil {
		fmt.Fprintln(w, "No analysis result available.")
		return
	}

	paint := func(color, s string) string {
		if noColor {
			return s
		}
		return color + s + colorReset
	}

	level := result.DisplayRiskLevel
	score := int(math.Round(result.RiskScore))

	fmt.Fprintln(w, paint(colorBold, "Overall Risk Assessment"))
	fmt.Fprintf(w, "  Risk score (0-100): %d %s\n", score, scoreBar(result.RiskScore, 20))
	fmt.Fprintf(w, "  Risk level:         %s\n", paint(levelColor(level), levelLabel(level)))
	if result.LevelOutOfEnum {
		fmt.Fprintf(w, "  (provider reported %q, shown as the configured fallback)\n", string(result.RiskLevel))
	}

	if len(result.Categories) > 0 {
		fmt.Fprintf(w, "  Categories:         %s\n", strings.Join(result.Categories, ", "))
	}

	if len(result.LegalSectionsTriggered) > 0 {
		fmt.Fprintf(w, "\n%s %s\n",
			paint(colorRed, "Legal sections triggered:"),
			strings.Join(result.LegalSectionsTriggered, ", "))
	}
	if result.LegalRiskSummary != "" {
		fmt.Fprintf(w, "%s %s\n", paint(colorYellow, "Legal risk summary:"), result.LegalRiskSummary)
	}

	if len(result.ProblematicText) > 0 {
		fmt.Fprintln(w, "\nProblematic text:")
		for _, p := range result.ProblematicText {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}

	if len(result.Explanations) > 0 {
		fmt.Fprintln(w, "\nAnalysis:")
		for _, e := range result.Explanations {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	if len(result.SuggestedRewrites) > 0 {
		fmt.Fprintln(w, paint(colorBold, "\nPolite & respectful suggestions"))
		for i, alt := range result.SuggestedRewrites {
			fmt.Fprintf(w, "  Option %d: %s\n", i+1, alt)
		}
	}

	if result.ToneAnalysis != "" || len(result.DetectedEmotions) > 0 {
		fmt.Fprintln(w, "\nDetailed analysis")
		if result.ToneAnalysis != "" {
			fmt.Fprintf(w, "  Tone analysis:     %s\n", result.ToneAnalysis)
		}
		if len(result.DetectedEmotions) > 0 {
			fmt.Fprintf(w, "  Detected emotions: %s\n", strings.Join(result.DetectedEmotions, ", "))
		}
	}
}
