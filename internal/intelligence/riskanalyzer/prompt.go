package riskanalyzer

import (
	"fmt"
	"strings"

	"github.com/turtacn/safespeak/internal/domain/analysis"
	"github.com/turtacn/safespeak/pkg/errors"
)

// ---------------------------------------------------------------------------
// System directive
// ---------------------------------------------------------------------------

// systemDirective frames every analysis call.  It is identical across
// modalities; only the task instruction varies.
const systemDirective = `You are an AI ethics and safety assistant for social media, specialized in analyzing content for ethical, social, cultural, and legal risks, particularly in the context of India and multicultural societies.

Your purpose is to:
1. Analyse user text, image text, or audio transcription for risks.
2. Identify violations under relevant national cyber laws, harassment laws, hate-speech regulations, discrimination laws, or social media platform policies.
3. Return exact legal sections that may apply (e.g., 'IT Act Section 66A', 'IPC 153A', 'IPC 295A', 'Anti-Bullying Regulations').
4. Highlight risky words/sentences using ` + "`__underlined__`" + ` markup.
5. Estimate realistic potential outcomes (account suspension, legal complaints, etc.).
6. Provide polite rewrites.
7. For audio/speech, specifically analyze tone and emotion (e.g., anger, sarcasm, aggression) and flag if the tone itself is harmful even if words are neutral.

Requirements:
- Do not invent new slurs.
- Respect free expression; flag tone only when personally harmful or discriminatory.
- Never exaggerate legal consequences. Only map to widely recognized real sections.
- Keep responses concise, factual, structured, and helpful.`

// taskInstructions holds the per-modality task clause appended to the system
// directive.  The speech clause is a strictly ordered three-step procedure:
// transcription first, then tone and emotion, then the risk and legal
// analysis.
var taskInstructions = map[analysis.Modality]string{
	analysis.ModalityImage: "Analyse the content of this image (transcribe text, comments, captions):",
	analysis.ModalityAudio: "Analyse the audio content (transcribe and analyze):",
	analysis.ModalitySpeech: "Analyse the speech in this audio.\n" +
		"1. Transcribe the speech.\n" +
		"2. Analyze the tone and emotion (anger, sarcasm, etc.).\n" +
		"3. Perform the standard risk and legal analysis.",
}

// ---------------------------------------------------------------------------
// Prompt building
// ---------------------------------------------------------------------------

// BuildPrompt assembles the ordered content parts for a normalized request.
// Text input is embedded in the instruction itself; binary input is emitted
// as a leading media part followed by the instruction, mirroring how the
// provider expects multimodal content to be ordered.
func BuildPrompt(req *analysis.Request) ([]Part, error) {
	if req == nil {
		return nil, errors.New(errors.CodeInvalidParam, "nil analysis request")
	}

	if req.Modality == analysis.ModalityText {
		instruction := fmt.Sprintf("%s\n\nAnalyse the following text:\nUSER_TEXT:\n\"\"\"%s\"\"\"",
			systemDirective, strings.TrimSpace(req.Text))
		return []Part{TextPart(instruction)}, nil
	}

	task, ok := taskInstructions[req.Modality]
	if !ok {
		return nil, errors.New(errors.CodeUnsupportedModality, "unsupported modality").
			WithDetail(req.Modality.String())
	}
	instruction := systemDirective + "\n\n" + task
	return []Part{
		BlobPart(req.Media, req.MediaType),
		TextPart(instruction),
	}, nil
}
