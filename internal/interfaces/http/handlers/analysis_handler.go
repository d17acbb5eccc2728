package handlers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/safespeak/internal/application/moderation"
	"github.com/turtacn/safespeak/internal/interfaces/http/middleware"
	"github.com/turtacn/safespeak/pkg/errors"
	"github.com/turtacn/safespeak/pkg/types/risk"
)

// Declared media types accepted per binary modality.  Undeclared uploads pass
// through so the modality default applies downstream.
var (
	imageMediaTypes = map[string]struct{}{
		"image/png":  {},
		"image/jpg":  {},
		"image/jpeg": {},
	}
	audioMediaTypes = map[string]struct{}{
		"audio/mp3":   {},
		"audio/mpeg":  {},
		"audio/wav":   {},
		"audio/x-wav": {},
		"audio/mp4":   {},
		"audio/m4a":   {},
	}
)

// AnalysisHandler serves the per-modality analysis endpoints.
type AnalysisHandler struct {
	service       *moderation.Service
	fallbackLevel risk.Level
	maxBodySize   int64
}

// NewAnalysisHandler builds the handler.  fallbackLevel is the bucket shown
// when a report carries an out-of-enum risk level.
func NewAnalysisHandler(service *moderation.Service, fallbackLevel risk.Level, maxBodySize int64) (*AnalysisHandler, error) {
	if service == nil {
		return nil, errors.New(errors.CodeInvalidParam, "moderation service is required")
	}
	if maxBodySize <= 0 {
		maxBodySize = 16 << 20
	}
	return &AnalysisHandler{
		service:       service,
		fallbackLevel: fallbackLevel,
		maxBodySize:   maxBodySize,
	}, nil
}

// Register mounts the analysis routes on the given group.
func (h *AnalysisHandler) Register(group *gin.RouterGroup) {
	group.POST("/analyze/text", h.AnalyzeText)
	group.POST("/analyze/image", h.AnalyzeImage)
	group.POST("/analyze/audio", h.AnalyzeAudio)
	group.POST("/analyze/speech", h.AnalyzeSpeech)
}

// AnalyzeText handles POST /api/v1/analyze/text with a JSON body.
func (h *AnalysisHandler) AnalyzeText(c *gin.Context) {
	var req risk.AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAppError(c, errors.Wrap(err, errors.CodeInvalidParam, "invalid request body"))
		return
	}

	report, err := h.service.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		writeAppError(c, err)
		return
	}
	h.respond(c, report)
}

// AnalyzeImage handles POST /api/v1/analyze/image.  The request body is the
// raw image; the Content-Type header supplies the media type and defaults to
// image/png when absent or generic.
func (h *AnalysisHandler) AnalyzeImage(c *gin.Context) {
	payload, mediaType, err := h.readMedia(c, imageMediaTypes)
	if err != nil {
		writeAppError(c, err)
		return
	}

	report, err := h.service.AnalyzeImage(c.Request.Context(), payload, mediaType)
	if err != nil {
		writeAppError(c, err)
		return
	}
	h.respond(c, report)
}

// AnalyzeAudio handles POST /api/v1/analyze/audio for pre-recorded audio.
func (h *AnalysisHandler) AnalyzeAudio(c *gin.Context) {
	payload, mediaType, err := h.readMedia(c, audioMediaTypes)
	if err != nil {
		writeAppError(c, err)
		return
	}

	report, err := h.service.AnalyzeAudio(c.Request.Context(), payload, mediaType)
	if err != nil {
		writeAppError(c, err)
		return
	}
	h.respond(c, report)
}

// AnalyzeSpeech handles POST /api/v1/analyze/speech for live speech
// recordings.
func (h *AnalysisHandler) AnalyzeSpeech(c *gin.Context) {
	payload, mediaType, err := h.readMedia(c, audioMediaTypes)
	if err != nil {
		writeAppError(c, err)
		return
	}

	report, err := h.service.AnalyzeSpeech(c.Request.Context(), payload, mediaType)
	if err != nil {
		writeAppError(c, err)
		return
	}
	h.respond(c, report)
}

// readMedia accepts either a raw binary body with a Content-Type header or a
// multipart form with a "file" field.  application/octet-stream is treated as
// undeclared so modality defaults apply downstream; any other declared type
// must be on the modality allow-list.
func (h *AnalysisHandler) readMedia(c *gin.Context, allowed map[string]struct{}) ([]byte, string, error) {
	var (
		payload   []byte
		mediaType string
		err       error
	)
	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/") {
		payload, mediaType, err = h.readMultipart(c)
	} else {
		payload, err = h.readBody(c.Request.Body)
		if err == nil {
			mediaType = declaredMediaType(c.GetHeader("Content-Type"))
		}
	}
	if err != nil {
		return nil, "", err
	}

	if mediaType != "" {
		if _, ok := allowed[mediaType]; !ok {
			return nil, "", errors.Newf(errors.CodeInvalidParam, "unsupported media type %q", mediaType)
		}
	}
	return payload, mediaType, nil
}

func (h *AnalysisHandler) readMultipart(c *gin.Context) ([]byte, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeInvalidParam, "multipart request requires a file field")
	}
	if header.Size > h.maxBodySize {
		return nil, "", errors.New(errors.CodeInvalidParam, "request body too large")
	}

	f, err := header.Open()
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeInvalidParam, "opening uploaded file")
	}
	defer f.Close()

	payload, err := h.readBody(f)
	if err != nil {
		return nil, "", err
	}
	return payload, declaredMediaType(header.Header.Get("Content-Type")), nil
}

func (h *AnalysisHandler) readBody(r io.Reader) ([]byte, error) {
	payload, err := io.ReadAll(io.LimitReader(r, h.maxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "reading request body")
	}
	if int64(len(payload)) > h.maxBodySize {
		return nil, errors.New(errors.CodeInvalidParam, "request body too large")
	}
	return payload, nil
}

func declaredMediaType(header string) string {
	if header == "" {
		return ""
	}
	parsed, _, err := mime.ParseMediaType(header)
	if err != nil || parsed == "application/octet-stream" {
		return ""
	}
	return parsed
}

// analysisResponse augments the report with the display-ready level.
type analysisResponse struct {
	risk.Report
	DisplayRiskLevel risk.Level `json:"display_risk_level"`
}

func (h *AnalysisHandler) respond(c *gin.Context, report risk.Report) {
	if id := middleware.GetRequestID(c); id != "" {
		report.RequestID = id
	}
	c.JSON(http.StatusOK, analysisResponse{
		Report:           report,
		DisplayRiskLevel: report.DisplayLevel(h.fallbackLevel),
	})
}
