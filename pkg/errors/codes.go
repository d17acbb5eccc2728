package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK           ErrorCode = "OK"
	CodeUnknown      ErrorCode = "COMMON_000"
	CodeInternal     ErrorCode = "COMMON_001"
	CodeInvalidParam ErrorCode = "COMMON_002"
	CodeValidation   ErrorCode = "COMMON_003"
	CodeConfig       ErrorCode = "COMMON_004"
	CodeNotFound     ErrorCode = "COMMON_005"
	CodeRateLimit    ErrorCode = "COMMON_006"
)

// Analysis pipeline error codes.
//
// CodeEmptyInput is recovered locally and never reaches the provider.
// CodeUnsupportedModality indicates a modality tag outside the supported
// set (text, image, audio, speech).
const (
	CodeEmptyInput          ErrorCode = "ANLZ_001"
	CodeUnsupportedModality ErrorCode = "ANLZ_002"
)

// Provider gateway error codes.
//
// CodeProviderTimeout and CodeProviderTransport are retryable from the
// caller's perspective.  CodeProviderRejected means the provider declined
// to answer (policy refusal); it is surfaced verbatim, never converted to
// a low-risk report.
const (
	CodeProviderTimeout   ErrorCode = "PROV_001"
	CodeProviderTransport ErrorCode = "PROV_002"
	CodeProviderRejected  ErrorCode = "PROV_003"
)

// Response contract error codes.
//
// CodeSchemaViolation means the provider's output could not be reconciled
// with the risk schema; the analysis is unavailable rather than partial.
const (
	CodeSchemaViolation ErrorCode = "SCHEMA_001"
)

// HTTPStatus maps an ErrorCode to the HTTP status code the API layer
// responds with.  Unknown codes map to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeEmptyInput, CodeInvalidParam, CodeValidation, CodeUnsupportedModality:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeSchemaViolation:
		return http.StatusUnprocessableEntity
	case CodeProviderRejected, CodeProviderTransport:
		return http.StatusBadGateway
	case CodeProviderTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
