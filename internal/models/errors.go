package models

import "errors"

// Extraction failures abort processing for a document. Structuring
// degradation never does; it is reported on StructureResult.
var (
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrConfiguration       = errors.New("configuration error")
	ErrInsufficientText    = errors.New("insufficient text extracted")
	ErrExtraction          = errors.New("text extraction failed")
	ErrStructuringDegraded = errors.New("structuring degraded to pattern extraction")

	ErrNotFound           = errors.New("resource not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotReady           = errors.New("resume has not finished processing")
	ErrFeatureUnavailable = errors.New("feature unavailable")
)

// ErrorCode returns the machine-readable reason stored on failed records
// and returned by the API.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrUnsupportedFormat):
		return "UNSUPPORTED_FORMAT"
	case errors.Is(err, ErrConfiguration):
		return "CONFIGURATION_ERROR"
	case errors.Is(err, ErrInsufficientText):
		return "INSUFFICIENT_TEXT"
	case errors.Is(err, ErrExtraction):
		return "EXTRACTION_FAILED"
	case errors.Is(err, ErrFileTooLarge):
		return "FILE_TOO_LARGE"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrNotReady):
		return "NOT_READY"
	case errors.Is(err, ErrFeatureUnavailable):
		return "FEATURE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}
