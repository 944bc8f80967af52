package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel markers classifying pipeline failures. HTTPStatus maps them to
// response codes, so every error surfaced to a handler should be tagged with
// exactly one of these via Wrap.
var (
	// ErrUpload marks caller input defects: empty, oversized, or corrupt uploads.
	ErrUpload = errors.New("upload error")
	// ErrSpawn marks a process launch failure after both the primary and
	// fallback executables were attempted.
	ErrSpawn = errors.New("process spawn error")
	// ErrProcessExit marks a non-zero exit from an external tool.
	ErrProcessExit = errors.New("process exit error")
	// ErrTimeout marks a deadline expiry on an external call.
	ErrTimeout = errors.New("timeout")
	// ErrMissingArtifact marks a zero exit code with no output file produced.
	ErrMissingArtifact = errors.New("missing artifact")
	// ErrEncoderUnavailable marks a failed encoder pre-flight check.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
	// ErrTranslation marks a remote translation call failure.
	ErrTranslation = errors.New("translation error")
	// ErrParse marks malformed output from an external tool.
	ErrParse = errors.New("parse error")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later status classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// HTTPStatus maps a pipeline error to the response status the HTTP layer
// should send: caller defects get 400, unknown resources 404, everything
// else is an internal failure.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUpload), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Label returns the short error label used in {error, detail} response
// bodies. The detail string is diagnostic text, never machine-parseable.
func Label(err error) string {
	switch {
	case errors.Is(err, ErrUpload):
		return "invalid upload"
	case errors.Is(err, ErrValidation):
		return "invalid request"
	case errors.Is(err, ErrNotFound):
		return "not found"
	case errors.Is(err, ErrEncoderUnavailable):
		return "encoder unavailable"
	case errors.Is(err, ErrTimeout):
		return "processing timeout"
	case errors.Is(err, ErrTranslation):
		return "translation failed"
	default:
		return "processing failed"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
