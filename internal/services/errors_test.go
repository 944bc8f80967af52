package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"legenda/internal/services"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrProcessExit, "transcribe", "run whisper", "whisper failed", base)
	if !errors.Is(err, services.ErrProcessExit) {
		t.Fatal("marker lost")
	}
	if !errors.Is(err, base) {
		t.Fatal("cause lost")
	}
	if !strings.Contains(err.Error(), "transcribe: run whisper") {
		t.Fatalf("detail missing: %v", err)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.Wrap(services.ErrUpload, "upload", "read", "empty file", nil), http.StatusBadRequest},
		{services.Wrap(services.ErrValidation, "server", "parse", "missing field", nil), http.StatusBadRequest},
		{services.Wrap(services.ErrNotFound, "jobs", "get", "no such job", nil), http.StatusNotFound},
		{services.Wrap(services.ErrTimeout, "procexec", "wait", "deadline", nil), http.StatusInternalServerError},
		{services.Wrap(services.ErrSpawn, "procexec", "start", "no binary", nil), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := services.HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := services.Label(services.Wrap(services.ErrEncoderUnavailable, "caption", "preflight", "ffmpeg missing", nil)); got != "encoder unavailable" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := services.Label(errors.New("anything")); got != "processing failed" {
		t.Fatalf("unexpected default label %q", got)
	}
}
