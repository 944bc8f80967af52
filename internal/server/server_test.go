package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"legenda/internal/caption"
	"legenda/internal/config"
	"legenda/internal/jobs"
	"legenda/internal/logging"
	"legenda/internal/procexec"
	"legenda/internal/services/llm"
	"legenda/internal/services/whisper"
	"legenda/internal/transcribe"
	"legenda/internal/translate"
	"legenda/internal/upload"
)

const engineScript = `#!/bin/sh
input=$1
shift
outdir=""
while [ $# -gt 0 ]; do
  [ "$1" = "--output_dir" ] && outdir=$2
  shift
done
base=$(basename "$input")
base=${base%.*}
printf '%s' '{"text":"hello world","language":"en","segments":[{"id":0,"start":0,"end":1.5,"text":"hello"},{"id":1,"start":1.5,"end":3,"text":"world"}]}' > "$outdir/$base.json"
`

const encoderScript = `#!/bin/sh
if [ "$1" = "-version" ]; then
  echo "ffmpeg version 7.0"
  exit 0
fi
for out; do :; done
printf 'encoded-video' > "$out"
`

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestServer assembles a Server over fake external binaries and a fake
// remote translation endpoint.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	llmBackend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		text := payload.Messages[len(payload.Messages)-1].Content
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": "[pt] " + text}}},
		})
	}))
	t.Cleanup(llmBackend.Close)

	defaults := config.Default()
	cfg := &defaults
	cfg.Paths.ScratchDir = t.TempDir()
	cfg.Paths.JournalPath = filepath.Join(t.TempDir(), "journal.db")
	cfg.Whisper.Binary = writeScript(t, "whisper.sh", engineScript)
	cfg.FFmpeg.Binary = writeScript(t, "ffmpeg.sh", encoderScript)

	logger := logging.NewNop()
	runner := procexec.NewRunner(logger)
	materializer := upload.NewMaterializer(cfg.Paths.ScratchDir, cfg.Upload.MaxBytes, logger)
	client := whisper.NewClient(whisper.Config{
		Binary:  cfg.Whisper.Binary,
		Model:   cfg.Whisper.Model,
		Timeout: time.Minute,
	}, runner, logger)
	transcriber := transcribe.NewOrchestrator(materializer, client, cfg.Paths.ScratchDir, logger)
	captioner := caption.NewCaptioner(caption.Config{
		Binary:  cfg.FFmpeg.Binary,
		Preset:  cfg.FFmpeg.Preset,
		CRF:     cfg.FFmpeg.CRF,
		Timeout: time.Minute,
	}, runner, cfg.Paths.ScratchDir, logger)
	translator := translate.NewTranslator(
		llm.NewClient(llm.Config{APIKey: "test", BaseURL: llmBackend.URL, Model: "demo"}),
		time.Minute, 0, logger)

	journal, err := jobs.Open(cfg.Paths.JournalPath)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = journal.Close() })

	srv, err := New(Deps{
		Config:       cfg,
		Logger:       logger,
		Materializer: materializer,
		Transcriber:  transcriber,
		Captioner:    captioner,
		Translator:   translator,
		Journal:      journal,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func multipartBody(t *testing.T, field, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, writer.FormDataContentType()
}

func TestTranscribeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, "file", "talk.wav", []byte("riff-data"), map[string]string{
		"prompt": "conference recording",
		"topic":  "Go",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			ID   int     `json:"id"`
			End  float64 `json:"end"`
			Text string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Text != "hello world" || payload.Language != "en" || len(payload.Segments) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Segments[1].Text != "world" || payload.Segments[1].End != 3 {
		t.Fatalf("unexpected segment %+v", payload.Segments[1])
	}
}

func TestTranscribeEndpointRejectsMissingFile(t *testing.T) {
	srv := newTestServer(t)
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("prompt", "no file here")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["error"] != "invalid upload" {
		t.Fatalf("unexpected error label %q", payload["error"])
	}
}

func TestTranscribeEndpointMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/transcribe", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestTranscribeVideoEndpoint(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, "video", "movie.mp4", []byte("mdat"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe/video?fontSize=24", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("content type %q", got)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, "movie-captioned.mp4") {
		t.Fatalf("disposition %q", disposition)
	}
	data, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "encoded-video" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestTranscribeVideoSoftMux(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, "video", "movie.mp4", []byte("mdat"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe/video?hardcoded=false&format=vtt&language=pt", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTranscribeVideoRejectsBadFormat(t *testing.T) {
	srv := newTestServer(t)
	body, contentType := multipartBody(t, "video", "movie.mp4", []byte("mdat"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe/video?format=ass", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTranslateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	payload := map[string]any{
		"transcription": map[string]any{
			"text": "hello world",
			"segments": []any{
				map[string]any{"id": 0, "start": 0, "end": 1.5, "text": "hello"},
				map[string]any{"id": 1, "start": 1.5, "end": 3, "text": "world"},
			},
		},
		"targetLanguage": "pt",
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/translate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var result translate.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.TranslatedText != "[pt] hello world" || len(result.Segments) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.SourceLanguage != "auto" {
		t.Fatalf("source language %q", result.SourceLanguage)
	}
}

func TestTranslateEndpointValidation(t *testing.T) {
	srv := newTestServer(t)
	body := []byte(`{"transcription":{"text":"hi"}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/translate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/translate/languages", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var payload struct {
		Languages []struct {
			Code string `json:"code"`
			Name string `json:"name"`
		} `json:"languages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Languages) == 0 || payload.Languages[0].Code != "pt" {
		t.Fatalf("unexpected languages %+v", payload.Languages)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var payload statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if !payload.Running || len(payload.Dependencies) == 0 {
		t.Fatalf("unexpected status %+v", payload)
	}
}

func TestJobsEndpointRecordsPipelines(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, "file", "talk.wav", []byte("riff"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	listReq := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, listReq)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var payload struct {
		Jobs []jobs.Job `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(payload.Jobs))
	}
	job := payload.Jobs[0]
	if job.Kind != jobs.KindTranscribe || job.Status != jobs.StatusCompleted || job.Filename != "talk.wav" {
		t.Fatalf("unexpected job %+v", job)
	}

	itemReq := httptest.NewRequest(http.MethodGet, "/api/jobs/1", nil)
	itemRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(itemRec, itemReq)
	if itemRec.Code != http.StatusOK {
		t.Fatalf("job lookup status %d", itemRec.Code)
	}

	missingReq := httptest.NewRequest(http.MethodGet, "/api/jobs/999", nil)
	missingRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(missingRec, missingReq)
	if missingRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown job, got %d", missingRec.Code)
	}
}

func TestScratchDirEmptyAfterRequests(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, "file", "talk.wav", []byte("riff"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	srv.Handler().ServeHTTP(httptest.NewRecorder(), req)

	entries, err := os.ReadDir(srv.cfg.Paths.ScratchDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch dir must be empty after request, found %d entries", len(entries))
	}
}
