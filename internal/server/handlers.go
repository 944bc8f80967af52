package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"legenda/internal/deps"
	"legenda/internal/jobs"
	"legenda/internal/logging"
	"legenda/internal/services"
	"legenda/internal/subtitle"
	"legenda/internal/translate"
)

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseTranscribeRequest(r, s.cfg.Upload.MaxBytes)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	defer req.close()

	jobID := s.jobBegin(r.Context(), jobs.KindTranscribe, req.Filename)

	result, err := s.transcriber.TranscribeUpload(r.Context(), req.File, req.Filename, req.MediaType, req.Guidance)
	s.jobFinish(r.Context(), jobID, err)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTranscribeVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseVideoRequest(r, s.cfg.Upload.MaxBytes)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	defer req.close()

	jobID := s.jobBegin(r.Context(), jobs.KindCaption, req.Filename)

	outputPath, err := s.captionVideo(r, req)
	s.jobFinish(r.Context(), jobID, err)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	defer func() {
		if removeErr := os.Remove(outputPath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.logger.Warn("output cleanup failed",
				logging.String("path", outputPath), logging.Error(removeErr))
		}
	}()

	s.streamVideo(w, r, outputPath, req.Filename)
}

// captionVideo runs the full video pipeline: materialize, transcribe,
// synthesize subtitles, then burn or mux. Intermediate files are removed on
// every path; the returned output file is the handler's to delete after
// streaming.
func (s *Server) captionVideo(r *http.Request, req *videoRequest) (string, error) {
	ctx := r.Context()

	scratch, err := s.materializer.Materialize(req.File, req.Filename, req.MediaType)
	if err != nil {
		return "", err
	}
	defer scratch.Release()

	transcriptResult, err := s.transcriber.Transcribe(ctx, scratch.Path, req.Guidance)
	if err != nil {
		return "", err
	}

	subtitlePath := strings.TrimSuffix(scratch.Path, filepath.Ext(scratch.Path)) + req.Format.Extension()
	if err := subtitle.WriteFile(subtitlePath, transcriptResult.Segments, req.Format); err != nil {
		return "", err
	}
	defer func() {
		if removeErr := os.Remove(subtitlePath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.logger.Warn("subtitle cleanup failed",
				logging.String("path", subtitlePath), logging.Error(removeErr))
		}
	}()

	if req.Hardcoded {
		return s.captioner.BurnIn(ctx, scratch.Path, subtitlePath, req.Style)
	}

	language := req.Language
	if language == "" {
		language = transcriptResult.Language
	}
	return s.captioner.SoftMux(ctx, scratch.Path, subtitlePath, language)
}

func (s *Server) streamVideo(w http.ResponseWriter, r *http.Request, outputPath, uploadName string) {
	file, err := os.Open(outputPath)
	if err != nil {
		s.writeFailure(w, r, services.Wrap(services.ErrMissingArtifact, "server", "open output", outputPath, err))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		s.writeFailure(w, r, services.Wrap(services.ErrMissingArtifact, "server", "stat output", outputPath, err))
		return
	}

	base := strings.TrimSuffix(filepath.Base(uploadName), filepath.Ext(uploadName))
	if base == "" {
		base = "video"
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"-captioned.mp4"))
	if _, err := io.Copy(w, file); err != nil {
		s.logger.Warn("video stream interrupted", logging.Error(err))
	}
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseTranslateRequest(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	jobID := s.jobBegin(r.Context(), jobs.KindTranslate, "")

	result, err := s.translator.Translate(r.Context(), &req.Transcription, req.TargetLanguage, req.SourceLanguage)
	s.jobFinish(r.Context(), jobID, err)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"languages": translate.SupportedLanguages(),
	})
}

type statusResponse struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	JournalPath  string        `json:"journalPath,omitempty"`
	Dependencies []deps.Status `json:"dependencies"`
	Jobs         map[string]int `json:"jobs,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload := statusResponse{
		Running:      true,
		PID:          os.Getpid(),
		Dependencies: deps.CheckBinaries(deps.Requirements(s.cfg)),
	}
	if s.journal != nil {
		payload.JournalPath = s.cfg.Paths.JournalPath
		if counts, err := s.journal.Counts(r.Context()); err == nil {
			payload.Jobs = counts
		} else {
			s.logger.Warn("job counts failed", logging.Error(err))
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.journal == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"jobs": []jobs.Job{}})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	listed, err := s.journal.List(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": listed})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	if s.journal == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job, err := s.journal.Get(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}
