package server

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"legenda/internal/caption"
	"legenda/internal/services"
	"legenda/internal/services/whisper"
	"legenda/internal/subtitle"
	"legenda/internal/transcript"
)

// multipartMemoryLimit bounds how much of a parsed form stays in memory;
// larger parts spill to temporary files.
const multipartMemoryLimit = 32 << 20

// transcribeRequest is the typed form of a transcription upload. Parsing is
// completed before any business logic runs.
type transcribeRequest struct {
	File      multipart.File
	Filename  string
	MediaType string
	Guidance  *whisper.Guidance

	request *http.Request
}

func (r *transcribeRequest) close() {
	if r.File != nil {
		_ = r.File.Close()
	}
	if r.request != nil && r.request.MultipartForm != nil {
		_ = r.request.MultipartForm.RemoveAll()
	}
}

func parseTranscribeRequest(r *http.Request, maxBytes int64) (*transcribeRequest, error) {
	if err := parseMultipart(r, maxBytes); err != nil {
		return nil, err
	}

	file, header, err := formFile(r, "file")
	if err != nil {
		return nil, err
	}

	req := &transcribeRequest{
		File:      file,
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Guidance:  guidanceFromForm(r),
		request:   r,
	}
	return req, nil
}

// videoRequest is the typed form of a video captioning upload.
type videoRequest struct {
	File      multipart.File
	Filename  string
	MediaType string
	Guidance  *whisper.Guidance

	Hardcoded bool
	Format    subtitle.Format
	Style     caption.Style
	Language  string

	request *http.Request
}

func (r *videoRequest) close() {
	if r.File != nil {
		_ = r.File.Close()
	}
	if r.request != nil && r.request.MultipartForm != nil {
		_ = r.request.MultipartForm.RemoveAll()
	}
}

func parseVideoRequest(r *http.Request, maxBytes int64) (*videoRequest, error) {
	if err := parseMultipart(r, maxBytes); err != nil {
		return nil, err
	}

	file, header, err := formFile(r, "video", "file")
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()

	format, err := subtitle.ParseFormat(query.Get("format"))
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	req := &videoRequest{
		File:      file,
		Filename:  header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Guidance:  guidanceFromForm(r),
		Hardcoded: parseBoolDefault(query.Get("hardcoded"), true),
		Format:    format,
		Language:  strings.TrimSpace(query.Get("language")),
		request:   r,
	}
	if req.Language != "" {
		if req.Guidance == nil {
			req.Guidance = &whisper.Guidance{}
		}
		req.Guidance.Language = req.Language
	}

	style := caption.Style{
		FontName:        strings.TrimSpace(query.Get("fontName")),
		FontColor:       strings.TrimSpace(query.Get("fontColor")),
		BackgroundColor: strings.TrimSpace(query.Get("backgroundColor")),
		BorderColor:     strings.TrimSpace(query.Get("borderColor")),
	}
	if style.FontSize, err = parseIntParam(query.Get("fontSize"), "fontSize"); err != nil {
		_ = file.Close()
		return nil, err
	}
	if style.BorderWidth, err = parseIntParam(query.Get("borderWidth"), "borderWidth"); err != nil {
		_ = file.Close()
		return nil, err
	}
	if style.MarginVertical, err = parseIntParam(query.Get("marginVertical"), "marginVertical"); err != nil {
		_ = file.Close()
		return nil, err
	}
	req.Style = style

	return req, nil
}

// translateRequest mirrors the JSON translation body.
type translateRequest struct {
	Transcription  transcript.Transcript `json:"transcription"`
	TargetLanguage string                `json:"targetLanguage"`
	SourceLanguage string                `json:"sourceLanguage"`
}

func parseTranslateRequest(r *http.Request) (*translateRequest, error) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, services.Wrap(services.ErrValidation, "server", "decode request", "request body is not valid JSON", err)
	}
	if strings.TrimSpace(req.Transcription.Text) == "" {
		return nil, services.Wrap(services.ErrValidation, "server", "validate request", "transcription is required", nil)
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return nil, services.Wrap(services.ErrValidation, "server", "validate request", "targetLanguage is required", nil)
	}
	return &req, nil
}

func parseMultipart(r *http.Request, maxBytes int64) error {
	// The ceiling covers the whole request body; multipart framing overhead
	// rides inside the same bound plus a small allowance.
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return services.Wrap(services.ErrUpload, "server", "parse multipart", "invalid multipart body", err)
	}
	return nil
}

// formFile returns the first populated file field among names.
func formFile(r *http.Request, names ...string) (multipart.File, *multipart.FileHeader, error) {
	for _, name := range names {
		file, header, err := r.FormFile(name)
		if err == nil {
			return file, header, nil
		}
	}
	return nil, nil, services.Wrap(services.ErrUpload, "server", "read form",
		fmt.Sprintf("missing file field %q", names[0]), nil)
}

// guidanceFromForm lifts the optional guidance fields out of the form. A form
// with none of them yields nil.
func guidanceFromForm(r *http.Request) *whisper.Guidance {
	g := whisper.Guidance{
		Prompt:   strings.TrimSpace(r.FormValue("prompt")),
		Topic:    strings.TrimSpace(r.FormValue("topic")),
		Speaker:  strings.TrimSpace(r.FormValue("speaker")),
		Language: strings.TrimSpace(r.FormValue("language")),
	}
	if vocab := strings.TrimSpace(r.FormValue("vocabulary")); vocab != "" {
		for _, term := range strings.Split(vocab, ",") {
			if trimmed := strings.TrimSpace(term); trimmed != "" {
				g.Vocabulary = append(g.Vocabulary, trimmed)
			}
		}
	}
	if g.Prompt == "" && g.Topic == "" && g.Speaker == "" && g.Language == "" && len(g.Vocabulary) == 0 {
		return nil
	}
	return &g
}

func parseBoolDefault(value string, def bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseIntParam(value, name string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, services.Wrap(services.ErrValidation, "server", "parse query",
			fmt.Sprintf("%s must be a non-negative integer", name), err)
	}
	return parsed, nil
}
