package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"legenda/internal/logging"
	"legenda/internal/services"
)

// ScratchFile is a materialized upload owned by a single request. It must be
// released on every path once the request finishes with it.
type ScratchFile struct {
	Path      string
	MediaType string
	Size      int64

	logger *slog.Logger
}

// Materializer persists incoming upload streams into uniquely named scratch
// files so concurrent requests never collide.
type Materializer struct {
	scratchDir string
	maxBytes   int64
	logger     *slog.Logger
}

// NewMaterializer constructs a Materializer writing into scratchDir with the
// given per-upload size ceiling.
func NewMaterializer(scratchDir string, maxBytes int64, logger *slog.Logger) *Materializer {
	return &Materializer{
		scratchDir: scratchDir,
		maxBytes:   maxBytes,
		logger:     logging.WithComponent(logger, "upload"),
	}
}

// Materialize reads the stream fully, bounded by the configured ceiling, and
// writes it to a scratch file. Zero-byte streams are rejected before any
// filesystem write. The stored extension comes from the declared filename,
// falling back to a media-type mapping.
func (m *Materializer) Materialize(r io.Reader, filename, mediaType string) (*ScratchFile, error) {
	if r == nil {
		return nil, services.Wrap(services.ErrUpload, "upload", "materialize", "no file provided", nil)
	}

	data, err := io.ReadAll(io.LimitReader(r, m.maxBytes+1))
	if err != nil {
		return nil, services.Wrap(services.ErrUpload, "upload", "read stream", "reading upload failed", err)
	}
	if int64(len(data)) > m.maxBytes {
		return nil, services.Wrap(services.ErrUpload, "upload", "read stream",
			fmt.Sprintf("upload exceeds %d byte limit", m.maxBytes), nil)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrUpload, "upload", "read stream", "uploaded file is empty", nil)
	}

	if err := os.MkdirAll(m.scratchDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "ensure scratch dir", m.scratchDir, err)
	}

	name := scratchName(filename, mediaType)
	path := filepath.Join(m.scratchDir, fmt.Sprintf("upload-%s-%s", uuid.NewString(), name))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, services.Wrap(services.ErrUpload, "upload", "write scratch file", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, services.Wrap(services.ErrUpload, "upload", "verify scratch file", path, err)
	}
	if info.Size() != int64(len(data)) {
		_ = os.Remove(path)
		return nil, services.Wrap(services.ErrUpload, "upload", "verify scratch file",
			fmt.Sprintf("size mismatch: wrote %d bytes, found %d", len(data), info.Size()), nil)
	}

	m.logger.Debug("upload materialized",
		logging.String("path", path),
		logging.Int64("bytes", info.Size()))

	return &ScratchFile{Path: path, MediaType: mediaType, Size: info.Size(), logger: m.logger}, nil
}

// Release deletes the scratch file. It is idempotent: a missing file is
// logged and swallowed, never surfaced.
func (f *ScratchFile) Release() {
	if f == nil || f.Path == "" {
		return
	}
	err := os.Remove(f.Path)
	switch {
	case err == nil:
		if f.logger != nil {
			f.logger.Debug("scratch file removed", logging.String("path", f.Path))
		}
	case os.IsNotExist(err):
		if f.logger != nil {
			f.logger.Debug("scratch file already gone", logging.String("path", f.Path))
		}
	default:
		if f.logger != nil {
			f.logger.Warn("scratch file removal failed",
				logging.String("path", f.Path), logging.Error(err))
		}
	}
}

// scratchName picks the stored filename, appending an extension derived from
// the media type when the declared name has none.
func scratchName(filename, mediaType string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "audio"
	}
	if filepath.Ext(name) == "" {
		name += extensionForMediaType(mediaType)
	}
	return name
}

// extensionForMediaType maps declared media types to file extensions. The
// .wav default is a safe choice most decoders tolerate.
func extensionForMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	switch {
	case strings.Contains(mt, "mpeg"), strings.Contains(mt, "mp3"):
		return ".mp3"
	case strings.Contains(mt, "ogg"):
		return ".ogg"
	case strings.Contains(mt, "m4a"):
		return ".m4a"
	case strings.Contains(mt, "webm"):
		return ".webm"
	case strings.Contains(mt, "mp4"):
		return ".mp4"
	default:
		return ".wav"
	}
}
