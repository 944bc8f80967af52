package transcribe

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"log/slog"

	"github.com/google/uuid"

	"legenda/internal/logging"
	"legenda/internal/services/whisper"
	"legenda/internal/transcript"
	"legenda/internal/upload"
)

// Orchestrator ties upload materialization to the speech engine and owns the
// lifetime of every intermediate file a transcription produces.
type Orchestrator struct {
	materializer *upload.Materializer
	client       *whisper.Client
	scratchDir   string
	logger       *slog.Logger
}

// NewOrchestrator constructs a transcription orchestrator. scratchDir hosts
// the per-request whisper output directories.
func NewOrchestrator(materializer *upload.Materializer, client *whisper.Client, scratchDir string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		materializer: materializer,
		client:       client,
		scratchDir:   scratchDir,
		logger:       logging.WithComponent(logger, "transcribe"),
	}
}

// TranscribeUpload materializes the stream, transcribes it, and cleans up the
// scratch file and engine output directory on every path.
func (o *Orchestrator) TranscribeUpload(ctx context.Context, r io.Reader, filename, mediaType string, guidance *whisper.Guidance) (*transcript.Transcript, error) {
	scratch, err := o.materializer.Materialize(r, filename, mediaType)
	if err != nil {
		return nil, err
	}
	defer scratch.Release()

	return o.Transcribe(ctx, scratch.Path, guidance)
}

// Transcribe runs the speech engine against a file already on disk. The
// caller keeps ownership of mediaPath; only the engine output directory is
// created and removed here.
func (o *Orchestrator) Transcribe(ctx context.Context, mediaPath string, guidance *whisper.Guidance) (*transcript.Transcript, error) {
	outDir := filepath.Join(o.scratchDir, fmt.Sprintf("whisper-out-%s", uuid.NewString()))
	defer func() {
		if err := os.RemoveAll(outDir); err != nil {
			o.logger.Warn("engine output cleanup failed",
				logging.String("dir", outDir), logging.Error(err))
		}
	}()

	result, err := o.client.Transcribe(ctx, mediaPath, outDir, guidance)
	if err != nil {
		return nil, err
	}
	return result, nil
}
