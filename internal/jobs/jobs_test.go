package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"legenda/internal/services"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestJobLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.Begin(ctx, KindTranscribe, "talk.wav")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	job, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusRunning || job.Kind != KindTranscribe || job.Filename != "talk.wav" {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.FinishedAt != nil {
		t.Fatal("running job must have no finish time")
	}

	if err := store.Complete(ctx, id); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	job, err = store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusCompleted || job.FinishedAt == nil {
		t.Fatalf("unexpected completed job %+v", job)
	}
}

func TestJobFailureKeepsDetail(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	id, err := store.Begin(ctx, KindCaption, "movie.mp4")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Fail(ctx, id, "encoder exited 1"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	job, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != StatusFailed || job.Detail != "encoder exited 1" {
		t.Fatalf("unexpected failed job %+v", job)
	}
}

func TestGetUnknownJob(t *testing.T) {
	store := openStore(t)
	_, err := store.Get(context.Background(), 999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.wav", "b.wav", "c.wav"} {
		if _, err := store.Begin(ctx, KindTranscribe, name); err != nil {
			t.Fatalf("Begin: %v", err)
		}
	}

	listed, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(listed))
	}
	if listed[0].Filename != "c.wav" || listed[1].Filename != "b.wav" {
		t.Fatalf("unexpected order %+v", listed)
	}
}

func TestCounts(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	a, _ := store.Begin(ctx, KindTranslate, "")
	b, _ := store.Begin(ctx, KindTranslate, "")
	if _, err := store.Begin(ctx, KindTranscribe, "x.wav"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_ = store.Complete(ctx, a)
	_ = store.Fail(ctx, b, "boom")

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[StatusRunning] != 1 || counts[StatusCompleted] != 1 || counts[StatusFailed] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}
