package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	job := New("scene.json", DefaultTTL)

	if job.ID == "" {
		t.Error("ID should be set")
	}
	if job.Status != StatusPending {
		t.Errorf("Status = %s, want %s", job.Status, StatusPending)
	}
	if job.Source != "scene.json" {
		t.Errorf("Source = %q, want scene.json", job.Source)
	}
	if job.IsExpired() {
		t.Error("Fresh job should not be expired")
	}

	other := New("scene.json", DefaultTTL)
	if other.ID == job.ID {
		t.Error("IDs should be unique")
	}
}

func TestJobTransitions(t *testing.T) {
	job := New("", DefaultTTL)

	job.Start()
	if job.Status != StatusRunning {
		t.Errorf("Status = %s, want %s", job.Status, StatusRunning)
	}

	job.Complete("png", []byte("data"), "image/png")
	if job.Status != StatusDone {
		t.Errorf("Status = %s, want %s", job.Status, StatusDone)
	}
	if job.Format != "png" || string(job.Artifact) != "data" || job.ArtifactType != "image/png" {
		t.Errorf("artifact fields not set: %+v", job)
	}
	if job.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set")
	}

	failed := New("", DefaultTTL)
	failed.Fail(errors.New("browser exploded"))
	if failed.Status != StatusFailed {
		t.Errorf("Status = %s, want %s", failed.Status, StatusFailed)
	}
	if failed.Error != "browser exploded" {
		t.Errorf("Error = %q", failed.Error)
	}
}

func TestJobClone(t *testing.T) {
	job := New("", DefaultTTL)
	job.Complete("png", []byte{1, 2, 3}, "image/png")

	clone := job.Clone()
	clone.Artifact[0] = 9
	clone.Status = StatusFailed

	if job.Artifact[0] != 1 {
		t.Error("Clone should not share artifact bytes")
	}
	if job.Status != StatusDone {
		t.Error("Clone should not share status")
	}
}

func TestJobSummary(t *testing.T) {
	job := New("", DefaultTTL)
	job.Complete("svg", []byte("<svg/>"), "image/svg+xml")

	summary := job.Summary()
	if summary.Artifact != nil {
		t.Error("Summary should strip the artifact")
	}
	if summary.ArtifactType != "image/svg+xml" {
		t.Error("Summary should keep the artifact type")
	}
	if job.Artifact == nil {
		t.Error("Summary should not mutate the original")
	}
}

// testStore exercises the Store contract shared by every backend.
func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Missing job
	if _, err := store.Get(ctx, "no-such-job"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}

	// Round trip
	job := New("scene.json", DefaultTTL)
	job.Complete("png", []byte{0x89, 0x50}, "image/png")
	job.DocumentHash = "abc123"
	job.ElementCount = 4
	if err := store.Set(ctx, job); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != StatusDone || got.DocumentHash != "abc123" || got.ElementCount != 4 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Artifact) != 2 || got.Artifact[0] != 0x89 {
		t.Errorf("round trip lost artifact: %v", got.Artifact)
	}

	// Updating an existing job replaces it
	got.Fail(errors.New("retry"))
	if err := store.Set(ctx, got); err != nil {
		t.Fatalf("Set update failed: %v", err)
	}
	updated, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get updated failed: %v", err)
	}
	if updated.Status != StatusFailed {
		t.Errorf("Status = %s, want %s", updated.Status, StatusFailed)
	}

	// Expired job behaves like a missing one
	expired := New("old.json", DefaultTTL)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, expired); err != nil {
		t.Fatalf("Set expired failed: %v", err)
	}
	if _, err := store.Get(ctx, expired.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get expired = %v, want ErrNotFound", err)
	}

	// List: newest first, expired excluded, limit respected
	now := time.Now()
	for i := 0; i < 3; i++ {
		j := New("batch.json", DefaultTTL)
		j.CreatedAt = now.Add(time.Duration(i) * time.Minute)
		if err := store.Set(ctx, j); err != nil {
			t.Fatalf("Set batch failed: %v", err)
		}
	}
	listed, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, j := range listed {
		if j.ID == expired.ID {
			t.Error("List should exclude expired jobs")
		}
	}
	for i := 1; i < len(listed); i++ {
		if listed[i].CreatedAt.After(listed[i-1].CreatedAt) {
			t.Error("List should be newest first")
		}
	}
	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List limit = %d entries, want 2", len(limited))
	}

	// Delete
	if err := store.Delete(ctx, job.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, job.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get deleted = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "no-such-job"); err != nil {
		t.Errorf("Delete missing should not fail: %v", err)
	}

	// Cleanup drops expired records
	stale := New("stale.json", DefaultTTL)
	stale.ExpiresAt = time.Now().Add(-time.Hour)
	if err := store.Set(ctx, stale); err != nil {
		t.Fatalf("Set stale failed: %v", err)
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := store.Get(ctx, stale.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after cleanup = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testStore(t, store)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	testStore(t, store)
}

func TestFileStorePathSafety(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	for _, id := range []string{"", "../escape", "a/b"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) = %v, want ErrNotFound", id, err)
		}
		if err := store.Delete(ctx, id); err != nil {
			t.Errorf("Delete(%q) should be a no-op: %v", id, err)
		}
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	job := New("scene.json", DefaultTTL)
	job.Complete("png", []byte{1}, "image/png")
	if err := store.Set(ctx, job); err != nil {
		t.Fatal(err)
	}

	// Mutating either side after Set/Get must not leak through.
	job.Artifact[0] = 9
	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Artifact[0] != 1 {
		t.Error("Set should store a copy")
	}

	got.Artifact[0] = 7
	again, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Artifact[0] != 1 {
		t.Error("Get should return a copy")
	}
}
