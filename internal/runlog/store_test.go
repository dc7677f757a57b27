package runlog

import (
	"context"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStartFinishRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "The Vanishing", false)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.RunID == "" || run.Status != StatusRunning {
		t.Fatalf("new run = %+v", run)
	}
	if run.StartedAt.IsZero() {
		t.Error("started_at not recorded")
	}

	if err := store.FinishRun(ctx, run.RunID, StatusCompleted, "/final/The_Vanishing.mp4", ""); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := store.Get(ctx, run.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusCompleted || got.FinalPath != "/final/The_Vanishing.mp4" {
		t.Errorf("finished run = %+v", got)
	}
	if got.FinishedAt.IsZero() {
		t.Error("finished_at not recorded")
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	err := store.FinishRun(context.Background(), "nope", StatusFailed, "", "x")
	if err == nil || !strings.Contains(err.Error(), "unknown run") {
		t.Fatalf("want unknown-run error, got %v", err)
	}
}

func TestStageEventsOrdered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "Heat", true)
	if err != nil {
		t.Fatal(err)
	}
	if !run.Offline {
		t.Error("offline flag not persisted")
	}

	messages := []struct {
		stage   int
		message string
		isError bool
	}{
		{1, "Using cached movie details and script", false},
		{2, "no cached data for scene 1", true},
		{5, "Video complete", false},
	}
	for _, m := range messages {
		if err := store.RecordStage(ctx, run.RunID, m.stage, m.message, m.isError); err != nil {
			t.Fatalf("RecordStage: %v", err)
		}
	}

	events, err := store.Stages(ctx, run.RunID)
	if err != nil {
		t.Fatalf("Stages: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	for i, event := range events {
		if event.Stage != messages[i].stage || event.Message != messages[i].message || event.IsError != messages[i].isError {
			t.Errorf("event %d = %+v, want %+v", i, event, messages[i])
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		if _, err := store.StartRun(ctx, name, false); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want limit respected", len(runs))
	}
	if runs[0].JobName != "Third" || runs[1].JobName != "Second" {
		t.Errorf("order = %s, %s; want newest first", runs[0].JobName, runs[1].JobName)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	run, err := store.StartRun(context.Background(), "Persisted", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.JobName != "Persisted" {
		t.Errorf("job name = %q", got.JobName)
	}
}
