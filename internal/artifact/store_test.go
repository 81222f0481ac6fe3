package artifact

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{
		ID:         "run-1",
		CreatedAt:  time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		Source:     "smith-depo.txt",
		TopicCount: 2,
		Invalid:    1,
		Fallback:   true,
		Topics: []topic.Topic{
			{Title: "Contract signing date", Page: 2, Line: 3, Confidence: 0.9, IsKeyIssue: true},
			{Title: "Warranty claim", Page: 5, Line: 1, Confidence: 0.75},
		},
	}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Source != run.Source || got.TopicCount != 2 || got.Invalid != 1 || !got.Fallback {
		t.Errorf("header = %+v", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
	if !reflect.DeepEqual(got.Topics, run.Topics) {
		t.Errorf("topics:\n got %+v\nwant %+v", got.Topics, run.Topics)
	}
}

func TestStoreDuplicateRunID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	run := Run{ID: "run-1", CreatedAt: time.Now()}
	if err := s.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRun(ctx, run); err == nil {
		t.Error("expected primary key violation")
	}
}

func TestStoreListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := Run{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := s.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("order = %q, %q", runs[0].ID, runs[1].ID)
	}
	// Headers only.
	if len(runs[0].Topics) != 0 {
		t.Errorf("list returned topics: %+v", runs[0].Topics)
	}
}

func TestStoreGetMissingRun(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetRun(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing run")
	}
}
