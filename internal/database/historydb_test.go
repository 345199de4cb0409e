package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/footprint/internal/model"
)

func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func newTestBatch(subject string, kind model.SubjectKind, startedAt time.Time) (*model.Batch, model.BatchStatistics) {
	b := model.NewBatch(subject, kind, 2)
	b.StartedAt = startedAt
	b.FinishedAt = startedAt.Add(3 * time.Second)
	b.Status = model.StatusComplete
	b.Complete = true

	found := model.NewFound("https://github.com/"+subject, 200, 120, 512, "GitHub")
	missing := model.NewStatusNotFound("https://gitlab.com/"+subject, 404)
	b.Found = []model.Result{{
		Index:    0,
		Endpoint: model.EndpointDescriptor{Name: "GitHub", Category: "development", URLTemplate: "https://github.com/{}"},
		Outcome:  found,
	}}
	b.NotFound = []model.Result{{
		Index:    1,
		Endpoint: model.EndpointDescriptor{Name: "GitLab", Category: "development", URLTemplate: "https://gitlab.com/{}"},
		Outcome:  missing,
	}}
	b.PerEndpoint["GitHub"] = found
	b.PerEndpoint["GitLab"] = missing

	st := model.BatchStatistics{
		Total:              2,
		FoundCount:         1,
		NotFoundCount:      1,
		SuccessRatePct:     50,
		CategoryBreakdown:  map[string]int{"development": 1},
		CategoryOrder:      []string{"development"},
		MostCommonCategory: "development",
		Recommendations:    []string{"Found 1 potential profiles across 1 categories"},
	}
	return b, st
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "data")
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(db.Path()); err != nil {
			t.Errorf("database file not created: %v", err)
		}
		if filepath.Base(db.Path()) != DBFileName {
			t.Errorf("Path() = %q, want file %q", db.Path(), DBFileName)
		}
	})

	t.Run("fails when missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		b, st := newTestBatch("alice", model.KindUsername, time.Now())
		if err := db.SaveBatch(context.Background(), b, st); err != nil {
			t.Fatalf("SaveBatch() error = %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("reopen error = %v", err)
		}
		defer db.Close()

		rec, err := db.GetBatch(context.Background(), b.ID.String())
		if err != nil {
			t.Fatalf("GetBatch() error = %v", err)
		}
		if rec == nil {
			t.Fatal("expected batch after reopen")
		}
	})
}

func TestSaveAndGetBatch(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	b, st := newTestBatch("alice", model.KindUsername, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err := db.SaveBatch(ctx, b, st); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}

	rec, err := db.GetBatch(ctx, b.ID.String())
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetBatch() returned nil")
	}

	got := rec.Batch
	if got.ID != b.ID {
		t.Errorf("ID = %v, want %v", got.ID, b.ID)
	}
	if got.Subject != "alice" || got.Kind != model.KindUsername {
		t.Errorf("subject/kind = %q/%q", got.Subject, got.Kind)
	}
	if got.Status != model.StatusComplete || !got.Complete {
		t.Errorf("status = %q complete = %v", got.Status, got.Complete)
	}
	if len(got.Found) != 1 || got.Found[0].Outcome.Title != "GitHub" {
		t.Errorf("Found = %+v", got.Found)
	}
	if len(got.NotFound) != 1 || got.NotFound[0].Outcome.StatusCode != 404 {
		t.Errorf("NotFound = %+v", got.NotFound)
	}
	if got.PerEndpoint["GitLab"].Kind != model.OutcomeNotFound {
		t.Errorf("PerEndpoint[GitLab] = %+v", got.PerEndpoint["GitLab"])
	}
	if !got.StartedAt.Equal(b.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, b.StartedAt)
	}
	if rec.Stats.SuccessRatePct != 50 || rec.Stats.MostCommonCategory != "development" {
		t.Errorf("Stats = %+v", rec.Stats)
	}
}

func TestGetBatchNotFound(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)

	rec, err := db.GetBatch(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestSaveBatchReplacesSameID(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	b, st := newTestBatch("bob", model.KindUsername, time.Now())
	b.Status = model.StatusCancelled
	b.Complete = true
	if err := db.SaveBatch(ctx, b, st); err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}

	b.Status = model.StatusComplete
	if err := db.SaveBatch(ctx, b, st); err != nil {
		t.Fatalf("second SaveBatch() error = %v", err)
	}

	history, err := db.History(ctx, "bob", "")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 row, got %d", len(history))
	}
	if history[0].Status != model.StatusComplete {
		t.Errorf("Status = %q, want complete", history[0].Status)
	}
}

func TestLatestBatchAndHistory(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older, st := newTestBatch("carol", model.KindUsername, base)
	newer, _ := newTestBatch("carol", model.KindUsername, base.Add(time.Hour))
	other, _ := newTestBatch("carol", model.KindSubdomain, base.Add(2*time.Hour))

	for _, b := range []*model.Batch{older, newer, other} {
		if err := db.SaveBatch(ctx, b, st); err != nil {
			t.Fatalf("SaveBatch() error = %v", err)
		}
	}

	t.Run("latest by kind", func(t *testing.T) {
		t.Parallel()

		rec, err := db.LatestBatch(ctx, "carol", model.KindUsername)
		if err != nil {
			t.Fatalf("LatestBatch() error = %v", err)
		}
		if rec == nil || rec.Batch.ID != newer.ID {
			t.Errorf("LatestBatch() = %+v, want batch %v", rec, newer.ID)
		}
	})

	t.Run("latest missing", func(t *testing.T) {
		t.Parallel()

		rec, err := db.LatestBatch(ctx, "carol", model.KindPhone)
		if err != nil {
			t.Fatalf("LatestBatch() error = %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil, got %+v", rec)
		}
	})

	t.Run("history all kinds newest first", func(t *testing.T) {
		t.Parallel()

		history, err := db.History(ctx, "carol", "")
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(history))
		}
		want := []string{other.ID.String(), newer.ID.String(), older.ID.String()}
		for i, id := range want {
			if history[i].ID != id {
				t.Errorf("history[%d].ID = %s, want %s", i, history[i].ID, id)
			}
		}
		if history[0].FoundCount != 1 || history[0].SuccessRatePct != 50 {
			t.Errorf("metadata = %+v", history[0])
		}
		if !history[2].StartedAt.Equal(base) {
			t.Errorf("StartedAt = %v, want %v", history[2].StartedAt, base)
		}
	})

	t.Run("history filtered by kind", func(t *testing.T) {
		t.Parallel()

		history, err := db.History(ctx, "carol", model.KindSubdomain)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(history) != 1 || history[0].Kind != model.KindSubdomain {
			t.Errorf("History() = %+v", history)
		}
	})
}

func TestListSubjectsAndDelete(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, subject := range []string{"dave", "dave", "erin"} {
		b, st := newTestBatch(subject, model.KindUsername, base.Add(time.Duration(i)*time.Minute))
		if err := db.SaveBatch(ctx, b, st); err != nil {
			t.Fatalf("SaveBatch() error = %v", err)
		}
	}

	subjects, err := db.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("ListSubjects() error = %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(subjects))
	}
	if subjects[0].Subject != "erin" || subjects[1].Subject != "dave" {
		t.Errorf("order = %q, %q", subjects[0].Subject, subjects[1].Subject)
	}
	if subjects[1].Batches != 2 {
		t.Errorf("dave batches = %d, want 2", subjects[1].Batches)
	}
	if !subjects[1].LastRun.Equal(base.Add(time.Minute)) {
		t.Errorf("dave LastRun = %v", subjects[1].LastRun)
	}

	n, err := db.DeleteSubject(ctx, "dave")
	if err != nil {
		t.Fatalf("DeleteSubject() error = %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d rows, want 2", n)
	}

	history, err := db.History(ctx, "dave", "")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d", len(history))
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "stored layout", input: "2026-01-02T03:04:05.000000000Z"},
		{name: "rfc3339", input: "2026-01-02T03:04:05Z"},
		{name: "sqlite datetime", input: "2026-01-02 03:04:05"},
		{name: "garbage", input: "yesterday", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero want %v", tt.input, got, tt.zero)
			}
		})
	}
}
