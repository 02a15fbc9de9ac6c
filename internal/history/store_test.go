package history_test

import (
	"context"
	"testing"

	"catscan/internal/history"
	"catscan/internal/testsupport"
)

func TestStartRunAssignsIdentifiers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	run, err := store.StartRun(ctx, 5)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected run id to be assigned")
	}
	if run.UUID == "" {
		t.Fatal("expected run uuid to be assigned")
	}
	if run.Total != 5 {
		t.Fatalf("unexpected total: %d", run.Total)
	}
	if run.Finished() {
		t.Fatal("new run must not be finished")
	}
}

func TestRecordResultUpdatesCounters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	run, err := store.StartRun(ctx, 3)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	results := []history.Result{
		{RunID: run.ID, ItemID: 0, Filename: "a.jpg", HasCat: true, DurationMillis: 120},
		{RunID: run.ID, ItemID: 1, Filename: "b.png", HasCat: false},
		{RunID: run.ID, ItemID: 2, Filename: "c.gif", HasCat: false, Failure: "timeout"},
	}
	for _, result := range results {
		if err := store.RecordResult(ctx, result); err != nil {
			t.Fatalf("RecordResult(%d): %v", result.ItemID, err)
		}
	}
	if err := store.FinishRun(ctx, run.ID, false); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected run to exist")
	}
	if fetched.Cats != 1 || fetched.Failures != 1 {
		t.Fatalf("unexpected counters: cats=%d failures=%d", fetched.Cats, fetched.Failures)
	}
	if !fetched.Finished() || fetched.Aborted {
		t.Fatalf("expected clean finish, got %+v", fetched)
	}

	stored, err := store.ListResults(ctx, run.ID)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 results, got %d", len(stored))
	}
	for i, result := range stored {
		if result.ItemID != i {
			t.Fatalf("results out of item order: %+v", stored)
		}
	}
	if !stored[0].HasCat || stored[2].Failure != "timeout" {
		t.Fatalf("unexpected stored results: %+v", stored)
	}
}

func TestFinishRunAborted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	run, err := store.StartRun(ctx, 10)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := store.FinishRun(ctx, run.ID, true); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	fetched, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !fetched.Aborted {
		t.Fatal("expected aborted flag")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		run, err := store.StartRun(ctx, i)
		if err != nil {
			t.Fatalf("StartRun: %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit respected, got %d runs", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("expected newest first, got %+v", runs)
	}

	count, err := store.RunCount(ctx)
	if err != nil {
		t.Fatalf("RunCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 runs recorded, got %d", count)
	}
}

func TestGetRunMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	run, err := store.GetRun(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil for missing run, got %+v", run)
	}
}
