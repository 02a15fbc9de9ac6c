package batch_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"catscan/internal/batch"
	"catscan/internal/detector"
	"catscan/internal/samples"
	"catscan/internal/testsupport"
)

type stubInvoker struct {
	verdicts map[string]bool
	calls    []string
}

func (s *stubInvoker) Detect(ctx context.Context, itemID int, imagePath string) detector.Outcome {
	s.calls = append(s.calls, filepath.Base(imagePath))
	return detector.Outcome{ItemID: itemID, HasCat: s.verdicts[filepath.Base(imagePath)]}
}

type failingInvoker struct{ calls int }

func (f *failingInvoker) Detect(ctx context.Context, itemID int, imagePath string) detector.Outcome {
	f.calls++
	return detector.Outcome{ItemID: itemID, HasCat: false, Failure: "timeout"}
}

func collectSink(events *[]batch.Event) batch.Sink {
	return batch.SinkFunc(func(evt batch.Event) error {
		*events = append(*events, evt)
		return nil
	})
}

func TestRunEmitsStrictSequence(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSamples("a.jpg", "b.png", "notes.txt"))

	items, err := samples.List(cfg.Paths.SamplesDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected txt excluded, got %d items", len(items))
	}

	invoker := &stubInvoker{verdicts: map[string]bool{"a.jpg": true, "b.png": false}}
	runner := batch.New(cfg, invoker, nil)

	var events []batch.Event
	if err := runner.Run(context.Background(), items, collectSink(&events)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []batch.Event{
		batch.Processing(0),
		batch.Result(0, true),
		batch.Processing(1),
		batch.Result(1, false),
		batch.Done(),
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(events), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: got %+v want %+v", i, events[i], want[i])
		}
	}
	if len(invoker.calls) != 2 {
		t.Fatalf("expected 2 invocations, got %d", len(invoker.calls))
	}
}

func TestRunEmptyBatchYieldsOnlyDone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := batch.New(cfg, &stubInvoker{}, nil)

	var events []batch.Event
	if err := runner.Run(context.Background(), nil, collectSink(&events)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events) != 1 || events[0].Type != batch.EventDone {
		t.Fatalf("expected single done event, got %v", events)
	}
}

func TestRunFailuresStillReachDone(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSamples("a.jpg", "b.jpg", "c.jpg"))
	items, err := samples.List(cfg.Paths.SamplesDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	invoker := &failingInvoker{}
	runner := batch.New(cfg, invoker, nil)

	var events []batch.Event
	if err := runner.Run(context.Background(), items, collectSink(&events)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(events) != 2*len(items)+1 {
		t.Fatalf("expected %d events, got %d", 2*len(items)+1, len(events))
	}
	for _, evt := range events {
		if evt.Type == batch.EventResult && evt.HasCat {
			t.Fatalf("failed invocations must report has_cat=false: %+v", evt)
		}
	}
	if events[len(events)-1].Type != batch.EventDone {
		t.Fatal("run must terminate with done even when every item failed")
	}
}

func TestRunStopsWhenTransportCloses(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSamples("a.jpg", "b.jpg", "c.jpg"))
	items, err := samples.List(cfg.Paths.SamplesDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	invoker := &failingInvoker{}
	runner := batch.New(cfg, invoker, nil)

	closed := errors.New("subscriber disconnected")
	var sent int
	sink := batch.SinkFunc(func(evt batch.Event) error {
		sent++
		if sent >= 2 {
			return closed
		}
		return nil
	})

	err = runner.Run(context.Background(), items, sink)
	if !errors.Is(err, closed) {
		t.Fatalf("expected transport error, got %v", err)
	}
	// Events 1-2 cover item 0; the sink dies on Result(0), so item 1 must
	// never be invoked.
	if invoker.calls != 1 {
		t.Fatalf("expected no invocations after transport closure, got %d", invoker.calls)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSamples("a.jpg", "b.jpg"))
	items, err := samples.List(cfg.Paths.SamplesDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	invoker := &stubInvoker{}
	runner := batch.New(cfg, invoker, nil)

	var events []batch.Event
	sink := batch.SinkFunc(func(evt batch.Event) error {
		events = append(events, evt)
		if evt.Type == batch.EventResult {
			cancel()
		}
		return nil
	})

	if err := runner.Run(ctx, items, sink); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(invoker.calls) != 1 {
		t.Fatalf("expected 1 invocation before cancellation, got %d", len(invoker.calls))
	}
}

func TestObserverSeesEveryOutcome(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSamples("a.jpg", "b.jpg"))
	items, err := samples.List(cfg.Paths.SamplesDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	runner := batch.New(cfg, &stubInvoker{verdicts: map[string]bool{"a.jpg": true}}, nil)
	var seen []string
	runner.Observe(func(item samples.Item, outcome detector.Outcome) {
		seen = append(seen, item.Filename)
	})

	var events []batch.Event
	if err := runner.Run(context.Background(), items, collectSink(&events)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 || seen[0] != "a.jpg" || seen[1] != "b.jpg" {
		t.Fatalf("unexpected observer calls: %v", seen)
	}
}

func TestEventWireFormat(t *testing.T) {
	cases := []struct {
		event batch.Event
		want  string
	}{
		{batch.Processing(0), `{"type":"processing","id":0}`},
		{batch.Result(3, true), `{"type":"result","id":3,"has_cat":true}`},
		{batch.Result(4, false), `{"type":"result","id":4,"has_cat":false}`},
		{batch.Done(), `{"type":"done"}`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.event)
		if err != nil {
			t.Fatalf("marshal %+v: %v", tc.event, err)
		}
		if string(data) != tc.want {
			t.Fatalf("wire format: got %s want %s", data, tc.want)
		}
	}
}
