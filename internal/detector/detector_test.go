package detector_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"catscan/internal/detector"
	"catscan/internal/testsupport"
)

func stubRunner(output string, err error) detector.Runner {
	return func(ctx context.Context, binary string, args []string, extraEnv []string) ([]byte, error) {
		return []byte(output), err
	}
}

func TestDetectMatchesOnBaseName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := detector.NewWithRunner(cfg, nil, stubRunner("Analyzing...\n/some/other/prefix/tabby.jpg\n", nil))

	outcome := d.Detect(context.Background(), 4, "/data/samples/tabby.jpg")
	if !outcome.HasCat {
		t.Fatal("expected positive outcome when stdout contains the base name")
	}
	if outcome.ItemID != 4 {
		t.Fatalf("unexpected item id: %d", outcome.ItemID)
	}
	if outcome.Failure != "" {
		t.Fatalf("unexpected failure: %q", outcome.Failure)
	}
}

func TestDetectMatchesOnAbsolutePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := detector.NewWithRunner(cfg, nil, stubRunner("found: /data/samples/cat one.jpg\n", nil))

	outcome := d.Detect(context.Background(), 0, "/data/samples/cat one.jpg")
	if !outcome.HasCat {
		t.Fatal("expected positive outcome when stdout contains the absolute path")
	}
}

func TestDetectNegativeWhenOutputSilent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := detector.NewWithRunner(cfg, nil, stubRunner("no cats today\n", nil))

	if outcome := d.Detect(context.Background(), 1, "/data/samples/dog.png"); outcome.HasCat {
		t.Fatal("expected negative outcome")
	}
}

func TestDetectSwallowsExecutionErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := detector.NewWithRunner(cfg, nil, stubRunner("", errors.New("exit status 1")))

	outcome := d.Detect(context.Background(), 2, "/data/samples/blur.jpg")
	if outcome.HasCat {
		t.Fatal("failed invocation must report has_cat=false")
	}
	if outcome.Failure == "" {
		t.Fatal("expected failure reason to be recorded")
	}
}

func TestDetectReportsTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Detector.TimeoutSeconds = 1

	d := detector.NewWithRunner(cfg, nil, func(ctx context.Context, binary string, args []string, extraEnv []string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	done := make(chan detector.Outcome, 1)
	go func() {
		done <- d.Detect(context.Background(), 3, "/data/samples/slow.gif")
	}()

	select {
	case outcome := <-done:
		if outcome.HasCat {
			t.Fatal("timeout must report has_cat=false")
		}
		if outcome.Failure != "timeout" {
			t.Fatalf("expected timeout failure, got %q", outcome.Failure)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Detect did not honor the invocation timeout")
	}
}

func TestDetectPassesModelArgument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var gotBinary string
	var gotArgs []string
	d := detector.NewWithRunner(cfg, nil, func(ctx context.Context, binary string, args []string, extraEnv []string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return nil, nil
	})

	d.Detect(context.Background(), 0, "/data/samples/a.jpg")

	if gotBinary != cfg.Paths.ClassifierBinary {
		t.Fatalf("unexpected binary: %q", gotBinary)
	}
	want := []string{"/data/samples/a.jpg", "--model", cfg.Paths.ModelPath}
	if len(gotArgs) != len(want) {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Fatalf("arg %d: got %q want %q", i, gotArgs[i], want[i])
		}
	}
}

func TestDetectExportsLibraryPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.LibraryDir = "/opt/onnx/lib"

	var gotEnv []string
	d := detector.NewWithRunner(cfg, nil, func(ctx context.Context, binary string, args []string, extraEnv []string) ([]byte, error) {
		gotEnv = extraEnv
		return nil, nil
	})

	d.Detect(context.Background(), 0, "/data/samples/a.jpg")

	found := false
	for _, entry := range gotEnv {
		if strings.HasPrefix(entry, "LD_LIBRARY_PATH=/opt/onnx/lib") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected LD_LIBRARY_PATH export, got %v", gotEnv)
	}
}
