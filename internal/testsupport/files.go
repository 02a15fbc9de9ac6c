package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteSample creates the target file (and parent directories) with a small
// placeholder payload. Content never matters to the pipeline; only the name
// and location do.
func WriteSample(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte{0x42}, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
