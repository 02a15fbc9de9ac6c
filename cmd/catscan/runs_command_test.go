package main

import (
	"testing"

	"catscan/internal/testsupport"
)

func TestRunsListAndShow(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithSamples("whiskers.jpg"),
		testsupport.WithModelFile(),
		testsupport.WithStubClassifier(`echo "$1"`),
	)

	// A recorded scan seeds the history database.
	if _, _, err := runCLI(t, []string{"scan"}, env.configPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "Completed")

	out, _, err = runCLI(t, []string{"runs", "show", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "whiskers.jpg")
	requireContains(t, out, "Cat")
	requireContains(t, out, "Found 1 cats in 1 images")
}

func TestRunsEmptyHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "No runs recorded yet")
}

func TestRunsShowMissingRun(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"runs", "show", "42"}, env.configPath)
	if err == nil {
		t.Fatal("runs show on missing run should fail")
	}
}

func TestRunsShowRejectsBadID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"runs", "show", "abc"}, env.configPath)
	if err == nil {
		t.Fatal("runs show with non-numeric id should fail")
	}
}
