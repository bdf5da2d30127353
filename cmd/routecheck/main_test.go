package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRoute(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "route.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write route: %v", err)
	}
	return path
}

func TestRunClearRoute(t *testing.T) {
	path := writeRoute(t, `{"name":"Clear","waypoints":[[117.2,31.8,100],[117.22,31.82,120]]}`)

	var out, errOut bytes.Buffer
	if code := run([]string{"-route", path}, &out, &errOut); code != 0 {
		t.Fatalf("Expected exit 0, got %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "CLEAR") {
		t.Errorf("Expected a clear verdict, got %q", out.String())
	}
}

func TestRunConflictExitsOne(t *testing.T) {
	path := writeRoute(t, `{"name":"Core","waypoints":[[118.311,31.365,100],[118.20,31.20,100]]}`)

	var out, errOut bytes.Buffer
	if code := run([]string{"-route", path}, &out, &errOut); code != 1 {
		t.Fatalf("Expected exit 1, got %d", code)
	}
	if !strings.Contains(out.String(), "CONFLICT") || !strings.Contains(out.String(), "Government Core Zone") {
		t.Errorf("Expected the violated zone in output, got %q", out.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run(nil, &out, &errOut); code != 2 {
		t.Errorf("Expected exit 2 without -route, got %d", code)
	}
	if code := run([]string{"-route", filepath.Join(t.TempDir(), "missing.json")}, &out, &errOut); code != 2 {
		t.Errorf("Expected exit 2 for a missing file, got %d", code)
	}
}
