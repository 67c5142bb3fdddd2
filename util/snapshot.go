package util

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var updateSnapshots = flag.Bool("update-snapshots", false, "update testdata snapshots")

type SnapMarshaller interface {
	MarshalSnap() (string, string, error)
}

// Snapshot compares v against testdata/<test name><ext>. Values implementing
// SnapMarshaller pick their own text and extension, the rest is indented JSON.
func Snapshot[V any](t *testing.T, v V) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	p, actual, ext := filepath.Join("testdata", name), "", ".json"
	if m, ok := any(v).(SnapMarshaller); ok {
		s, e, err := m.MarshalSnap()
		if err != nil {
			t.Fatalf("failed to marshal snapshot: %s (%v)", err, v)
		}
		actual, ext = s, e
	} else {
		bs, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			t.Fatalf("failed to marshal snapshot: %s (%v)", err, v)
		}
		actual = string(bs)
	}
	if *updateSnapshots {
		if err := os.MkdirAll("testdata", 0755); err != nil {
			t.Fatalf("failed to create testdata: %s", err)
		} else if err := os.WriteFile(p+ext, []byte(actual), 0644); err != nil {
			t.Fatalf("failed to write snapshot: %s", err)
		}
	} else if bs, err := os.ReadFile(p + ext); err != nil && !os.IsNotExist(err) {
		t.Fatalf("failed to read snapshot: %s", err)
	} else if expected := string(bs); actual != expected {
		t.Fatalf("snapshot does not match (actual != expected):\n%q\n----------\n%q", actual, expected)
	}
}
