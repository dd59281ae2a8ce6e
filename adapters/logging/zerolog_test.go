package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestZerolog_LevelsAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "warn").With("source", "stock")

	logger.Infof("dropped %d", 1)
	logger.Warnf("column %q is not numeric", "qty")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the warning, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["level"] != "warn" || entry["message"] != `column "qty" is not numeric` {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["source"] != "stock" || entry["component"] != "tableexport" {
		t.Fatalf("expected fields, got %v", entry)
	}
}

func TestZerolog_UnknownLevelDefaultsToInfo(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(buf, "loud")
	logger.Debugf("hidden")
	logger.Infof("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
