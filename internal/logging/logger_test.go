package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// newBufferLogger returns a logger writing into buf for inspection.
func newBufferLogger(level Level, format Format, buf *bytes.Buffer) Logger {
	return &logger{
		level:  level,
		format: format,
		output: buf,
		fields: make(map[string]interface{}),
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(LevelWarn, FormatText, &buf)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")
	log.Error("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-severity messages leaked: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("high-severity messages missing: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(LevelInfo, FormatJSON, &buf)

	log.Info("heartbeat sent", "term", 3, "peers", 2)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "heartbeat sent" || entry["level"] != "info" {
		t.Errorf("envelope mismatch: %v", entry)
	}
	if entry["term"] != float64(3) {
		t.Errorf("key-value pair lost: %v", entry)
	}
}

func TestWithNode(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(LevelInfo, FormatJSON, &buf)

	scoped := log.WithNode(2)
	scoped.Info("vote granted")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["node_id"] != float64(2) {
		t.Errorf("node_id missing: %v", entry)
	}

	// The parent logger stays unscoped.
	buf.Reset()
	log.Info("plain")
	if strings.Contains(buf.String(), "node_id") {
		t.Error("WithNode mutated the parent logger")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(LevelInfo, FormatJSON, &buf)

	scoped := log.WithFields("mode", "reliability")
	scoped.Info("round opened", "round", 7)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["mode"] != "reliability" || entry["round"] != float64(7) {
		t.Errorf("fields missing: %v", entry)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(LevelInfo, FormatText, &buf)

	log.Info("node starting", "total", 3)
	out := buf.String()
	if !strings.Contains(out, "[info] node starting") {
		t.Errorf("text format drifted: %q", out)
	}
	if !strings.Contains(out, "total=3") {
		t.Errorf("key-value pair missing: %q", out)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if ParseLevel("debug") != LevelDebug || ParseLevel("error") != LevelError {
		t.Error("ParseLevel drifted")
	}
	if ParseLevel("bogus") != LevelInfo {
		t.Error("unknown level should fall back to info")
	}
	if ParseFormat("json") != FormatJSON || ParseFormat("bogus") != FormatText {
		t.Error("ParseFormat drifted")
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	// Must be safe to call with any shape of arguments.
	log.Debug("x")
	log.Info("x", "k")
	log.WithNode(1).WithFields("a", 1).Error("x", "k", "v")
}
