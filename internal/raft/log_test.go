package raft

import "testing"

func TestLogAppendAndGet(t *testing.T) {
	log := NewLog()

	if log.LastIndex() != 0 || log.LastTerm() != 0 {
		t.Errorf("empty log should report index 0, term 0")
	}

	log.Append(&LogEntry{Term: 1, Index: 1, Command: "a"})
	log.Append(&LogEntry{Term: 1, Index: 2, Command: "b"})
	log.Append(&LogEntry{Term: 2, Index: 3, Command: "c"})

	if log.LastIndex() != 3 {
		t.Errorf("LastIndex = %d, want 3", log.LastIndex())
	}
	if log.LastTerm() != 2 {
		t.Errorf("LastTerm = %d, want 2", log.LastTerm())
	}

	entry, err := log.Get(2)
	if err != nil {
		t.Fatalf("Get(2) failed: %v", err)
	}
	if entry.Command != "b" {
		t.Errorf("Get(2).Command = %q, want b", entry.Command)
	}

	if _, err := log.Get(0); err != ErrLogIndexOutOfRange {
		t.Errorf("Get(0) should be out of range, got %v", err)
	}
	if _, err := log.Get(4); err != ErrLogIndexOutOfRange {
		t.Errorf("Get(4) should be out of range, got %v", err)
	}
}

func TestLogTermAt(t *testing.T) {
	log := NewLog()
	log.Append(&LogEntry{Term: 1, Index: 1})
	log.Append(&LogEntry{Term: 3, Index: 2})

	if got := log.TermAt(0); got != 0 {
		t.Errorf("TermAt(0) = %d, want 0", got)
	}
	if got := log.TermAt(2); got != 3 {
		t.Errorf("TermAt(2) = %d, want 3", got)
	}
	if got := log.TermAt(9); got != 0 {
		t.Errorf("TermAt(9) = %d, want 0", got)
	}
}

func TestLogTruncateFrom(t *testing.T) {
	log := NewLog()
	for i := uint64(1); i <= 5; i++ {
		log.Append(&LogEntry{Term: 1, Index: i})
	}

	log.TruncateFrom(3)
	if log.LastIndex() != 2 {
		t.Errorf("LastIndex after TruncateFrom(3) = %d, want 2", log.LastIndex())
	}

	// Truncating past the tail is a no-op.
	log.TruncateFrom(10)
	if log.LastIndex() != 2 {
		t.Errorf("LastIndex after no-op truncate = %d, want 2", log.LastIndex())
	}

	log.TruncateFrom(0)
	if log.LastIndex() != 0 {
		t.Errorf("TruncateFrom(0) should empty the log, got %d entries", log.LastIndex())
	}
}

func TestLogSlice(t *testing.T) {
	log := NewLog()
	for i := uint64(1); i <= 4; i++ {
		log.Append(&LogEntry{Term: 1, Index: i})
	}

	tail := log.Slice(3)
	if len(tail) != 2 || tail[0].Index != 3 {
		t.Errorf("Slice(3) = %v entries starting at %d", len(tail), tail[0].Index)
	}
	if got := log.Slice(5); got != nil {
		t.Errorf("Slice past tail should be nil, got %d entries", len(got))
	}
	if got := log.Slice(1); len(got) != 4 {
		t.Errorf("Slice(1) should return the whole log, got %d entries", len(got))
	}
}

func TestNewLogEntryTimestamp(t *testing.T) {
	entry := NewLogEntry(2, 7, "cmd")
	if entry.Term != 2 || entry.Index != 7 || entry.Command != "cmd" {
		t.Errorf("entry fields mismatch: %+v", entry)
	}
	if entry.CreatedAt <= 0 {
		t.Errorf("CreatedAt should be stamped, got %v", entry.CreatedAt)
	}
}
