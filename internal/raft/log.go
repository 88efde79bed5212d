package raft

import "time"

// LogEntry is a single replicated log entry. Index is 1-based and
// contiguous. Entries are immutable once appended except for truncation on
// conflict.
type LogEntry struct {
	Term      uint64  `json:"term"`
	Index     uint64  `json:"index"`
	Command   string  `json:"command"`
	CreatedAt float64 `json:"created_at,omitempty"` // unix seconds
}

// NewLogEntry creates an entry stamped with the current time.
func NewLogEntry(term, index uint64, command string) *LogEntry {
	return &LogEntry{
		Term:      term,
		Index:     index,
		Command:   command,
		CreatedAt: float64(time.Now().UnixNano()) / 1e9,
	}
}

// Log is the in-memory ordered log store. It is not durable: this design
// deliberately drops crash recovery. Callers synchronize access; the node
// owns the log under its single state lock.
type Log struct {
	entries []*LogEntry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{entries: make([]*LogEntry, 0)}
}

// Len returns the number of entries.
func (l *Log) Len() uint64 {
	return uint64(len(l.entries))
}

// LastIndex returns the index of the last entry (0 for an empty log).
func (l *Log) LastIndex() uint64 {
	return uint64(len(l.entries))
}

// LastTerm returns the term of the last entry (0 for an empty log).
func (l *Log) LastTerm() uint64 {
	if len(l.entries) == 0 {
		return 0
	}
	return l.entries[len(l.entries)-1].Term
}

// TermAt returns the term of the entry at index (0 when index is 0 or out
// of range).
func (l *Log) TermAt(index uint64) uint64 {
	if index == 0 || index > uint64(len(l.entries)) {
		return 0
	}
	return l.entries[index-1].Term
}

// Get returns the entry at index.
func (l *Log) Get(index uint64) (*LogEntry, error) {
	if index == 0 || index > uint64(len(l.entries)) {
		return nil, ErrLogIndexOutOfRange
	}
	return l.entries[index-1], nil
}

// Append adds an entry at the tail.
func (l *Log) Append(entry *LogEntry) {
	l.entries = append(l.entries, entry)
}

// TruncateFrom removes the entry at index and everything after it.
func (l *Log) TruncateFrom(index uint64) {
	if index == 0 {
		l.entries = l.entries[:0]
		return
	}
	if index <= uint64(len(l.entries)) {
		l.entries = l.entries[:index-1]
	}
}

// Slice returns the entries from index onward (inclusive). The returned
// slice aliases the log; callers must not mutate it.
func (l *Log) Slice(from uint64) []*LogEntry {
	if from == 0 {
		from = 1
	}
	if from > uint64(len(l.entries)) {
		return nil
	}
	return l.entries[from-1:]
}
