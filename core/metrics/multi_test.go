package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	count    int
	flushErr error
	flushed  bool
}

func (r *recordSink) RecordMatch(MatchRecord) error {
	r.count++
	return nil
}

func (r *recordSink) RecordFailure(FailureRecord) error {
	r.count++
	return nil
}

func (r *recordSink) Flush() error {
	r.flushed = true
	return r.flushErr
}

// matchOnly does not implement the optional recorders.
type matchOnly struct{ count int }

func (m *matchOnly) RecordMatch(MatchRecord) error {
	m.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &matchOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordMatch(MatchRecord{}); err != nil {
		t.Fatalf("record match: %v", err)
	}
	if err := m.RecordFailure(FailureRecord{Stage: "cache"}); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := m.RecordSavedGroup(SavedGroupRecord{}); err != nil {
		t.Fatalf("record saved group: %v", err)
	}
	if s1.count != 2 || s2.count != 2 || s3.count != 1 {
		t.Fatalf("records not forwarded: %d %d %d", s1.count, s2.count, s3.count)
	}
}

func TestMultiSink_FlushAll(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{flushErr: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.Flush(); !errors.Is(err, boom) {
		t.Fatalf("expected first flush error, got %v", err)
	}
	if !s1.flushed || !s2.flushed {
		t.Fatalf("every sink should be flushed")
	}
}
