package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordMatch forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordMatch(rec MatchRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordMatch(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordFailure forwards failures when supported by the sink.
func (m *MultiSink) RecordFailure(rec FailureRecord) error {
	for _, s := range m.Sinks {
		if fr, ok := s.(FailureRecorder); ok {
			if err := fr.RecordFailure(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSavedGroup forwards saved groups when supported by the sink.
func (m *MultiSink) RecordSavedGroup(rec SavedGroupRecord) error {
	for _, s := range m.Sinks {
		if sr, ok := s.(SavedGroupRecorder); ok {
			if err := sr.RecordSavedGroup(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes every sink that buffers. All sinks are flushed even if one fails.
func (m *MultiSink) Flush() error {
	var first error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
