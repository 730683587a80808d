package event

// SentKeySet records which reminder keys have already been dispatched for an
// event. It is append-only: keys are added at most once and never removed.
// The slice representation keeps it JSON/BSON friendly; all mutation goes
// through Add.
type SentKeySet []string

// Contains reports whether the key has already been recorded.
func (s SentKeySet) Contains(key string) bool {
	for _, k := range s {
		if k == key {
			return true
		}
	}
	return false
}

// Add inserts the key if absent and reports whether the set changed.
// Re-adding an existing key is a no-op.
func (s *SentKeySet) Add(key string) bool {
	if s.Contains(key) {
		return false
	}
	*s = append(*s, key)
	return true
}
