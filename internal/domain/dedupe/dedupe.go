// Package dedupe tracks identifiers already seen within one matching request.
package dedupe

// Deduper records seen IDs so duplicates can be rejected.
type Deduper interface {
	// SeenAndRecord checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(id string) bool

	// Unrecord removes an ID, allowing it to be recorded again.
	Unrecord(id string)

	Size() int
}

// set implements Deduper with a plain map. It is not safe for concurrent use;
// each request owns its own instance.
type set struct {
	seen map[string]struct{}
	key  func(string) string
}

// New creates a request-scoped deduper.
func New(opts ...Option) Deduper {
	s := &set{key: func(id string) string { return id }}
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.key != nil {
		s.key = cfg.key
	}
	s.seen = make(map[string]struct{}, cfg.capacity)
	return s
}

func (s *set) SeenAndRecord(id string) bool {
	k := s.key(id)
	if _, exists := s.seen[k]; exists {
		return true
	}
	s.seen[k] = struct{}{}
	return false
}

func (s *set) Unrecord(id string) {
	delete(s.seen, s.key(id))
}

func (s *set) Size() int {
	return len(s.seen)
}
