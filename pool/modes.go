package pool

import (
	"sort"
	"sync"
)

// modeRegistry records which mode tags have been observed at dequeue.
// The record is advisory bookkeeping surfaced in the summary; barrier
// behavior comes from the dispatch lock, not from this set.
type modeRegistry struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newModeRegistry() *modeRegistry {
	return &modeRegistry{seen: map[string]struct{}{}}
}

func (r *modeRegistry) Record(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[m.String()] = struct{}{}
}

func (r *modeRegistry) Seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags := make([]string, 0, len(r.seen))
	for t := range r.seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
