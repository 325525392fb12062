package memory

import (
	"sort"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/google/uuid"
)

// History implements ports.History over an in-memory entry stack.
// Listeners are called synchronously, outside the internal lock.
type History struct {
	mu        sync.Mutex
	entries   []*domain.Location
	index     int
	listeners map[int]ports.HistoryListener
	nextID    int

	hrefPrefix string
}

// NewHistory creates a history holding initialEntries, positioned at the
// last one. With no entries it starts at "/".
func NewHistory(initialEntries ...string) *History {
	if len(initialEntries) == 0 {
		initialEntries = []string{"/"}
	}
	h := &History{listeners: make(map[int]ports.HistoryListener)}
	for _, path := range initialEntries {
		h.entries = append(h.entries, domain.ParseLocation(path).WithKey(newKey()))
	}
	h.index = len(h.entries) - 1
	return h
}

// NewHashHistory is NewHistory for apps served from a single document:
// hrefs carry the path in the fragment ("#/users/7").
func NewHashHistory(initialEntries ...string) *History {
	h := NewHistory(initialEntries...)
	h.hrefPrefix = "#"
	return h
}

// MakeHref returns the href a link to path should carry.
func (h *History) MakeHref(path string) string {
	return h.hrefPrefix + path
}

func newKey() string {
	return uuid.NewString()[:8]
}

// Location returns the current entry.
func (h *History) Location() *domain.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Entries returns a copy of the stack, oldest first.
func (h *History) Entries() []*domain.Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*domain.Location(nil), h.entries...)
}

// Index returns the position of the current entry.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Push drops any forward entries and appends path.
func (h *History) Push(path string, state any) {
	loc := domain.ParseLocation(path).WithState(state).WithAction(domain.ActionPush).WithKey(newKey())

	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], loc)
	h.index = len(h.entries) - 1
	h.mu.Unlock()

	h.notify(loc)
}

// Replace swaps the current entry for path.
func (h *History) Replace(path string, state any) {
	loc := domain.ParseLocation(path).WithState(state).WithAction(domain.ActionReplace).WithKey(newKey())

	h.mu.Lock()
	h.entries[h.index] = loc
	h.mu.Unlock()

	h.notify(loc)
}

// Go moves n entries. Moves past either end are ignored.
func (h *History) Go(n int) bool {
	h.mu.Lock()
	target := h.index + n
	if n == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = target
	loc := h.entries[target].WithAction(domain.ActionPop)
	h.entries[target] = loc
	h.mu.Unlock()

	h.notify(loc)
	return true
}

// Listen subscribes fn to changes.
func (h *History) Listen(fn ports.HistoryListener) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

func (h *History) notify(loc *domain.Location) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]ports.HistoryListener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, h.listeners[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(loc)
	}
}
