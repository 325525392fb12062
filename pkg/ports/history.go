package ports

import "github.com/aretw0/wayfinder/pkg/domain"

// HistoryListener is notified with the new location after every history change.
type HistoryListener func(loc *domain.Location)

// History is the navigation source the Router consumes.
type History interface {
	// Location returns the current location.
	Location() *domain.Location

	// Push appends a new entry for path and notifies listeners.
	Push(path string, state any)

	// Replace overwrites the current entry and notifies listeners.
	Replace(path string, state any)

	// Go moves n entries through the stack (negative is back). It reports
	// false, and notifies nobody, when the move falls outside the stack.
	Go(n int) bool

	// Listen subscribes to changes. The returned func unsubscribes.
	Listen(fn HistoryListener) (unlisten func())
}

// HrefMaker is implemented by histories whose hrefs differ from their
// paths, such as hash-based ones.
type HrefMaker interface {
	MakeHref(path string) string
}
