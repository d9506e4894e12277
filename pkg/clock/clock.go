// Package clock provides time abstractions for production and testing
package clock

import "time"

// SystemClock is the production clock backed by the standard library.
// Stores stamp request timestamps through it; tests substitute a
// deterministic implementation.
type SystemClock struct{}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}
