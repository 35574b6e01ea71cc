// Package clock lets code read the current time through an interface so tests
// can pin it.
package clock
