// Package assert is a local, programmer-error precondition check that
// aborts the offending rank's process rather than being reported as an
// ordinary error. It must never be used for anything that can be
// triggered by remote, untrusted input.
package assert

import "fmt"

// That panics with a formatted message if cond is false.
func That(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
