// SPDX-License-Identifier: Unlicense OR MIT

// Package site captures the declaration site of a value so that
// failures raised long after construction (a missized write, an
// overlapping element, an allocation conflict) can still be reported
// against the line of user code that declared the offending value,
// not the line that happened to trigger the check.
package site

import (
	"fmt"
	"runtime"
)

// Location names a source file and line, the Go stand-in for
// std::source_location in the original implementation.
type Location struct {
	File string
	Line int
}

// Here captures the caller's location. skip is the number of stack
// frames to skip, same convention as runtime.Caller: 0 means the
// direct caller of Here.
func Here(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{File: "unknown", Line: 0}
	}
	return Location{File: file, Line: line}
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Zero reports whether the location was never captured.
func (l Location) Zero() bool {
	return l.File == "" && l.Line == 0
}
