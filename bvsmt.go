// Package bvsmt implements the simplification core of a bit-vector
// satisfiability engine: a hash-consed expression graph and the rewrite
// pass that eliminates function applications by beta-reducing them
// against their defining lambda abstractions.
package bvsmt

import (
	"fmt"
)

// Standard widths.
const (
	WidthBool = 1
	Width8    = 8
	Width16   = 16
	Width32   = 32
	Width64   = 64
)

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
