// Package callstack captures bounded callstacks from the current goroutine
// and resolves raw program counters into human-readable frames for
// line-based logs and traced errors.
package callstack

import "runtime"

// MaxDepth bounds every capture. Deeper stacks are truncated.
const MaxDepth = 256

// Frame is one resolved callstack entry.
type Frame struct {
	Address uint64 // raw program counter
	Module  string // path of the executable or shared object
	File    string // source file, "" when debug info is missing
	Line    int    // 0 when unknown
	Symbol  string // fully qualified function name
}

// Capture returns up to maxDepth return addresses from the calling
// goroutine, innermost first. skip hides that many additional frames beyond
// Capture itself, so skip=0 makes the caller the first frame. The walk uses
// a fixed scratch array and never allocates proportionally to stack depth.
func Capture(maxDepth, skip int) []uintptr {
	if maxDepth <= 0 || maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}
	if skip < 0 {
		skip = 0
	}
	var scratch [MaxDepth]uintptr
	// +2 skips runtime.Callers and Capture itself
	n := runtime.Callers(skip+2, scratch[:maxDepth])
	if n <= 0 {
		return nil
	}
	pcs := make([]uintptr, n)
	copy(pcs, scratch[:n])
	return pcs
}
