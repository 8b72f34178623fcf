package callstack

import (
	"os"
	"runtime"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// resolver is the process-wide symbol resolution service. It is constructed
// lazily on first use and lives until process exit. Resolution results are
// cached per program counter; the cache is concurrency-safe, so Resolve may
// be called from any goroutine.
type resolver struct {
	module string
	cache  *xsync.Map[uintptr, Frame]
}

var (
	resolverMu  sync.Mutex
	theResolver *resolver
)

func getResolver() *resolver {
	resolverMu.Lock()
	defer resolverMu.Unlock()
	if theResolver == nil {
		module, err := os.Executable()
		if err != nil {
			module = ""
		}
		theResolver = &resolver{
			module: module,
			cache:  xsync.NewMap[uintptr, Frame](),
		}
	}
	return theResolver
}

// Resolve maps one captured program counter to a Frame. Unresolvable
// counters yield a frame with Symbol "??" and Line 0; Resolve never fails.
func Resolve(pc uintptr) Frame {
	r := getResolver()
	if f, ok := r.cache.Load(pc); ok {
		return f
	}
	f := r.resolve(pc)
	r.cache.Store(pc, f)
	return f
}

func (r *resolver) resolve(pc uintptr) Frame {
	f := Frame{Address: uint64(pc), Module: r.module}
	frames := runtime.CallersFrames([]uintptr{pc})
	fr, _ := frames.Next()
	if fr.Function == "" {
		f.Symbol = "??"
		return f
	}
	f.Symbol = fr.Function
	f.File = fr.File
	f.Line = fr.Line
	return f
}

// ResolveAll maps each captured counter in order.
func ResolveAll(pcs []uintptr) []Frame {
	frames := make([]Frame, len(pcs))
	for i, pc := range pcs {
		frames[i] = Resolve(pc)
	}
	return frames
}
