package callstack

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

var (
	faultMu   sync.Mutex
	faultCh   chan os.Signal
	faultDone chan struct{}
)

// RegisterFaultHandler installs a handler for fatal memory-access signals
// (SIGSEGV, SIGBUS) that logs a trace of the receiving goroutine and lets
// the process continue. Only one handler is active at a time; a second call
// replaces the first. Call ResetFaultHandler at process exit.
//
// Go-level memory faults are translated by the runtime before the signal is
// observable here; use EnableFaultPanics to surface those as traced errors.
// This hook catches faults raised by non-Go code sharing the process.
func RegisterFaultHandler(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	faultMu.Lock()
	defer faultMu.Unlock()
	resetLocked()

	faultCh = make(chan os.Signal, 1)
	faultDone = make(chan struct{})
	signal.Notify(faultCh, syscall.SIGSEGV, syscall.SIGBUS)

	go func(ch chan os.Signal, done chan struct{}) {
		for {
			select {
			case sig := <-ch:
				log.Error("fatal signal received",
					zap.String("signal", sig.String()),
					zap.String("trace", Trace("", MaxDepth)))
			case <-done:
				return
			}
		}
	}(faultCh, faultDone)
}

// ResetFaultHandler removes the handler installed by RegisterFaultHandler
// and restores default signal disposition.
func ResetFaultHandler() {
	faultMu.Lock()
	defer faultMu.Unlock()
	resetLocked()
}

func resetLocked() {
	if faultCh == nil {
		return
	}
	signal.Stop(faultCh)
	close(faultDone)
	faultCh = nil
	faultDone = nil
}

// EnableFaultPanics makes unexpected memory faults on the calling goroutine
// panic instead of crashing the process, so RecoverTraced can turn them
// into traced errors.
func EnableFaultPanics() {
	debug.SetPanicOnFault(true)
}

// RecoverTraced converts a panic into a TracedError carrying the stack of
// the recovery point. Use in a defer:
//
//	defer callstack.RecoverTraced(&err)
func RecoverTraced(errp *error) {
	if r := recover(); r != nil {
		*errp = NewError(fmt.Sprint(r))
	}
}
