package callstack

import (
	"fmt"
	"os"
	"strings"
)

// maxSymbolLen is where cleaned symbols get truncated with an ellipsis, to
// keep stack reports readable in line-based logs.
const maxSymbolLen = 60

// cleanSymbol shortens a fully qualified Go symbol for display: the import
// path prefix is dropped down to the bare package name, anonymous function
// suffixes collapse to the literal "lambda", and overlong names are
// truncated with an ellipsis.
//
//	github.com/acme/app/worker.(*Pool).run.func2 -> worker.(*Pool).run.lambda
func cleanSymbol(sym string) string {
	if sym == "" {
		return "??"
	}
	if i := strings.LastIndexByte(sym, '/'); i >= 0 {
		sym = sym[i+1:]
	}
	if i := closureIndex(sym); i >= 0 {
		sym = sym[:i] + ".lambda"
	}
	if len(sym) > maxSymbolLen {
		sym = sym[:maxSymbolLen-3] + "..."
	}
	return sym
}

// closureIndex finds the start of a ".funcN[.N]..." suffix, or -1.
func closureIndex(sym string) int {
	for i := 0; ; {
		j := strings.Index(sym[i:], ".func")
		if j < 0 {
			return -1
		}
		i += j
		rest := sym[i+len(".func"):]
		if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			return i
		}
		i += len(".func")
	}
}

// shortPath keeps only the last path element of a source file or module.
func shortPath(p string) string {
	if p == "" {
		return "(null)"
	}
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Format renders a multi-line stack report, one line per frame:
//
//	  at <short_file>:<line>  in  <cleaned_symbol>
//
// An optional message becomes the first line. Formatting is best-effort and
// always returns a string, even under partial resolution failure.
func Format(message string, pcs []uintptr) string {
	var b strings.Builder
	if message != "" {
		b.WriteString(message)
		b.WriteByte('\n')
	}
	for _, pc := range pcs {
		writeFrame(&b, Resolve(pc))
	}
	return b.String()
}

func writeFrame(b *strings.Builder, f Frame) {
	file := f.File
	if file == "" {
		file = f.Module
	}
	if f.Line > 0 {
		fmt.Fprintf(b, "  at %20s:%-4d  in  %s\n", shortPath(file), f.Line, cleanSymbol(f.Symbol))
	} else {
		fmt.Fprintf(b, "  at %20s:%-4s  in  %s\n", shortPath(file), "??", cleanSymbol(f.Symbol))
	}
}

// Trace captures the current goroutine's stack and formats it, hiding the
// Trace call itself. maxDepth <= 0 means MaxDepth.
func Trace(message string, maxDepth int) string {
	pcs := Capture(maxDepth, 1)
	if len(pcs) == 0 {
		return message + "\n<callstack unavailable>\n"
	}
	return Format(message, pcs)
}

// Print writes a trace of the calling goroutine to stderr.
func Print(message string) {
	pcs := Capture(MaxDepth, 1)
	fmt.Fprint(os.Stderr, Format(message, pcs))
}
