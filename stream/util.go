package stream

import (
	"io"
	"sync"

	"golang.org/x/exp/constraints"
)

const scratchSize = 4096

// scratchPool holds discard buffers for skip-by-reading paths.
var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, scratchSize)
		return &b
	},
}

// roundup rounds n up to the nearest multiple of align.
func roundup[T constraints.Integer](n, align T) T {
	if rem := n % align; rem != 0 {
		return n + align - rem
	}
	return n
}

// discardFrom reads and drops n bytes from r. Returns the number of bytes
// actually discarded; stops early at end-of-stream.
func discardFrom(r io.Reader, n int) (int, error) {
	bp := scratchPool.Get().(*[]byte)
	defer scratchPool.Put(bp)
	buf := *bp

	total := 0
	for total < n {
		chunk := n - total
		if chunk > len(buf) {
			chunk = len(buf)
		}
		k, err := r.Read(buf[:chunk])
		total += k
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
		if k == 0 {
			break
		}
	}
	return total, nil
}
