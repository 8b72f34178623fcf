package callstack

import "testing"

func BenchmarkCapture(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if len(Capture(32, 0)) == 0 {
			b.Fatal("empty capture")
		}
	}
}

func BenchmarkResolveCached(b *testing.B) {
	pcs := Capture(1, 0)
	if len(pcs) == 0 {
		b.Fatal("empty capture")
	}
	Resolve(pcs[0])
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Resolve(pcs[0])
	}
}

func BenchmarkTrace(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if Trace("", 16) == "" {
			b.Fatal("empty trace")
		}
	}
}
