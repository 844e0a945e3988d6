package alloc

import (
	"fmt"
	"testing"
)

// benchImpls names the allocator variants compared by scripts/benchmark_parser.go.
var benchImpls = []struct {
	name string
	new  func(base, size uint64) (AddrAllocator, error)
}{
	{"plain", func(base, size uint64) (AddrAllocator, error) { return New(base, size) }},
	{"locked", func(base, size uint64) (AddrAllocator, error) { return NewLocked(base, size) }},
}

// benchSizes is the number of blocks kept live between frees.
var benchSizes = []struct {
	name string
	live int
}{
	{"small", 64},
	{"large", 4096},
}

func BenchmarkAllocFree(b *testing.B) {
	for _, impl := range benchImpls {
		for _, sz := range benchSizes {
			b.Run(fmt.Sprintf("%s/%s", impl.name, sz.name), func(b *testing.B) {
				a, err := impl.new(0, 1<<40)
				if err != nil {
					b.Fatal(err)
				}
				addrs := make([]uint64, 0, sz.live)

				b.ReportAllocs()
				for i := 0; b.Loop(); i++ {
					addr, err := a.Alloc(uint64(16+i%512), 16)
					if err != nil {
						b.Fatal(err)
					}
					addrs = append(addrs, addr)
					if len(addrs) == cap(addrs) {
						for _, x := range addrs {
							if err := a.Free(x); err != nil {
								b.Fatal(err)
							}
						}
						addrs = addrs[:0]
					}
				}
			})
		}
	}
}

// BenchmarkFragmented allocates into a free list riddled with small holes.
func BenchmarkFragmented(b *testing.B) {
	for _, impl := range benchImpls {
		for _, sz := range benchSizes {
			b.Run(fmt.Sprintf("%s/%s", impl.name, sz.name), func(b *testing.B) {
				a, err := impl.new(0, 1<<40)
				if err != nil {
					b.Fatal(err)
				}
				for range 2 * sz.live {
					if _, err := a.Alloc(32, 1); err != nil {
						b.Fatal(err)
					}
				}
				// Free every other block, leaving sz.live 32-byte holes.
				for addr := uint64(32); addr < uint64(64*sz.live); addr += 64 {
					if err := a.Free(addr); err != nil {
						b.Fatal(err)
					}
				}

				b.ReportAllocs()
				for b.Loop() {
					addr, err := a.Alloc(48, 16)
					if err != nil {
						b.Fatal(err)
					}
					if err := a.Free(addr); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkLockedParallel(b *testing.B) {
	l, err := NewLocked(0, 1<<30)
	if err != nil {
		b.Fatal(err)
	}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			addr, err := l.Alloc(64, 64)
			if err != nil {
				b.Fatal(err)
			}
			if err := l.Free(addr); err != nil {
				b.Fatal(err)
			}
		}
	})
}
