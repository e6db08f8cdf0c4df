package mandel

import (
	"strconv"
	"testing"
)

var benchSizes = []int{64, 256, 1024}

func benchmarkGrid(b *testing.B, fn func(Bounds, int, int, int) (*Grid, error)) {
	for _, size := range benchSizes {
		b.Run(strconv.Itoa(size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := fn(Classic, size, size, 100); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkNaive(b *testing.B)   { benchmarkGrid(b, Naive) }
func BenchmarkBatched(b *testing.B) { benchmarkGrid(b, Batched) }

func BenchmarkEscapeCount_InSet(b *testing.B) {
	for i := 0; i < b.N; i++ {
		escapeCount(-1, 1000)
	}
}

func BenchmarkEscapeCount_Outside(b *testing.B) {
	for i := 0; i < b.N; i++ {
		escapeCount(complex(0.5, 0.5), 1000)
	}
}
