package postprocess

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16LookupTable[i] = float16.Frombits(uint16(i)).Float32()
	}
}

// widenFloat16 converts raw IEEE 754 half precision values into dst
func widenFloat16(dst []float32, src []uint16) {
	for i, v := range src {
		dst[i] = f16LookupTable[v]
	}
}
