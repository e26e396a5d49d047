package postprocess

import (
	"sync"
)

// floatPool recycles the float32 buffers fp16 model outputs are widened into
// so a new multi megabyte slice is not allocated every frame
type floatPool struct {
	pool sync.Pool
}

// newFloatPool returns an empty floatPool
func newFloatPool() *floatPool {
	return &floatPool{}
}

// Get returns a slice of length size.  Contents are not zeroed, callers
// overwrite every element.
func (p *floatPool) Get(size int) []float32 {

	if v := p.pool.Get(); v != nil {
		buf := *v.(*[]float32)

		if cap(buf) >= size {
			return buf[:size]
		}
	}

	return make([]float32, size)
}

// Put returns a buffer obtained from Get to the pool
func (p *floatPool) Put(buf []float32) {
	buf = buf[:cap(buf)]
	p.pool.Put(&buf)
}
