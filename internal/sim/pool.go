package sim

import (
	"sync"

	"github.com/san-kum/sailsim/internal/dynamo"
)

// ViewPool recycles read-back buffers so a renderer polling every frame does
// not allocate a fresh particle copy each time.
type ViewPool struct {
	pool sync.Pool
}

func NewViewPool() *ViewPool {
	return &ViewPool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]dynamo.ParticleView, 0)
			},
		},
	}
}

// Snapshot copies the current particle state of st into a pooled buffer.
func (p *ViewPool) Snapshot(st *dynamo.Store) []dynamo.ParticleView {
	buf := p.pool.Get().([]dynamo.ParticleView)
	return st.Snapshot(buf)
}

func (p *ViewPool) Put(v []dynamo.ParticleView) {
	p.pool.Put(v[:0])
}
