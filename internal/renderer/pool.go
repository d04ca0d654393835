package renderer

import (
	"sync"

	"github.com/ivlev/storyboard/internal/animation"
)

// statePool recycles per-sprite state buffers between Sample calls. Buffers
// are keyed by length, so one pool serves every sampling pass over the same
// time grid.
type statePool struct {
	pools map[int]*sync.Pool
	mu    sync.RWMutex
}

var buffers = &statePool{
	pools: make(map[int]*sync.Pool),
}

func (p *statePool) Get(n int) []animation.VisualState {
	p.mu.RLock()
	pool, exists := p.pools[n]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[n]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					buf := make([]animation.VisualState, n)
					return &buf
				},
			}
			p.pools[n] = pool
		}
		p.mu.Unlock()
	}

	return *pool.Get().(*[]animation.VisualState)
}

func (p *statePool) Put(buf []animation.VisualState) {
	if buf == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[len(buf)]
	p.mu.RUnlock()

	if exists {
		pool.Put(&buf)
	}
}
