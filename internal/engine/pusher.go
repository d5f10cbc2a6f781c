package engine

import (
	"context"
	"sort"
	"sync"
)

// pusher runs the asynchronous remote-push path. Edits mark a match dirty
// and wake the worker; rapid edits to the same match coalesce into one push.
// Each push snapshots the match at push time, so the final push after N
// rapid edits always reflects the last one.
type pusher struct {
	engine *Engine

	mu    sync.Mutex
	dirty map[int]struct{}
	wake  chan struct{}
}

func newPusher(ctx context.Context, e *Engine) *pusher {
	p := &pusher{
		engine: e,
		dirty:  make(map[int]struct{}),
		wake:   make(chan struct{}, 1),
	}
	go p.loop(ctx)
	return p
}

// enqueue marks a match dirty. Never blocks; the wake channel holds at most
// one pending signal and the dirty set carries the rest.
func (p *pusher) enqueue(matchIndex int) {
	p.mu.Lock()
	p.dirty[matchIndex] = struct{}{}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *pusher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
		}

		for {
			indexes := p.take()
			if len(indexes) == 0 {
				break
			}
			for _, i := range indexes {
				// Push failures are already logged by PushMatch; the next
				// triggering edit retries naturally.
				_ = p.engine.PushMatch(ctx, i)
			}
		}
	}
}

// take drains the dirty set, returning match indexes in ascending order so
// pushes are deterministic.
func (p *pusher) take() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.dirty) == 0 {
		return nil
	}
	indexes := make([]int, 0, len(p.dirty))
	for i := range p.dirty {
		indexes = append(indexes, i)
	}
	clear(p.dirty)
	sort.Ints(indexes)
	return indexes
}
