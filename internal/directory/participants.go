// Package directory holds the process-scoped caches: participant attributes
// keyed by upload id, and the claimed-username registry. Both live for the
// whole tournament and are cleared only by an explicit reset.
package directory

import "sync"

// Participants is a write-through cache of participant attributes keyed by
// the authority's upload id. It never evicts and has no TTL; names are
// assumed immutable for the tournament's duration. Note the finals stage may
// report a different upload id namespace than the group stage, so the same
// entrant can occupy two entries; that only costs an extra remote
// lookup, never wrong data.
type Participants struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewParticipants() *Participants {
	return &Participants{names: make(map[string]string)}
}

func (p *Participants) Name(uploadID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.names[uploadID]
	return name, ok
}

func (p *Participants) SetName(uploadID, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[uploadID] = name
}

func (p *Participants) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.names)
}

// Reset drops every cached attribute.
func (p *Participants) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = make(map[string]string)
}
