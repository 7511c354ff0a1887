package page

import (
	"sync"

	"github.com/samber/lo"
)

// Registry holds every configured page by id and role, in the order pages
// were added. Adding an id twice within a role is a no-op.
type Registry struct {
	mu      sync.RWMutex
	sources map[int64]*SourcePage
	targets map[int64]*TargetPage
	srcIDs  []int64
	tgtIDs  []int64
}

func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[int64]*SourcePage),
		targets: make(map[int64]*TargetPage),
	}
}

// AddSource reports whether p was added.
func (r *Registry) AddSource(p *SourcePage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[p.ID()]; ok {
		return false
	}
	r.sources[p.ID()] = p
	r.srcIDs = append(r.srcIDs, p.ID())
	return true
}

// AddTarget reports whether p was added.
func (r *Registry) AddTarget(p *TargetPage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.targets[p.ID()]; ok {
		return false
	}
	r.targets[p.ID()] = p
	r.tgtIDs = append(r.tgtIDs, p.ID())
	return true
}

func (r *Registry) ContainsSource(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[id]
	return ok
}

func (r *Registry) ContainsTarget(id int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.targets[id]
	return ok
}

func (r *Registry) Source(id int64) (*SourcePage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.sources[id]
	return p, ok
}

func (r *Registry) SourcePages() []*SourcePage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.srcIDs, func(id int64, _ int) *SourcePage { return r.sources[id] })
}

func (r *Registry) TargetPages() []*TargetPage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.tgtIDs, func(id int64, _ int) *TargetPage { return r.targets[id] })
}
