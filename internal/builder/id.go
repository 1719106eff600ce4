package builder

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// IDGenerator yields operator ids. Ids must not repeat for the lifetime of
// the generator.
type IDGenerator interface {
	Next() string
}

// SequenceGenerator yields prefix-1, prefix-2, ...
type SequenceGenerator struct {
	prefix string
	n      atomic.Uint64
}

// NewSequenceGenerator returns a generator with the given prefix, or
// "operator" when prefix is empty
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "operator"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Next returns the next id in the sequence
func (g *SequenceGenerator) Next() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

// FixedGenerator replays a fixed list of ids, then falls back to a sequence
type FixedGenerator struct {
	mu       sync.Mutex
	ids      []string
	fallback *SequenceGenerator
}

// NewFixedGenerator returns a generator that hands out ids in order
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids, fallback: NewSequenceGenerator("fixed")}
}

// Next returns the next fixed id
func (g *FixedGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ids) == 0 {
		return g.fallback.Next()
	}
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id
}
