package catalog

import (
	"fmt"
	"sort"
	"sync/atomic"
)

type snapshot struct {
	byType map[string]OperatorSchema
	order  []string
}

// Catalog is a concurrency-safe, replaceable set of operator schemas
type Catalog struct {
	current atomic.Pointer[snapshot]
}

// New creates a catalog holding the given schemas
func New(schemas []OperatorSchema) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Replace(schemas); err != nil {
		return nil, err
	}
	return c, nil
}

// Replace validates schemas and swaps them in. On error the previous
// snapshot stays in place.
func (c *Catalog) Replace(schemas []OperatorSchema) error {
	next := &snapshot{byType: make(map[string]OperatorSchema, len(schemas))}
	for _, s := range schemas {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := next.byType[s.OperatorType]; dup {
			return fmt.Errorf("%w: operator type %q listed twice", ErrInvalidSchema, s.OperatorType)
		}
		next.byType[s.OperatorType] = s
		next.order = append(next.order, s.OperatorType)
	}
	c.current.Store(next)
	return nil
}

// Lookup returns the schema for an operator type
func (c *Catalog) Lookup(operatorType string) (OperatorSchema, bool) {
	snap := c.current.Load()
	if snap == nil {
		return OperatorSchema{}, false
	}
	s, ok := snap.byType[operatorType]
	return s, ok
}

// Schemas returns all schemas in the order they were listed
func (c *Catalog) Schemas() []OperatorSchema {
	snap := c.current.Load()
	if snap == nil {
		return nil
	}
	out := make([]OperatorSchema, 0, len(snap.order))
	for _, t := range snap.order {
		out = append(out, snap.byType[t])
	}
	return out
}

// Groups returns schemas keyed by group name, each group sorted by type
func (c *Catalog) Groups() map[string][]OperatorSchema {
	groups := make(map[string][]OperatorSchema)
	for _, s := range c.Schemas() {
		groups[s.OperatorGroupName] = append(groups[s.OperatorGroupName], s)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].OperatorType < g[j].OperatorType })
	}
	return groups
}

// Len returns the number of operator types
func (c *Catalog) Len() int {
	snap := c.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.order)
}
