package analyze

import "github.com/drblury/errweaver/source"

// Cache memoizes per-routine raise-site sets for one compile run. It is
// created empty at the start of a run, passed explicitly to the walker, and
// discarded afterwards; it is never persisted and never shared between
// runs. The busy set is the in-progress marker that bounds recursion on
// cyclic call graphs.
type Cache struct {
	sites map[source.RoutineID][]RaiseSite
	busy  map[source.RoutineID]struct{}
	walks int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		sites: map[source.RoutineID][]RaiseSite{},
		busy:  map[source.RoutineID]struct{}{},
	}
}

// Lookup returns the memoized raise sites for a completed walk.
func (c *Cache) Lookup(id source.RoutineID) ([]RaiseSite, bool) {
	sites, ok := c.sites[id]
	return sites, ok
}

// InProgress reports whether the routine is currently being walked.
func (c *Cache) InProgress(id source.RoutineID) bool {
	_, ok := c.busy[id]
	return ok
}

// Walks reports how many routine bodies were actually traversed, excluding
// cache hits.
func (c *Cache) Walks() int {
	return c.walks
}

func (c *Cache) begin(id source.RoutineID) {
	c.busy[id] = struct{}{}
	c.walks++
}

func (c *Cache) finish(id source.RoutineID, sites []RaiseSite) {
	delete(c.busy, id)
	c.sites[id] = sites
}
