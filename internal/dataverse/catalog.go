package dataverse

import "sync"

// Catalog is the in-memory store of synthesized operations, keyed by endpoint
// id. ReplaceAll is the only mutator and swaps a fully built collection into
// place, so readers never observe a half-replaced catalog. Entries for
// different endpoints are independent.
type Catalog struct {
	mu        sync.RWMutex
	endpoints map[string]*catalogEntry
}

type catalogEntry struct {
	ops    []Operation
	byName map[string]Operation
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{endpoints: make(map[string]*catalogEntry)}
}

// ReplaceAll atomically installs the complete operation set for an endpoint,
// discarding whatever was there before. Name uniqueness within the set is an
// invariant established by the synthesizer and is not re-validated here; a
// duplicate name would resolve last-write-wins in the index.
func (c *Catalog) ReplaceAll(endpointID string, ops []Operation) {
	entry := &catalogEntry{
		ops:    make([]Operation, len(ops)),
		byName: make(map[string]Operation, len(ops)),
	}
	copy(entry.ops, ops)
	for _, op := range entry.ops {
		entry.byName[op.Name] = op
	}

	c.mu.Lock()
	c.endpoints[endpointID] = entry
	c.mu.Unlock()
}

// Get returns the operation set for an endpoint in synthesis order. The
// second return reports whether the endpoint has ever been introspected.
func (c *Catalog) Get(endpointID string) ([]Operation, bool) {
	c.mu.RLock()
	entry, ok := c.endpoints[endpointID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return entry.ops, true
}

// FindByName resolves one operation by its unique name.
func (c *Catalog) FindByName(endpointID, name string) (Operation, bool) {
	c.mu.RLock()
	entry, ok := c.endpoints[endpointID]
	c.mu.RUnlock()
	if !ok {
		return Operation{}, false
	}
	op, ok := entry.byName[name]
	return op, ok
}

// Remove discards the catalog entry for an endpoint.
func (c *Catalog) Remove(endpointID string) {
	c.mu.Lock()
	delete(c.endpoints, endpointID)
	c.mu.Unlock()
}

// Size returns the number of operations held for an endpoint.
func (c *Catalog) Size(endpointID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.endpoints[endpointID]; ok {
		return len(entry.ops)
	}
	return 0
}

// GroupedByRecordType returns a derived view of an endpoint's operations
// grouped by record type, computed on read. Group contents preserve
// synthesis order.
func (c *Catalog) GroupedByRecordType(endpointID string) map[string][]Operation {
	ops, ok := c.Get(endpointID)
	if !ok {
		return nil
	}
	grouped := make(map[string][]Operation)
	for _, op := range ops {
		grouped[op.RecordType] = append(grouped[op.RecordType], op)
	}
	return grouped
}
