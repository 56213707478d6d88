package catalog

import (
	"sort"
	"sync"
	"time"
)

// SiteKey identifies one site within one organism. Site names are only
// guaranteed unique per organism.
type SiteKey struct {
	Organism string
	Site     string
}

// Catalog is the thread-safe registry of enumerations discovered from the
// booking service. It is written by the fetcher's catalog refresh and read
// by validation and by the availability fan-out.
type Catalog struct {
	mu           sync.RWMutex
	sites        map[SiteKey]int
	vehicleTypes map[string]int
	refreshedAt  time.Time
}

// New returns an empty catalog. It is not Ready until both enumerations
// have been replaced at least once.
func New() *Catalog {
	return &Catalog{
		sites:        make(map[SiteKey]int),
		vehicleTypes: make(map[string]int),
	}
}

// ReplaceSites swaps the site enumeration as a whole.
func (c *Catalog) ReplaceSites(sites map[SiteKey]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sites = make(map[SiteKey]int, len(sites))
	for k, id := range sites {
		c.sites[k] = id
	}
	c.refreshedAt = time.Now()
}

// ReplaceVehicleTypes swaps the vehicle-type enumeration as a whole.
func (c *Catalog) ReplaceVehicleTypes(types map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vehicleTypes = make(map[string]int, len(types))
	for name, id := range types {
		c.vehicleTypes[name] = id
	}
	c.refreshedAt = time.Now()
}

// Ready reports whether both enumerations have been loaded, i.e. whether
// an availability refresh can enumerate the key space.
func (c *Catalog) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sites) > 0 && len(c.vehicleTypes) > 0
}

// Sites returns all known (organism, site) pairs, sorted.
func (c *Catalog) Sites() []SiteKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]SiteKey, 0, len(c.sites))
	for k := range c.sites {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Organism != out[j].Organism {
			return out[i].Organism < out[j].Organism
		}
		return out[i].Site < out[j].Site
	})
	return out
}

// SiteNames returns the normalized site names for one organism, sorted.
func (c *Catalog) SiteNames(organism string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []string
	for k := range c.sites {
		if k.Organism == organism {
			out = append(out, k.Site)
		}
	}
	sort.Strings(out)
	return out
}

// VehicleTypes returns the normalized vehicle type names, sorted.
func (c *Catalog) VehicleTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.vehicleTypes))
	for name := range c.vehicleTypes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SiteID returns the upstream identifier of an (organism, site) pair.
func (c *Catalog) SiteID(organism, site string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.sites[SiteKey{Organism: organism, Site: site}]
	return id, ok
}

// VehicleTypeID returns the upstream identifier of a vehicle type.
func (c *Catalog) VehicleTypeID(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.vehicleTypes[name]
	return id, ok
}

// RefreshedAt returns when an enumeration was last replaced.
func (c *Catalog) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshedAt
}
