// Package catalog holds the immutable set of swappable engines and the
// eligibility rules gating which vehicle models may host them. It is built
// once at startup from the remote loader and is read-only afterwards.
package catalog

import (
	"context"
	"fmt"

	"github.com/driftworks/swaps/internal/api"
	"github.com/driftworks/swaps/pkg/core"
)

// Loader fetches the remote catalog document. Implemented by api.Client.
type Loader interface {
	FetchCatalog(ctx context.Context) (*api.CatalogPayload, error)
}

// Catalog indexes engine specs by ID and eligibility ratings by model key.
type Catalog struct {
	engines map[int]core.EngineSpec
	order   []int
	ratings map[string][]int

	// unrestricted is the developer escape hatch: every eligibility check
	// passes while it is set.
	unrestricted bool
}

// New builds a catalog from already-loaded data. Entries with the reserved
// stock ID are dropped; for duplicate IDs the first entry wins.
func New(engines []core.EngineSpec, rows []core.EligibilityRow, unrestricted bool) *Catalog {
	c := &Catalog{
		engines:      make(map[int]core.EngineSpec, len(engines)),
		ratings:      make(map[string][]int, len(rows)),
		unrestricted: unrestricted,
	}
	for _, e := range engines {
		if e.ID == core.StockEngineID {
			continue
		}
		if _, ok := c.engines[e.ID]; ok {
			continue
		}
		c.engines[e.ID] = e
		c.order = append(c.order, e.ID)
	}
	for _, r := range rows {
		c.ratings[r.ModelKey] = append(c.ratings[r.ModelKey], r.Rating)
	}
	return c
}

// Load fetches the catalog document once and builds the catalog from it.
// On failure the swap feature stays disabled for the whole session; callers
// must not retry.
func Load(ctx context.Context, loader Loader, unrestricted bool) (*Catalog, error) {
	payload, err := loader.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog load failed: %w", err)
	}
	return New(payload.Engines, payload.Eligibility, unrestricted), nil
}

// EngineByID returns the spec for an engine ID. The reserved stock ID and
// unknown IDs report false.
func (c *Catalog) EngineByID(id int) (core.EngineSpec, bool) {
	if id == core.StockEngineID {
		return core.EngineSpec{}, false
	}
	spec, ok := c.engines[id]
	return spec, ok
}

// Engines returns all specs in catalog order.
func (c *Catalog) Engines() []core.EngineSpec {
	out := make([]core.EngineSpec, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.engines[id])
	}
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.order)
}

// IsEligible reports whether a vehicle model qualifies for an engine: some
// eligibility row for the model must carry a rating at or above the spec's.
// In unrestricted mode every check passes.
func (c *Catalog) IsEligible(modelKey string, spec core.EngineSpec) bool {
	if c.unrestricted {
		return true
	}
	for _, rating := range c.ratings[modelKey] {
		if rating >= spec.Rating {
			return true
		}
	}
	return false
}

// Unrestricted reports whether the developer escape hatch is active.
func (c *Catalog) Unrestricted() bool {
	return c.unrestricted
}
