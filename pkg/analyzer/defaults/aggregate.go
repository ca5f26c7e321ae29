package defaults

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Status is the classification of one defaulted parameter.
type Status string

const (
	// StatusUsed means at least one matching call omits the argument.
	StatusUsed Status = "used"
	// StatusUnused means every matching call passes the argument explicitly.
	StatusUnused Status = "unused"
	// StatusIndeterminate means a matching call spreads *args or **kwargs.
	StatusIndeterminate Status = "indeterminate"
)

// Usage is the verdict for one defaulted parameter of a called definition.
type Usage struct {
	Definition *Definition
	Param      Parameter
	// Position is the parameter's index in Definition.Params.
	Position int
	Sites    int
	Status   Status
}

// Aggregation is the result of joining the catalog against all call sites.
type Aggregation struct {
	Usages        []Usage
	Definitions   int
	CallSites     int
	Called        int
	Indeterminate int
}

// Unused returns the usages classified unused.
func (a *Aggregation) Unused() []Usage {
	var out []Usage
	for _, u := range a.Usages {
		if u.Status == StatusUnused {
			out = append(out, u)
		}
	}
	return out
}

// Aggregate classifies every defaulted parameter of every cataloged
// definition that has at least one matching call site. Definitions nobody
// calls produce no usages.
func Aggregate(catalog *Catalog, calls []CallSite) *Aggregation {
	agg := &Aggregation{
		Usages:      make([]Usage, 0),
		Definitions: catalog.Len(),
		CallSites:   len(calls),
	}

	byCallee := make(map[string]*roaring.Bitmap)
	spread := roaring.New()
	for i := range calls {
		id := uint32(i)
		bm, ok := byCallee[calls[i].Callee]
		if !ok {
			bm = roaring.New()
			byCallee[calls[i].Callee] = bm
		}
		bm.Add(id)
		if calls[i].Spread() {
			spread.Add(id)
		}
	}

	for _, name := range catalog.Names() {
		sites, ok := byCallee[name]
		if !ok || sites.IsEmpty() {
			continue
		}
		siteCount := int(sites.GetCardinality())
		ambiguous := sites.Intersects(spread)

		for _, def := range catalog.Lookup(name) {
			agg.Called++
			for pos, p := range def.Params {
				if !p.HasDefault {
					continue
				}
				u := Usage{Definition: def, Param: p, Position: pos, Sites: siteCount}

				if ambiguous {
					u.Status = StatusIndeterminate
					agg.Indeterminate++
					agg.Usages = append(agg.Usages, u)
					continue
				}

				explicit := roaring.New()
				it := sites.Iterator()
				for it.HasNext() {
					id := it.Next()
					if calls[id].Supplies(p) {
						explicit.Add(id)
					}
				}

				if explicit.Equals(sites) {
					u.Status = StatusUnused
				} else {
					u.Status = StatusUsed
				}
				agg.Usages = append(agg.Usages, u)
			}
		}
	}

	return agg
}
