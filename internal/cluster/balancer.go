package cluster

import (
	"math/rand"
	"sort"

	"github.com/paddock-data/drivestyle/internal/telemetry"
)

// balance caps each driver's contribution to the pooled table. Drivers at
// or under the cap keep all rows; others contribute a uniform random
// subsample without replacement, drawn with a fresh generator per driver so
// the result does not depend on driver order. Selected rows keep their
// temporal order. Driver blocks appear in first-seen order.
func balance(rows []telemetry.FeatureRow, limit int, seed int64) []telemetry.FeatureRow {
	byDriver := make(map[string][]int)
	var order []string
	for i, r := range rows {
		if _, seen := byDriver[r.Driver]; !seen {
			order = append(order, r.Driver)
		}
		byDriver[r.Driver] = append(byDriver[r.Driver], i)
	}

	out := make([]telemetry.FeatureRow, 0, len(rows))
	for _, driver := range order {
		idx := byDriver[driver]
		if len(idx) > limit {
			rng := rand.New(rand.NewSource(seed))
			perm := rng.Perm(len(idx))[:limit]
			sort.Ints(perm)
			picked := make([]int, limit)
			for i, p := range perm {
				picked[i] = idx[p]
			}
			idx = picked
		}
		for _, i := range idx {
			out = append(out, rows[i])
		}
	}
	return out
}
