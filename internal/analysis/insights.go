package analysis

import (
	"log"
	"math"
	"sort"

	"github.com/paddock-data/drivestyle/internal/profile"
)

// Insights are the headline findings for a track: the closest pair of
// driving styles and the two drivers at each end of the throttle spectrum.
type Insights struct {
	// MostSimilarPair holds the two drivers with the highest pairwise
	// cosine similarity, empty when fewer than two drivers were compared.
	// Ties keep the first pair encountered scanning i<j over the driver
	// list.
	MostSimilarPair  [2]string
	MostSimilarScore float64

	// MostAggressive are the top two drivers by throttle_aggression,
	// descending. Ties keep driver-list order.
	MostAggressive []string
	// Smoothest are the top two drivers by throttle_smoothness, descending.
	Smoothest []string
}

// ExtractInsights derives the headline insights from a track result.
// Safe to call with an insufficient-data result; it returns whatever can be
// derived from the available profiles.
func ExtractInsights(res *TrackResult) Insights {
	var in Insights

	if !res.InsufficientDrivers && len(res.Drivers) >= 2 {
		best := math.Inf(-1)
		for i := 0; i < len(res.Drivers); i++ {
			for j := i + 1; j < len(res.Drivers); j++ {
				if sim := res.Similarity.Similarity[i][j]; sim > best {
					best = sim
					in.MostSimilarPair = [2]string{res.Drivers[i], res.Drivers[j]}
					in.MostSimilarScore = sim
				}
			}
		}
	}

	in.MostAggressive = topTwoBy(res.Drivers, res.Profiles, func(p profile.Profile) float64 {
		return p.ThrottleAggression
	})
	in.Smoothest = topTwoBy(res.Drivers, res.Profiles, func(p profile.Profile) float64 {
		return p.ThrottleSmoothness
	})

	return in
}

// topTwoBy returns up to two drivers ranked descending by the given metric,
// ties broken by driver-list order.
func topTwoBy(drivers []string, profiles map[string]profile.Profile, metric func(profile.Profile) float64) []string {
	ranked := append([]string(nil), drivers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return metric(profiles[ranked[i]]) > metric(profiles[ranked[j]])
	})
	if len(ranked) > 2 {
		ranked = ranked[:2]
	}
	return ranked
}

// LogInsights writes the track's insights to the log in the report format
// used by the CLI.
func (res *TrackResult) LogInsights() {
	log.Printf("%s: %d drivers analyzed", res.Track, len(res.Drivers))
	if res.InsufficientDrivers || len(res.Drivers) < 2 {
		log.Printf("%s: insufficient data for detailed insights", res.Track)
		return
	}
	in := res.Insights
	log.Printf("%s: most similar driving styles: %s & %s (%.3f)",
		res.Track, in.MostSimilarPair[0], in.MostSimilarPair[1], in.MostSimilarScore)
	log.Printf("%s: most aggressive drivers: %v", res.Track, in.MostAggressive)
	log.Printf("%s: smoothest drivers: %v", res.Track, in.Smoothest)
}
