package cluster

// Default DBSCAN parameters, used when a track has no specific tuning.
const (
	// DefaultEps is the default neighborhood radius in standardized feature
	// units.
	DefaultEps = 0.4
	// DefaultMinSamples is the default minimum neighborhood size for a core
	// point.
	DefaultMinSamples = 45
	// DefaultSamplesPerDriver caps each driver's contribution to the pooled
	// table before clustering.
	DefaultSamplesPerDriver = 800
	// DefaultSampleSeed seeds the per-driver subsample so repeated runs
	// produce identical tables.
	DefaultSampleSeed = 42
)

// Noise is the cluster label assigned to points that belong to no
// discovered pattern.
const Noise = -1

// Params contains parameters for the DBSCAN clustering algorithm.
type Params struct {
	Eps        float64 `json:"eps"`         // neighborhood radius (standardized units)
	MinSamples int     `json:"min_samples"` // minimum points to form a core neighborhood
}

// DefaultParams returns the fallback DBSCAN parameters used for tracks
// without specific tuning.
func DefaultParams() Params {
	return Params{Eps: DefaultEps, MinSamples: DefaultMinSamples}
}
