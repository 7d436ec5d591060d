// Package similarity compares driver profiles: pairwise cosine similarity
// and Euclidean distance over standardized profile vectors, plus a
// 2-component principal-component projection for visualization.
package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/paddock-data/drivestyle/internal/profile"
	"github.com/paddock-data/drivestyle/internal/telemetry"
)

// nonFiniteClamp is the finite sentinel substituted for infinite profile
// values before standardization.
const nonFiniteClamp = 999999

// Result holds the pairwise comparison of a track's driver profiles. All
// matrices and the projection are indexed consistently with Drivers.
type Result struct {
	// Drivers is the ordered driver list the matrices index.
	Drivers []string

	// Similarity is the symmetric cosine-similarity matrix, diagonal 1.
	Similarity [][]float64
	// Distance is the symmetric Euclidean-distance matrix, diagonal 0.
	Distance [][]float64

	// Projection holds one 2-D (or fewer, when drivers are scarce)
	// coordinate per driver.
	Projection [][]float64
	// VarianceExplained is the fraction of total variance captured by each
	// retained component.
	VarianceExplained []float64
}

// Compare standardizes the profile vectors across drivers and computes the
// pairwise matrices and projection. Fewer than two drivers is not enough to
// compare: the result carries the driver list but empty matrices, and the
// error wraps telemetry.ErrInsufficientData so callers can check before
// indexing.
func Compare(drivers []string, profiles map[string]profile.Profile) (Result, error) {
	res := Result{Drivers: drivers}
	if len(drivers) < 2 {
		return res, fmt.Errorf("similarity needs at least 2 drivers, have %d: %w",
			len(drivers), telemetry.ErrInsufficientData)
	}

	n := len(drivers)
	d := len(profile.FieldNames)

	rows := make([][]float64, n)
	for i, driver := range drivers {
		rows[i] = profiles[driver].Vector()
		clampNonFinite(rows[i])
	}
	scaled := standardizeColumns(rows)

	res.Similarity = make([][]float64, n)
	res.Distance = make([][]float64, n)
	for i := 0; i < n; i++ {
		res.Similarity[i] = make([]float64, n)
		res.Distance[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		res.Similarity[i][i] = 1
		for j := i + 1; j < n; j++ {
			sim := cosine(scaled[i], scaled[j])
			dist := euclidean(scaled[i], scaled[j])
			res.Similarity[i][j] = sim
			res.Similarity[j][i] = sim
			res.Distance[i][j] = dist
			res.Distance[j][i] = dist
		}
	}

	res.Projection, res.VarianceExplained = project(scaled, n, d)

	return res, nil
}

// project computes the principal-component projection of the standardized
// profiles. Components are capped at min(2, features, drivers) so the
// projection stays well-defined when drivers are few.
func project(scaled [][]float64, n, d int) ([][]float64, []float64) {
	comps := 2
	if d < comps {
		comps = d
	}
	if n < comps {
		comps = n
	}

	data := mat.NewDense(n, d, nil)
	for i, row := range scaled {
		data.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, nil
	}

	vars := pc.VarsTo(nil)
	if comps > len(vars) {
		comps = len(vars)
	}
	total := floats.Sum(vars)

	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	// Columns are already centered by standardization, so the projection is
	// a plain product with the leading component directions.
	var proj mat.Dense
	proj.Mul(data, vecs.Slice(0, d, 0, comps))

	coords := make([][]float64, n)
	for i := range coords {
		coords[i] = make([]float64, comps)
		mat.Row(coords[i], i, &proj)
	}

	explained := make([]float64, comps)
	for i := range explained {
		if total > 0 {
			explained[i] = vars[i] / total
		}
	}

	return coords, explained
}

func cosine(a, b []float64) float64 {
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func clampNonFinite(row []float64) {
	for i, v := range row {
		switch {
		case math.IsNaN(v):
			row[i] = 0
		case math.IsInf(v, 1):
			row[i] = nonFiniteClamp
		case math.IsInf(v, -1):
			row[i] = -nonFiniteClamp
		}
	}
}

// standardizeColumns z-scores each profile feature across the driver set,
// so no single large-magnitude feature dominates the cosine or distance.
// Zero-variance columns map to zero.
func standardizeColumns(rows [][]float64) [][]float64 {
	n := len(rows)
	d := len(rows[0])

	col := make([]float64, n)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, d)
	}

	for j := 0; j < d; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		for i, row := range rows {
			out[i][j] = (row[j] - mean) / std
		}
	}
	return out
}
