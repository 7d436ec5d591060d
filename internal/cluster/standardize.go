package cluster

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// nonFiniteClamp is the finite sentinel substituted for infinite feature
// values before standardization. Undefined values become 0.
const nonFiniteClamp = 999999

// clampNonFinite replaces NaN with 0 and ±Inf with ±nonFiniteClamp, in
// place. No row is dropped at this stage.
func clampNonFinite(rows [][]float64) {
	for _, row := range rows {
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
}

// standardize rescales each column to zero mean and unit variance over the
// pooled table, returning a new matrix. A zero-variance column is left at
// zero rather than dividing by zero.
func standardize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	dims := len(rows[0])

	col := make([]float64, len(rows))
	means := make([]float64, dims)
	stds := make([]float64, dims)
	for d := 0; d < dims; d++ {
		for i, row := range rows {
			col[i] = row[d]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		means[d] = mean
		stds[d] = std
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, dims)
		for d, v := range row {
			scaled[d] = (v - means[d]) / stds[d]
		}
		out[i] = scaled
	}
	return out
}
