package cluster

// DBSCAN over points in the standardized feature space. Density-reachable
// points share a cluster label; points in sparse regions get the Noise
// label. No cluster count is chosen in advance.

// DBSCAN labels each point with a cluster ID (1..k) or Noise. Points are
// vectors of equal dimension; eps is the neighborhood radius and minSamples
// the minimum neighborhood size (the point itself included) for a core
// point. Returns the label slice and the number of discovered clusters.
//
// The output is deterministic: points are visited in input order, and
// cluster IDs are assigned in order of discovery.
func DBSCAN(points [][]float64, eps float64, minSamples int) (labels []int, clusters int) {
	n := len(points)
	if n == 0 {
		return nil, 0
	}

	labels = make([]int, n) // 0=unvisited, Noise, or >0 cluster ID
	clusterID := 0
	eps2 := eps * eps

	for i := 0; i < n; i++ {
		if labels[i] != 0 {
			continue // already processed
		}

		neighbors := regionQuery(points, i, eps2)

		if len(neighbors) < minSamples {
			labels[i] = Noise
			continue
		}

		clusterID++
		expandCluster(points, labels, i, neighbors, clusterID, eps2, minSamples)
	}

	return labels, clusterID
}

// expandCluster grows a cluster from a core point using a queue of
// reachable neighbors.
func expandCluster(points [][]float64, labels []int, seedIdx int, neighbors []int,
	clusterID int, eps2 float64, minSamples int) {

	labels[seedIdx] = clusterID

	for j := 0; j < len(neighbors); j++ {
		idx := neighbors[j]

		if labels[idx] == Noise {
			labels[idx] = clusterID // noise becomes a border point
		}

		if labels[idx] != 0 {
			continue // already processed
		}

		labels[idx] = clusterID
		newNeighbors := regionQuery(points, idx, eps2)

		if len(newNeighbors) >= minSamples {
			// Core point: its neighborhood joins the queue.
			neighbors = append(neighbors, newNeighbors...)
		}
	}
}

// regionQuery returns indices of all points within sqrt(eps2) of
// points[idx], including idx itself. The feature space is high-dimensional,
// so this is a linear scan with squared distances; the pooled table is
// capped per driver, keeping n small enough that no spatial index is
// needed.
func regionQuery(points [][]float64, idx int, eps2 float64) []int {
	p := points[idx]
	neighbors := []int{}

	for i, q := range points {
		var dist2 float64
		for d := range p {
			diff := q[d] - p[d]
			dist2 += diff * diff
			if dist2 > eps2 {
				break
			}
		}
		if dist2 <= eps2 {
			neighbors = append(neighbors, i)
		}
	}

	return neighbors
}
