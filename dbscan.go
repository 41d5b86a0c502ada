package newsthreads

import "math"

// Dbscan is density-based clustering over cosine distance.
type Dbscan struct {
	Eps       float64
	MinPoints int
}

// NewDbscan returns a DBSCAN clusterer. A point is a core point when at least
// minPoints points (itself included) lie within eps of it.
func NewDbscan(eps float64, minPoints int) (*Dbscan, error) {
	if eps <= 0 || math.IsNaN(eps) {
		return nil, invalidInput("eps must be > 0, got %v", eps)
	}
	if minPoints < 1 {
		return nil, invalidInput("min points must be >= 1, got %d", minPoints)
	}
	return &Dbscan{Eps: eps, MinPoints: minPoints}, nil
}

// Cluster implements Clustering. Points not density-reachable from any core
// point are returned in Result.Noise. A border point reachable from several
// clusters belongs to the first one that reaches it in input order.
func (c *Dbscan) Cluster(docs []Document) (Result, error) {
	if len(docs) == 0 {
		return Result{}, nil
	}
	distances, err := distanceMatrixFor(docs)
	if err != nil {
		return Result{}, err
	}
	return c.ClusterDistances(distances), nil
}

// ClusterDistances implements Clustering.
func (c *Dbscan) ClusterDistances(distances *DistanceMatrix) Result {
	return resultFromLabels(dbscan(distances, c.Eps, c.MinPoints))
}

const (
	labelUndefined = -2
	labelNoise     = -1
)

// dbscan returns a cluster label per point, or labelNoise.
func dbscan(distances *DistanceMatrix, eps float64, minPts int) []int {
	n := distances.Len()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = labelUndefined
	}

	clusterID := 0
	for i := range n {
		if labels[i] != labelUndefined {
			continue
		}

		neighbors := findNeighbors(distances, i, eps)
		if len(neighbors) < minPts {
			labels[i] = labelNoise
			continue
		}

		labels[i] = clusterID
		expandCluster(distances, neighbors, clusterID, eps, minPts, labels)
		clusterID++
	}
	return labels
}

// findNeighbors returns every point within eps of pointIdx, including itself.
func findNeighbors(distances *DistanceMatrix, pointIdx int, eps float64) []int {
	var neighbors []int
	for j := range distances.Len() {
		if distances.At(pointIdx, j) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// expandCluster grows clusterID breadth-first from the neighbors of a core
// point. Only core points extend the frontier.
func expandCluster(distances *DistanceMatrix, seed []int, clusterID int, eps float64, minPts int, labels []int) {
	queue := append([]int(nil), seed...)
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]

		if labels[q] == labelNoise {
			// Previously seen as non-core; it is a border point of this cluster.
			labels[q] = clusterID
			continue
		}
		if labels[q] != labelUndefined {
			continue
		}
		labels[q] = clusterID

		qNeighbors := findNeighbors(distances, q, eps)
		if len(qNeighbors) >= minPts {
			for _, nb := range qNeighbors {
				if labels[nb] == labelUndefined || labels[nb] == labelNoise {
					queue = append(queue, nb)
				}
			}
		}
	}
}
