package newsthreads

import "math"

// SlinkClustering is single-linkage hierarchical clustering (Sibson's SLINK)
// with the dendrogram cut at a fixed distance threshold.
type SlinkClustering struct {
	DistanceThreshold float64
}

// NewSlinkClustering returns a SLINK clusterer. Two documents end up in the
// same cluster iff a chain of documents links them with every step at cosine
// distance <= distanceThreshold.
func NewSlinkClustering(distanceThreshold float64) (*SlinkClustering, error) {
	if distanceThreshold < 0 || math.IsNaN(distanceThreshold) {
		return nil, invalidInput("distance threshold must be >= 0, got %v", distanceThreshold)
	}
	return &SlinkClustering{DistanceThreshold: distanceThreshold}, nil
}

// Cluster implements Clustering. The result never contains noise.
func (c *SlinkClustering) Cluster(docs []Document) (Result, error) {
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
func (c *SlinkClustering) ClusterDistances(distances *DistanceMatrix) Result {
	if distances.Len() == 0 {
		return Result{}
	}
	pi, lambda := slink(distances)
	return cutDendrogram(pi, lambda, c.DistanceThreshold)
}

// slink computes the pointer representation of the single-linkage dendrogram:
// point i joins the cluster of pi[i] (pi[i] > i) at height lambda[i]. The last
// point points to itself at +Inf.
func slink(distances *DistanceMatrix) (pi []int, lambda []float64) {
	n := distances.Len()
	pi = make([]int, n)
	lambda = make([]float64, n)
	m := make([]float64, n)

	for k := range n {
		pi[k] = k
		lambda[k] = math.Inf(1)

		for i := range k {
			m[i] = distances.At(i, k)
		}

		for i := range k {
			if lambda[i] >= m[i] {
				m[pi[i]] = math.Min(m[pi[i]], lambda[i])
				lambda[i] = m[i]
				pi[i] = k
			} else {
				m[pi[i]] = math.Min(m[pi[i]], m[i])
			}
		}

		for i := range k {
			if lambda[i] >= lambda[pi[i]] {
				pi[i] = k
			}
		}
	}
	return pi, lambda
}

// cutDendrogram flattens the pointer representation at threshold by joining
// every point with pi[i] whenever lambda[i] <= threshold.
func cutDendrogram(pi []int, lambda []float64, threshold float64) Result {
	n := len(pi)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for i := range n {
		if lambda[i] <= threshold {
			a, b := find(i), find(pi[i])
			if a != b {
				// Keep the smaller index as root so labels are stable.
				if b < a {
					a, b = b, a
				}
				parent[b] = a
			}
		}
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = find(i)
	}
	return resultFromLabels(labels)
}
