package newsthreads

import "fmt"

// Clustering partitions documents by their embeddings.
type Clustering interface {
	Cluster(docs []Document) (Result, error)
	// ClusterDistances partitions the points of a prebuilt distance matrix.
	ClusterDistances(distances *DistanceMatrix) Result
}

// Result is a partition of document indices. Every index appears in exactly
// one cluster or in Noise. Members of a cluster are in ascending order and
// clusters are ordered by their first member.
type Result struct {
	Clusters [][]int
	Noise    []int
}

// Documents resolves cluster indices back to documents.
func (r Result) Documents(docs []Document) [][]Document {
	out := make([][]Document, len(r.Clusters))
	for i, cluster := range r.Clusters {
		members := make([]Document, len(cluster))
		for j, idx := range cluster {
			members[j] = docs[idx]
		}
		out[i] = members
	}
	return out
}

// Labels returns, for each of n documents, the index of its cluster or -1 for noise.
func (r Result) Labels(n int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for cid, cluster := range r.Clusters {
		for _, idx := range cluster {
			labels[idx] = cid
		}
	}
	return labels
}

// resultFromLabels builds a Result from per-point labels where negative labels
// mark noise. Clusters are renumbered in order of first appearance.
func resultFromLabels(labels []int) Result {
	var res Result
	index := make(map[int]int)
	for i, label := range labels {
		if label < 0 {
			res.Noise = append(res.Noise, i)
			continue
		}
		cid, ok := index[label]
		if !ok {
			cid = len(res.Clusters)
			index[label] = cid
			res.Clusters = append(res.Clusters, nil)
		}
		res.Clusters[cid] = append(res.Clusters[cid], i)
	}
	return res
}

// Clustering type names accepted by NewClustering.
const (
	ClusteringSlink  = "slink"
	ClusteringDbscan = "dbscan"
)

// ClusteringOptions selects a clustering strategy and carries its parameters.
type ClusteringOptions struct {
	Type              string
	DistanceThreshold float64
	Eps               float64
	MinPoints         int
}

// DefaultClusteringOptions returns the defaults of the command line tool.
func DefaultClusteringOptions() ClusteringOptions {
	return ClusteringOptions{
		Type:              ClusteringSlink,
		DistanceThreshold: 0.05,
		Eps:               0.3,
		MinPoints:         1,
	}
}

// NewClustering returns the strategy named by opts.Type.
func NewClustering(opts ClusteringOptions) (Clustering, error) {
	switch opts.Type {
	case ClusteringSlink:
		return NewSlinkClustering(opts.DistanceThreshold)
	case ClusteringDbscan:
		return NewDbscan(opts.Eps, opts.MinPoints)
	default:
		return nil, invalidInput("unknown clustering type %q (want %s or %s)", opts.Type, ClusteringSlink, ClusteringDbscan)
	}
}

// distanceMatrixFor validates document embeddings and builds their distance matrix.
func distanceMatrixFor(docs []Document) (*DistanceMatrix, error) {
	points := make([][]float32, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return nil, invalidInput("document %d (%s) has no embedding", i, doc.ID)
		}
		points[i] = doc.Embedding
	}
	m, err := NewDistanceMatrix(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build distance matrix: %w", err)
	}
	return m, nil
}

