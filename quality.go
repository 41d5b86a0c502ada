package newsthreads

// silhouetteScore returns the mean silhouette coefficient of the points that
// belong to a cluster, using the precomputed distances. Points in singleton
// clusters score 0; noise is ignored. With fewer than two clusters the score is 0.
func silhouetteScore(distances *DistanceMatrix, res Result) float64 {
	if len(res.Clusters) <= 1 {
		return 0.0
	}

	totalSilhouette := 0.0
	count := 0

	for cid, cluster := range res.Clusters {
		for _, i := range cluster {
			count++
			if len(cluster) == 1 {
				continue
			}

			// Mean distance to the rest of the point's own cluster.
			a := 0.0
			for _, j := range cluster {
				if j != i {
					a += distances.At(i, j)
				}
			}
			a /= float64(len(cluster) - 1)

			// Smallest mean distance to any other cluster.
			b := -1.0
			for other, members := range res.Clusters {
				if other == cid {
					continue
				}
				sum := 0.0
				for _, j := range members {
					sum += distances.At(i, j)
				}
				mean := sum / float64(len(members))
				if b < 0 || mean < b {
					b = mean
				}
			}

			s := 0.0
			if maxAB := max(a, b); maxAB > 0 {
				s = (b - a) / maxAB
			}
			totalSilhouette += s
		}
	}

	if count == 0 {
		return 0.0
	}
	return totalSilhouette / float64(count)
}
