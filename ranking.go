package newsthreads

import "sort"

// RankInCluster orders cluster members by the authority of their site,
// highest first. Equal scores keep input order. members is not modified.
func RankInCluster(members []Document, ratings Ratings) []Document {
	ranked := make([]Document, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ratings.Lookup(ranked[i].SiteName) > ratings.Lookup(ranked[j].SiteName)
	})
	return ranked
}

// InClusterRanking ranks every cluster of res. Singleton clusters are ranked
// too; dropping them is up to the caller.
func InClusterRanking(docs []Document, res Result, ratings Ratings) [][]Document {
	clusters := res.Documents(docs)
	for i, members := range clusters {
		clusters[i] = RankInCluster(members, ratings)
	}
	return clusters
}
