package newsthreads

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDbscanNoise(t *testing.T) {
	docs := docsFromEmbeddings(unitAt(0), unitAt(0.01), unitAt(1.5))

	c, err := NewDbscan(0.1, 2)
	require.NoError(t, err)
	res, err := c.Cluster(docs)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1}}, res.Clusters)
	assert.Equal(t, []int{2}, res.Noise)
}

func TestDbscanBorderPoint(t *testing.T) {
	// Points 0..2 are dense; point 3 is within eps of point 2 only, so it is a
	// border point and joins the cluster. Point 4 is isolated.
	docs := docsFromEmbeddings(unitAt(0), unitAt(0.05), unitAt(0.1), unitAt(0.25), unitAt(2))
	eps := 1 - math.Cos(0.16)

	c, err := NewDbscan(eps, 3)
	require.NoError(t, err)
	res, err := c.Cluster(docs)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1, 2, 3}}, res.Clusters)
	assert.Equal(t, []int{4}, res.Noise)
}

func TestDbscanNoiseLaterReached(t *testing.T) {
	// Point 0 is visited first and is not core, but a later core point reaches it.
	docs := docsFromEmbeddings(unitAt(0.25), unitAt(0), unitAt(0.05), unitAt(0.1))
	eps := 1 - math.Cos(0.16)

	c, err := NewDbscan(eps, 3)
	require.NoError(t, err)
	res, err := c.Cluster(docs)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1, 2, 3}}, res.Clusters)
	assert.Empty(t, res.Noise)
}

func TestDbscanMinPointsOne(t *testing.T) {
	// Every point is core, so clusters are connected components of the eps graph.
	docs := spreadDocs(40)
	m, err := distanceMatrixFor(docs)
	require.NoError(t, err)

	for _, eps := range []float64{1e-4, 1e-3, 0.01, 0.1} {
		c, err := NewDbscan(eps, 1)
		require.NoError(t, err)
		res, err := c.Cluster(docs)
		require.NoError(t, err)

		assert.Empty(t, res.Noise)
		assert.Equal(t, bruteForceSingleLinkage(m, eps).Clusters, res.Clusters, "eps %v", eps)
	}
}

func TestDbscanInvariants(t *testing.T) {
	docs := spreadDocs(50)
	m, err := distanceMatrixFor(docs)
	require.NoError(t, err)

	for _, tt := range []struct {
		eps       float64
		minPoints int
	}{
		{0.001, 2},
		{0.005, 3},
		{0.02, 4},
		{0.1, 6},
	} {
		c, err := NewDbscan(tt.eps, tt.minPoints)
		require.NoError(t, err)
		res, err := c.Cluster(docs)
		require.NoError(t, err)
		require.NoError(t, isPartition(res, len(docs)))

		isCore := func(i int) bool {
			return len(findNeighbors(m, i, tt.eps)) >= tt.minPoints
		}

		for _, cluster := range res.Clusters {
			hasCore := false
			for _, i := range cluster {
				if isCore(i) {
					hasCore = true
				}
				near := false
				for _, j := range cluster {
					if isCore(j) && m.At(i, j) <= tt.eps {
						near = true
						break
					}
				}
				assert.True(t, near, "point %d is not within eps of a core point of its cluster", i)
			}
			assert.True(t, hasCore)
		}

		for _, i := range res.Noise {
			assert.False(t, isCore(i), "noise point %d is a core point", i)
		}
	}
}

func TestDbscanDeterministic(t *testing.T) {
	docs := spreadDocs(30)
	c, err := NewDbscan(0.01, 2)
	require.NoError(t, err)

	first, err := c.Cluster(docs)
	require.NoError(t, err)
	again, err := c.Cluster(docs)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestDbscanEmpty(t *testing.T) {
	c, err := NewDbscan(0.3, 1)
	require.NoError(t, err)
	res, err := c.Cluster(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.Noise)
}

func TestNewDbscanInvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		eps       float64
		minPoints int
	}{
		{"zero eps", 0, 1},
		{"negative eps", -0.1, 1},
		{"nan eps", math.NaN(), 1},
		{"zero min points", 0.3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDbscan(tt.eps, tt.minPoints)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
