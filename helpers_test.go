package newsthreads

import (
	"fmt"
	"math"
)

// unitAt returns a 2D unit vector at angle theta (radians).
func unitAt(theta float64) []float32 {
	return []float32{float32(math.Cos(theta)), float32(math.Sin(theta))}
}

// docsFromEmbeddings wraps embeddings into documents with sequential IDs.
func docsFromEmbeddings(embeddings ...[]float32) []Document {
	docs := make([]Document, len(embeddings))
	for i, e := range embeddings {
		docs[i] = Document{
			ID:        fmt.Sprintf("doc%d", i),
			Title:     fmt.Sprintf("Title %d", i),
			Language:  "en",
			IsNews:    true,
			Embedding: e,
		}
	}
	return docs
}

// spreadDocs returns n documents on the unit circle with deterministic,
// irregular spacing so that groups form at different thresholds.
func spreadDocs(n int) []Document {
	embeddings := make([][]float32, n)
	theta := 0.0
	for i := range n {
		// Gaps cycle between tight, medium and wide.
		theta += []float64{0.01, 0.05, 0.2, 0.03, 0.5}[i%5] + float64(i%3)*0.004
		embeddings[i] = unitAt(theta)
	}
	return docsFromEmbeddings(embeddings...)
}

// isPartition checks that every index in [0, n) appears exactly once
// across clusters and noise.
func isPartition(res Result, n int) error {
	seen := make([]int, n)
	for _, c := range res.Clusters {
		if len(c) == 0 {
			return fmt.Errorf("empty cluster")
		}
		for _, idx := range c {
			seen[idx]++
		}
	}
	for _, idx := range res.Noise {
		seen[idx]++
	}
	for i, count := range seen {
		if count != 1 {
			return fmt.Errorf("index %d appears %d times", i, count)
		}
	}
	return nil
}

// bruteForceSingleLinkage joins every pair within threshold and returns the
// connected components as a Result.
func bruteForceSingleLinkage(m *DistanceMatrix, threshold float64) Result {
	n := m.Len()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	next := 0
	for i := range n {
		if labels[i] >= 0 {
			continue
		}
		labels[i] = next
		stack := []int{i}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for q := range n {
				if labels[q] < 0 && m.At(p, q) <= threshold {
					labels[q] = next
					stack = append(stack, q)
				}
			}
		}
		next++
	}
	return resultFromLabels(labels)
}
