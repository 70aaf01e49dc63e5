package diarize

import "math"

// chooseClusters labels embeddings with the agglomerative clustering
// whose cluster count k in [2, maxClusters] maximizes the silhouette
// score. If no k achieves positive separation, everything stays in one
// cluster.
func chooseClusters(embeddings [][]float64, maxClusters int) []int {
	n := len(embeddings)
	labels := make([]int, n)
	if n < 2 || maxClusters < 2 {
		return labels
	}
	if maxClusters > n {
		maxClusters = n
	}

	bestScore := 0.0
	distances := distanceMatrix(embeddings)
	for k := 2; k <= maxClusters; k++ {
		candidate := agglomerate(distances, k)
		score := silhouetteScore(distances, candidate, k)
		if score > bestScore {
			bestScore = score
			copy(labels, candidate)
		}
	}
	return labels
}

func distanceMatrix(embeddings [][]float64) [][]float64 {
	n := len(embeddings)
	distances := make([][]float64, n)
	for i := range distances {
		distances[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := cosineDistance(embeddings[i], embeddings[j])
			distances[i][j] = d
			distances[j][i] = d
		}
	}
	return distances
}

func cosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// agglomerate performs average-linkage clustering down to k clusters,
// returning a compacted label per point.
func agglomerate(distances [][]float64, k int) []int {
	n := len(distances)
	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > k {
		bestI, bestJ := 0, 1
		bestDist := math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				d := averageLinkage(distances, clusters[i], clusters[j])
				if d < bestDist {
					bestDist = d
					bestI, bestJ = i, j
				}
			}
		}
		clusters[bestI] = append(clusters[bestI], clusters[bestJ]...)
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
	}

	labels := make([]int, n)
	for label, members := range clusters {
		for _, point := range members {
			labels[point] = label
		}
	}
	return labels
}

func averageLinkage(distances [][]float64, a, b []int) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += distances[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

// silhouetteScore computes the mean silhouette over all points.
// Singleton clusters contribute zero.
func silhouetteScore(distances [][]float64, labels []int, k int) float64 {
	n := len(labels)
	sizes := make([]int, k)
	for _, label := range labels {
		sizes[label]++
	}

	var total float64
	for i := 0; i < n; i++ {
		own := labels[i]
		if sizes[own] < 2 {
			continue
		}

		sums := make([]float64, k)
		for j := 0; j < n; j++ {
			if j != i {
				sums[labels[j]] += distances[i][j]
			}
		}

		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for label := 0; label < k; label++ {
			if label == own || sizes[label] == 0 {
				continue
			}
			if mean := sums[label] / float64(sizes[label]); mean < b {
				b = mean
			}
		}
		if math.IsInf(b, 1) {
			continue
		}
		if maxAB := math.Max(a, b); maxAB > 0 {
			total += (b - a) / maxAB
		}
	}
	return total / float64(n)
}
