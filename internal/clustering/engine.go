// Package clustering partitions catalog embeddings into thematic groups and
// derives human-readable labels for them.
package clustering

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/bookfinder/recommender/internal/recerrors"
	"github.com/bookfinder/recommender/pkg/vectors"
)

const (
	// numRestarts is the number of independent centroid seedings per run;
	// the lowest-inertia result is kept to reduce sensitivity to a poor start.
	numRestarts = 10

	maxIterations = 100
)

// Result holds the outcome of one clustering run.
type Result struct {
	// Assignments maps embedding index to a cluster id in [0, K).
	Assignments []int
	// Centroids are the final cluster centers of the best restart.
	Centroids [][]float32
	// Inertia is the within-cluster sum of squared distances of the best restart.
	Inertia float64
}

// Cluster partitions embeddings into k groups using repeated-initialization
// K-means and returns the lowest-inertia result. It is deterministic for a
// fixed (embeddings, k, seed): the seeded RNG drives every centroid seeding,
// so identical inputs always produce the identical assignment. Cluster ids
// are stable only as a property of that seeded initialization order, not as
// a contract across algorithm changes.
//
// Requires 1 <= k <= len(embeddings); violations are configuration errors
// surfaced to the caller, never silently clamped.
func Cluster(embeddings [][]float32, k int, seed int64) (*Result, error) {
	if k < 1 {
		return nil, recerrors.NewValidationError("k", "number of clusters must be at least 1")
	}

	if k > len(embeddings) {
		return nil, recerrors.NewValidationError("k", "number of clusters exceeds number of embeddings")
	}

	slog.Info("starting k-means clustering", "k", k, "records", len(embeddings), "restarts", numRestarts)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // seeded for reproducibility, not security

	var best *Result

	for restart := 0; restart < numRestarts; restart++ {
		result := runKMeans(embeddings, k, rng)
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}

	slog.Info("k-means clustering completed", "inertia", best.Inertia)

	return best, nil
}

// runKMeans performs one Lloyd iteration loop from a fresh K-means++ seeding.
func runKMeans(embeddings [][]float32, k int, rng *rand.Rand) *Result {
	dim := len(embeddings[0])
	centroids := initializeCentroidsKMeansPlusPlus(embeddings, k, rng)
	assignments := make([]int, len(embeddings))

	for iter := 0; iter < maxIterations; iter++ {
		// Assignment step: assign each point to its nearest centroid.
		changed := false

		for i, emb := range embeddings {
			nearest := findNearestCentroid(emb, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}

		if !changed && iter > 0 {
			slog.Debug("k-means converged", "iterations", iter+1)

			break
		}

		// Update step: recalculate centroids.
		newCentroids := make([][]float32, k)
		counts := make([]int, k)

		for i := 0; i < k; i++ {
			newCentroids[i] = make([]float32, dim)
		}

		for i, emb := range embeddings {
			cluster := assignments[i]
			counts[cluster]++

			for d := 0; d < dim; d++ {
				newCentroids[cluster][d] += emb[d]
			}
		}

		for i := 0; i < k; i++ {
			if counts[i] > 0 {
				for d := 0; d < dim; d++ {
					newCentroids[i][d] /= float32(counts[i])
				}

				centroids[i] = newCentroids[i]
			}
		}
	}

	return &Result{
		Assignments: assignments,
		Centroids:   centroids,
		Inertia:     calculateInertia(embeddings, assignments, centroids),
	}
}

// initializeCentroidsKMeansPlusPlus uses K-means++ initialization for better
// starting centroids, driven entirely by the provided RNG.
func initializeCentroidsKMeansPlusPlus(embeddings [][]float32, k int, rng *rand.Rand) [][]float32 {
	n := len(embeddings)
	centroids := make([][]float32, 0, k)

	firstIdx := rng.Intn(n)
	centroids = append(centroids, embeddings[firstIdx])

	// Pick remaining centroids with probability proportional to distance squared.
	for len(centroids) < k {
		distances := make([]float64, n)

		var totalDist float64

		for i, emb := range embeddings {
			minDist := math.MaxFloat64
			for _, centroid := range centroids {
				dist := vectors.CosineDistance(emb, centroid)
				if dist < minDist {
					minDist = dist
				}
			}

			distances[i] = minDist * minDist
			totalDist += distances[i]
		}

		target := rng.Float64() * totalDist

		var cumDist float64

		selectedIdx := 0

		for i, d := range distances {
			cumDist += d
			if cumDist >= target {
				selectedIdx = i

				break
			}
		}

		centroids = append(centroids, embeddings[selectedIdx])
	}

	return centroids
}

// findNearestCentroid finds the index of the nearest centroid to the given embedding.
func findNearestCentroid(embedding []float32, centroids [][]float32) int {
	minDist := math.MaxFloat64
	nearest := 0

	for i, centroid := range centroids {
		dist := vectors.CosineDistance(embedding, centroid)
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	return nearest
}

// calculateInertia calculates the within-cluster sum of squared distances.
func calculateInertia(embeddings [][]float32, assignments []int, centroids [][]float32) float64 {
	var inertia float64

	for i, emb := range embeddings {
		dist := vectors.CosineDistance(emb, centroids[assignments[i]])
		inertia += dist * dist
	}

	return inertia
}
