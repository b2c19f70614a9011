// Package cluster reduces a cloud of 2D points to a bounded number of
// representatives.
package cluster

import (
	"fmt"
	"runtime"

	"colorhint/pkg/geometry"

	"gocv.io/x/gocv"
)

// Options configures k-means clustering.
type Options struct {
	Seed     int     // RNG seed for center initialization
	Attempts int     // Independent initializations; the most compact run wins
	MaxIter  int     // Iteration cap per attempt
	Epsilon  float64 // Center movement at which an attempt stops early
}

// DefaultOptions returns default clustering options.
func DefaultOptions() Options {
	return Options{
		Seed:     42,
		Attempts: 10,
		MaxIter:  300,
		Epsilon:  1e-4,
	}
}

// KMeans partitions points into k clusters and returns the cluster
// centers, which are generally not input points.
//
// When there are no more points than k the input is returned unchanged.
// When there are no more distinct points than k the distinct points are
// returned in first-seen order. Results are deterministic for a given
// seed and input order.
func KMeans(points []geometry.Point2D, k int, opts Options) ([]geometry.Point2D, error) {
	if k <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if len(points) <= k {
		return append([]geometry.Point2D(nil), points...), nil
	}
	if distinct := unique(points); len(distinct) <= k {
		return distinct, nil
	}

	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = DefaultOptions().MaxIter
	}

	data := gocv.NewMatWithSize(len(points), 2, gocv.MatTypeCV32F)
	defer data.Close()
	for i, p := range points {
		data.SetFloatAt(i, 0, float32(p.X))
		data.SetFloatAt(i, 1, float32(p.Y))
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, opts.MaxIter, opts.Epsilon)

	// OpenCV's default RNG is per OS thread; seeding and clustering must
	// happen on the same one.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	gocv.SetRNGSeed(opts.Seed)
	gocv.KMeans(data, k, &labels, criteria, opts.Attempts, gocv.KMeansPPCenters, &centers)

	if centers.Rows() != k {
		return nil, fmt.Errorf("k-means returned %d centers, want %d", centers.Rows(), k)
	}

	out := make([]geometry.Point2D, k)
	for i := 0; i < k; i++ {
		out[i] = geometry.Point2D{
			X: float64(centers.GetFloatAt(i, 0)),
			Y: float64(centers.GetFloatAt(i, 1)),
		}
	}
	return out, nil
}

// unique returns the distinct points in first-seen order.
func unique(points []geometry.Point2D) []geometry.Point2D {
	seen := make(map[geometry.Point2D]struct{}, len(points))
	var out []geometry.Point2D
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Nearest returns the index of the point closest to target by squared
// Euclidean distance. Ties go to the lowest index; -1 for no points.
func Nearest(points []geometry.Point2D, target geometry.Point2D) int {
	best := -1
	var bestD float64
	for i, p := range points {
		d := p.DistanceSq(target)
		if best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
