package extract

import (
	"fmt"

	"colorhint/internal/cluster"
	"colorhint/internal/hints"
	"colorhint/pkg/geometry"
)

// Select reduces samples to at most numPoints color points.
//
// With no more samples than numPoints every sample is returned in order.
// Otherwise the target positions are clustered and each cluster center is
// replaced by the nearest sample, so every returned point is an observed
// position with its observed color. Colors play no part in clustering.
func Select(samples []Sample, numPoints int, opts cluster.Options) ([]hints.ColorPoint, error) {
	if numPoints < 1 {
		return nil, fmt.Errorf("num points must be positive, got %d", numPoints)
	}
	if len(samples) == 0 {
		return nil, nil
	}

	if len(samples) <= numPoints {
		out := make([]hints.ColorPoint, len(samples))
		for i, s := range samples {
			out[i] = toColorPoint(s)
		}
		return out, nil
	}

	positions := make([]geometry.Point2D, len(samples))
	for i, s := range samples {
		positions[i] = s.Target.ToFloat()
	}

	centers, err := cluster.KMeans(positions, numPoints, opts)
	if err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}

	out := make([]hints.ColorPoint, 0, len(centers))
	for _, c := range centers {
		out = append(out, toColorPoint(samples[cluster.Nearest(positions, c)]))
	}
	return out, nil
}

func toColorPoint(s Sample) hints.ColorPoint {
	return hints.New(s.Target.X, s.Target.Y, s.Color)
}
