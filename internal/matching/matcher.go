// Package matching pairs descriptors across two images and keeps only the
// unambiguous correspondences.
package matching

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"sort"

	"colorhint/internal/features"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// DefaultRatio is the nearest/second-nearest ratio used when none is configured.
const DefaultRatio = 0.7

var (
	// ErrInvalidRatio is returned for ratios outside (0,1).
	ErrInvalidRatio = errors.New("match ratio must be in (0,1)")

	// ErrMetricMismatch is returned when the two descriptor sets cannot be compared.
	ErrMetricMismatch = errors.New("descriptor sets are not comparable")
)

// Match pairs a query keypoint with a reference keypoint. Indices refer to
// the Sets passed to the Match call that produced it.
type Match struct {
	QueryIdx int
	RefIdx   int
	Distance float64
}

// Matcher performs brute-force two-nearest-neighbour matching with a
// ratio test.
type Matcher struct {
	// Ratio accepts a nearest neighbour only when its distance is below
	// Ratio times the second-nearest distance.
	Ratio float64

	// Workers bounds the goroutines used to scan queries. Zero means
	// runtime.NumCPU(); results do not depend on this value.
	Workers int
}

// New creates a Matcher with the given ratio.
func New(ratio float64) *Matcher {
	return &Matcher{Ratio: ratio}
}

// Validate checks the matcher configuration.
func (m *Matcher) Validate() error {
	if !(m.Ratio > 0 && m.Ratio < 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidRatio, m.Ratio)
	}
	return nil
}

// neighbours holds the two best reference candidates for one query.
type neighbours struct {
	best, second   int
	bestD, secondD float64
}

// Match returns the accepted matches from query to ref ordered by query
// index. Empty sets, or a reference set with fewer than two descriptors,
// produce no matches.
func (m *Matcher) Match(query, ref *features.Set) ([]Match, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if query.Empty() || ref.Len() < 2 {
		return nil, nil
	}
	if query.Metric != ref.Metric {
		return nil, fmt.Errorf("%w: %v vs %v", ErrMetricMismatch, query.Metric, ref.Metric)
	}
	if query.DescriptorSize() != ref.DescriptorSize() {
		return nil, fmt.Errorf("%w: descriptor sizes %d vs %d",
			ErrMetricMismatch, query.DescriptorSize(), ref.DescriptorSize())
	}

	n := query.Len()
	slots := make([]neighbours, n)

	workers := m.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for q := start; q < end; q++ {
				slots[q] = nearestTwo(query, ref, q)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matches []Match
	for q, nb := range slots {
		if nb.second < 0 {
			continue
		}
		if nb.bestD < m.Ratio*nb.secondD {
			matches = append(matches, Match{QueryIdx: q, RefIdx: nb.best, Distance: nb.bestD})
		}
	}
	return matches, nil
}

// nearestTwo scans every reference descriptor for query q. Ties keep the
// lower reference index.
func nearestTwo(query, ref *features.Set, q int) neighbours {
	nb := neighbours{best: -1, second: -1, bestD: math.Inf(1), secondD: math.Inf(1)}
	for r := 0; r < ref.Len(); r++ {
		var d float64
		if query.Metric == features.L2 {
			d = Euclidean(query.Float[q], ref.Float[r])
		} else {
			d = float64(Hamming(query.Binary[q], ref.Binary[r]))
		}

		switch {
		case d < nb.bestD:
			nb.second, nb.secondD = nb.best, nb.bestD
			nb.best, nb.bestD = r, d
		case d < nb.secondD:
			nb.second, nb.secondD = r, d
		}
	}
	return nb
}

// Hamming returns the number of differing bits between two equal-length
// binary descriptors.
func Hamming(a, b []byte) int {
	d := 0
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}

// Euclidean returns the L2 distance between two float descriptors.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// SortByDistance orders matches by ascending distance, keeping query
// order among equal distances.
func SortByDistance(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}
