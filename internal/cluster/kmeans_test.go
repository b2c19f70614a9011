package cluster

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"colorhint/pkg/geometry"
)

func blobs(seed int64) []geometry.Point2D {
	rng := rand.New(rand.NewSource(seed))
	centers := []geometry.Point2D{{X: 20, Y: 20}, {X: 200, Y: 40}, {X: 100, Y: 180}}
	var pts []geometry.Point2D
	for i := 0; i < 60; i++ {
		c := centers[i%3]
		pts = append(pts, geometry.Point2D{
			X: c.X + rng.Float64()*6 - 3,
			Y: c.Y + rng.Float64()*6 - 3,
		})
	}
	return pts
}

func TestKMeansIdentityForSmallInputs(t *testing.T) {
	pts := []geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 1, Y: 2}}
	for _, k := range []int{3, 5} {
		got, err := KMeans(pts, k, DefaultOptions())
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if !reflect.DeepEqual(got, pts) {
			t.Errorf("k=%d: got %v, want input unchanged", k, got)
		}
	}
}

func TestKMeansInvalidK(t *testing.T) {
	if _, err := KMeans(blobs(1), 0, DefaultOptions()); err == nil {
		t.Error("expected error for k=0")
	}
}

func TestKMeansFindsBlobs(t *testing.T) {
	pts := blobs(1)
	got, err := KMeans(pts, 3, DefaultOptions())
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d centers, want 3", len(got))
	}

	for _, want := range []geometry.Point2D{{X: 20, Y: 20}, {X: 200, Y: 40}, {X: 100, Y: 180}} {
		found := false
		for _, c := range got {
			if c.Distance(want) < 3 {
				found = true
			}
		}
		if !found {
			t.Errorf("no center near %v in %v", want, got)
		}
	}
}

func TestKMeansDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	pts := make([]geometry.Point2D, 200)
	for i := range pts {
		pts[i] = geometry.Point2D{X: float64(rng.Intn(500)), Y: float64(rng.Intn(500))}
	}

	first, err := KMeans(pts, 7, DefaultOptions())
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := KMeans(pts, 7, DefaultOptions())
		if err != nil {
			t.Fatalf("KMeans failed: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%v\n%v", run, first, again)
		}
	}
}

func TestKMeansDuplicatePoints(t *testing.T) {
	pts := make([]geometry.Point2D, 50)
	for i := range pts {
		pts[i] = geometry.Point2D{X: 7, Y: 7}
	}
	pts[10] = geometry.Point2D{X: 9, Y: 9}

	got, err := KMeans(pts, 5, DefaultOptions())
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}
	want := []geometry.Point2D{{X: 7, Y: 7}, {X: 9, Y: 9}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestKMeansColinearPoints(t *testing.T) {
	var pts []geometry.Point2D
	for i := 0; i < 40; i++ {
		pts = append(pts, geometry.Point2D{X: float64(i), Y: 2 * float64(i)})
		pts = append(pts, geometry.Point2D{X: float64(i), Y: 2 * float64(i)})
	}
	got, err := KMeans(pts, 4, DefaultOptions())
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d centers, want 4", len(got))
	}
	for _, c := range got {
		if math.Abs(c.Y-2*c.X) > 1e-3 {
			t.Errorf("center %v is off the line", c)
		}
	}
}

func TestNearest(t *testing.T) {
	pts := []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 0}}

	tests := []struct {
		target geometry.Point2D
		want   int
	}{
		{geometry.Point2D{X: 1, Y: 1}, 0},
		{geometry.Point2D{X: 9, Y: 1}, 1}, // ties with index 3 go to 1
		{geometry.Point2D{X: 5, Y: 5}, 0}, // equidistant to all four
		{geometry.Point2D{X: -1, Y: 11}, 2},
	}
	for _, tt := range tests {
		if got := Nearest(pts, tt.target); got != tt.want {
			t.Errorf("Nearest(%v) = %d, want %d", tt.target, got, tt.want)
		}
	}
	if Nearest(nil, geometry.Point2D{}) != -1 {
		t.Error("Nearest of no points should be -1")
	}
}
