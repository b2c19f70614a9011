package extract

import (
	"image"

	"colorhint/internal/features"
	"colorhint/internal/hints"
	cimage "colorhint/internal/image"
	"colorhint/internal/matching"
	"colorhint/pkg/colorutil"

	"gocv.io/x/gocv"
)

// TopMatches is the number of best matches drawn in the visualization.
const TopMatches = 50

// Visualize renders a diagnostic image. The top half shows the target
// with a marker in each point's color next to the reference; the bottom
// half, present when there are matches, draws lines for the TopMatches
// closest ones.
func Visualize(target, reference gocv.Mat, targetSet, refSet *features.Set, matches []matching.Match, points []hints.ColorPoint) (image.Image, error) {
	marked := target.Clone()
	defer marked.Close()
	for _, p := range points {
		center := image.Pt(p.X, p.Y)
		gocv.Circle(&marked, center, 5, p.RGBA(), -1)
		gocv.Circle(&marked, center, 6, colorutil.White, 1)
	}

	top := gocv.NewMat()
	defer top.Close()
	gocv.Hconcat(marked, reference, &top)

	best := matching.SortByDistance(matches)
	if len(best) > TopMatches {
		best = best[:TopMatches]
	}
	dm := make([]gocv.DMatch, len(best))
	for i, m := range best {
		dm[i] = gocv.DMatch{QueryIdx: m.QueryIdx, TrainIdx: m.RefIdx, Distance: m.Distance}
	}

	if len(dm) == 0 {
		return cimage.FromMat(top)
	}
	mask := make([]byte, len(dm))
	for i := range mask {
		mask[i] = 1
	}

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.DrawMatches(target, targetSet.GoCVKeyPoints(), reference, refSet.GoCVKeyPoints(),
		dm, &lines, colorutil.Green, colorutil.Cyan, mask, gocv.DrawDefault)
	if lines.Cols() != top.Cols() {
		return cimage.FromMat(top)
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.Vconcat(top, lines, &out)
	return cimage.FromMat(out)
}
