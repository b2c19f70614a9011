package image

import (
	"errors"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 7), uint8(y * 11), uint8((x + y) * 3), 255})
		}
	}
	return img
}

func sameImage(t *testing.T, got, want image.Image) {
	t.Helper()
	if got.Bounds().Size() != want.Bounds().Size() {
		t.Fatalf("size %v, want %v", got.Bounds().Size(), want.Bounds().Size())
	}
	gb, wb := got.Bounds(), want.Bounds()
	for y := 0; y < gb.Dy(); y++ {
		for x := 0; x < gb.Dx(); x++ {
			g := color.RGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y)).(color.RGBA)
			w := color.RGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y)).(color.RGBA)
			if g != w {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, g, w)
			}
		}
	}
}

func TestBlendIdentity(t *testing.T) {
	img := gradient(16, 12)
	mask := NewMask(16, 12)
	for i := range mask.Values {
		mask.Values[i] = float32(i%10) / 9
	}

	got, err := Blend(img, img, mask)
	if err != nil {
		t.Fatal(err)
	}
	sameImage(t, got, img)
}

func TestBlendExtremes(t *testing.T) {
	bg := solid(8, 8, color.RGBA{10, 20, 30, 255})
	fg := solid(8, 8, color.RGBA{200, 150, 100, 255})

	got, err := Blend(bg, fg, UniformMask(8, 8, 0))
	if err != nil {
		t.Fatal(err)
	}
	sameImage(t, got, bg)

	got, err = Blend(bg, fg, UniformMask(8, 8, 1))
	if err != nil {
		t.Fatal(err)
	}
	sameImage(t, got, fg)
}

func TestBlendHalf(t *testing.T) {
	bg := solid(4, 4, color.RGBA{0, 100, 255, 255})
	fg := solid(4, 4, color.RGBA{255, 200, 0, 255})

	got, err := Blend(bg, fg, UniformMask(4, 4, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	// 127.5 rounds up
	want := color.RGBA{128, 150, 128, 255}
	if c := got.RGBAAt(2, 2); c != want {
		t.Errorf("got %v, want %v", c, want)
	}
}

func TestBlendSizeMismatch(t *testing.T) {
	bg := solid(8, 8, color.RGBA{A: 255})
	fg := solid(8, 6, color.RGBA{A: 255})

	if _, err := Blend(bg, fg, UniformMask(8, 8, 1)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("foreground mismatch: got %v, want ErrSizeMismatch", err)
	}
	if _, err := Blend(bg, bg, UniformMask(4, 8, 1)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("mask mismatch: got %v, want ErrSizeMismatch", err)
	}
	if _, err := Blend(bg, bg, &Mask{Width: 8, Height: 8}); err == nil {
		t.Error("expected error for mask without values")
	}
}

func TestBlendNonZeroOrigin(t *testing.T) {
	full := gradient(10, 10)
	sub := full.SubImage(image.Rect(2, 2, 8, 8))
	bg := solid(6, 6, color.RGBA{A: 255})

	got, err := Blend(bg, sub, UniformMask(6, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if c, want := got.RGBAAt(0, 0), full.RGBAAt(2, 2); c != want {
		t.Errorf("got %v, want %v", c, want)
	}
}

func TestMaskFromImageThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 1))
	img.Pix = []uint8{0, 128, 129, 255}

	m := MaskFromImage(img)
	want := []float32{0, 0, 1, 1}
	for i, v := range m.Values {
		if v != want[i] {
			t.Errorf("value %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestMaskCoverage(t *testing.T) {
	m := NewMask(4, 4)
	for x := 0; x < 4; x++ {
		m.Set(x, 0, 1)
	}
	if got := m.Coverage(); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("Coverage() = %v, want 0.25", got)
	}
	if got := m.Count(0.5); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

func TestLoadMaskResizes(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 2; x < 4; x++ {
			src.SetGray(x, y, color.Gray{255})
		}
	}
	path := filepath.Join(t.TempDir(), "mask.png")
	if err := Save(path, src); err != nil {
		t.Fatal(err)
	}

	m, err := LoadMask(path, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 8 || m.Height != 8 {
		t.Fatalf("size %dx%d, want 8x8", m.Width, m.Height)
	}
	if m.At(0, 0) != 0 || m.At(7, 7) != 1 {
		t.Errorf("corners = %v, %v; want 0, 1", m.At(0, 0), m.At(7, 7))
	}
	if got := m.Count(0.5); got != 32 {
		t.Errorf("Count() = %d, want 32", got)
	}
}

func TestSaveLoad(t *testing.T) {
	img := gradient(9, 7)
	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(path, img); err != nil {
		t.Fatal(err)
	}
	layer, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if layer.Width() != 9 || layer.Height() != 7 {
		t.Fatalf("size %dx%d, want 9x7", layer.Width(), layer.Height())
	}
	sameImage(t, layer.Image, img)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResizeTo(t *testing.T) {
	img := gradient(10, 10)
	if got := ResizeTo(img, 10, 10); got != image.Image(img) {
		t.Error("same-size resize should return the input")
	}
	got := ResizeTo(img, 5, 20)
	if Size(got) != image.Pt(5, 20) {
		t.Errorf("size %v, want 5x20", Size(got))
	}
}

func TestFeatherUniform(t *testing.T) {
	for _, v := range []float32{0, 1} {
		m, err := Feather(UniformMask(20, 20, v), 7)
		if err != nil {
			t.Fatal(err)
		}
		for i, got := range m.Values {
			if math.Abs(float64(got-v)) > 1e-5 {
				t.Fatalf("value %d = %v, want %v", i, got, v)
			}
		}
	}
}

func TestFeatherEdge(t *testing.T) {
	step := NewMask(40, 10)
	for y := 0; y < 10; y++ {
		for x := 20; x < 40; x++ {
			step.Set(x, y, 1)
		}
	}

	m, err := Feather(step, 9)
	if err != nil {
		t.Fatal(err)
	}
	if step.At(19, 5) != 0 || step.At(20, 5) != 1 {
		t.Fatal("input mask was modified")
	}
	left, right := m.At(19, 5), m.At(20, 5)
	if left <= 0 || left >= 0.5 || right <= 0.5 || right >= 1 {
		t.Errorf("edge values %v, %v not softened", left, right)
	}
	if m.At(0, 5) > 1e-5 || m.At(39, 5) < 1-1e-5 {
		t.Errorf("far values %v, %v changed", m.At(0, 5), m.At(39, 5))
	}
}

func TestFeatherEvenKernel(t *testing.T) {
	step := NewMask(30, 5)
	for y := 0; y < 5; y++ {
		for x := 15; x < 30; x++ {
			step.Set(x, y, 1)
		}
	}
	even, err := Feather(step, 4)
	if err != nil {
		t.Fatal(err)
	}
	odd, err := Feather(step, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := range even.Values {
		if even.Values[i] != odd.Values[i] {
			t.Fatalf("value %d: kernel 4 gives %v, kernel 5 gives %v", i, even.Values[i], odd.Values[i])
		}
	}
}

func TestFeatherInvalid(t *testing.T) {
	if _, err := Feather(UniformMask(4, 4, 1), 0); err == nil {
		t.Error("expected error for zero kernel")
	}
	if _, err := Feather(nil, 5); err == nil {
		t.Error("expected error for nil mask")
	}
}

func TestSampleRegion(t *testing.T) {
	img := gradient(10, 10)
	m := NewMask(10, 10)
	for x := 0; x < 10; x++ {
		m.Set(x, 3, 1)
	}

	pts, err := SampleRegion(img, m, 4)
	if err != nil {
		t.Fatal(err)
	}
	// indices 0, 3, 6, 9 of the ten masked pixels
	wantX := []int{0, 3, 6, 9}
	if len(pts) != len(wantX) {
		t.Fatalf("got %d points, want %d", len(pts), len(wantX))
	}
	for i, p := range pts {
		if p.X != wantX[i] || p.Y != 3 {
			t.Errorf("point %d at (%d,%d), want (%d,3)", i, p.X, p.Y, wantX[i])
		}
		c := img.RGBAAt(p.X, p.Y)
		if p.R != c.R || p.G != c.G || p.B != c.B {
			t.Errorf("point %d color (%d,%d,%d), want %v", i, p.R, p.G, p.B, c)
		}
	}
}

func TestSampleRegionLimits(t *testing.T) {
	img := gradient(6, 6)
	m := NewMask(6, 6)
	m.Set(1, 1, 1)
	m.Set(4, 2, 0.4)
	m.Set(5, 5, 0.9)

	pts, err := SampleRegion(img, m, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	if pts[0].X != 1 || pts[1].X != 5 {
		t.Errorf("points %v", pts)
	}

	one, err := SampleRegion(img, m, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].X != 1 || one[0].Y != 1 {
		t.Errorf("single sample %v, want (1,1)", one)
	}

	none, err := SampleRegion(img, NewMask(6, 6), 10)
	if err != nil || none != nil {
		t.Errorf("empty region: %v, %v", none, err)
	}

	if _, err := SampleRegion(img, NewMask(5, 6), 10); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("got %v, want ErrSizeMismatch", err)
	}
}

func TestRegionPalette(t *testing.T) {
	img := solid(20, 20, color.RGBA{0, 0, 255, 255})
	m := NewMask(20, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
			m.Set(x, y, 1)
		}
	}

	pal, err := RegionPalette(img, m, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(pal) == 0 {
		t.Fatal("empty palette")
	}
	for _, c := range pal {
		if c.B > c.R {
			t.Errorf("palette color %v comes from outside the region", c)
		}
	}

	empty, err := RegionPalette(img, NewMask(20, 20), 3)
	if err != nil || empty != nil {
		t.Errorf("empty region: %v, %v", empty, err)
	}
}

func TestMatRoundTrip(t *testing.T) {
	img := gradient(12, 8)
	m, err := ToMat(img)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	if m.Cols() != 12 || m.Rows() != 8 || m.Channels() != 3 {
		t.Fatalf("mat %dx%dx%d", m.Cols(), m.Rows(), m.Channels())
	}
	vec := m.GetVecbAt(3, 5)
	want := img.RGBAAt(5, 3)
	if vec[2] != want.R || vec[1] != want.G || vec[0] != want.B {
		t.Errorf("mat pixel (BGR) = %v, want %v", vec, want)
	}

	back, err := FromMat(m)
	if err != nil {
		t.Fatal(err)
	}
	sameImage(t, back, img)
}
