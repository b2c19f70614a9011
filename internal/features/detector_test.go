package features

import (
	"errors"
	"math/rand"
	"testing"

	"gocv.io/x/gocv"
)

// noiseMat returns a textured single-channel image with plenty of corners.
func noiseMat(t *testing.T, w, h int, seed int64) gocv.Mat {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]byte, w*h)
	// 8x8 blocks of random intensity give stable, well-separated corners.
	for by := 0; by < h; by += 8 {
		for bx := 0; bx < w; bx += 8 {
			v := byte(rng.Intn(256))
			for y := by; y < by+8 && y < h; y++ {
				for x := bx; x < bx+8 && x < w; x++ {
					data[y*w+x] = v
				}
			}
		}
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, data)
	if err != nil {
		t.Fatalf("NewMatFromBytes failed: %v", err)
	}
	return m
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"orb", ORB, false},
		{"ORB", ORB, false},
		{" Sift ", SIFT, false},
		{"akaze", AKAZE, false},
		{"", ORB, false},
		{"surf", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownMethod) {
			t.Errorf("ParseMethod(%q) error = %v, want ErrUnknownMethod", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMethodMetric(t *testing.T) {
	if ORB.Metric() != Hamming || AKAZE.Metric() != Hamming {
		t.Error("binary descriptors must use Hamming distance")
	}
	if SIFT.Metric() != L2 {
		t.Error("SIFT descriptors must use L2 distance")
	}
}

func TestNewDetectorUnknown(t *testing.T) {
	_, err := NewDetector(Method("brisk"))
	if !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("NewDetector error = %v, want ErrUnknownMethod", err)
	}
}

func TestUniformImageHasNoFeatures(t *testing.T) {
	for _, method := range Methods() {
		t.Run(string(method), func(t *testing.T) {
			d, err := NewDetector(method)
			if err != nil {
				t.Fatalf("NewDetector failed: %v", err)
			}
			defer d.Close()

			img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 100, 100, gocv.MatTypeCV8U)
			defer img.Close()

			set, err := d.DetectAndDescribe(img)
			if err != nil {
				t.Fatalf("DetectAndDescribe failed: %v", err)
			}
			if !set.Empty() {
				t.Errorf("expected no keypoints on a flat image, got %d", set.Len())
			}
			if set.Metric != method.Metric() {
				t.Errorf("set metric = %v, want %v", set.Metric, method.Metric())
			}
		})
	}
}

func TestDetectAndDescribeTextured(t *testing.T) {
	tests := []struct {
		method   Method
		descSize int
	}{
		{ORB, 32},
		{SIFT, 128},
		{AKAZE, 61},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			d, err := NewDetector(tt.method)
			if err != nil {
				t.Fatalf("NewDetector failed: %v", err)
			}
			defer d.Close()

			img := noiseMat(t, 256, 256, 7)
			defer img.Close()

			set, err := d.DetectAndDescribe(img)
			if err != nil {
				t.Fatalf("DetectAndDescribe failed: %v", err)
			}
			if set.Empty() {
				t.Fatal("expected keypoints on a textured image")
			}
			if got := set.DescriptorSize(); got != tt.descSize {
				t.Errorf("descriptor size = %d, want %d", got, tt.descSize)
			}
			switch set.Metric {
			case L2:
				if len(set.Float) != set.Len() || set.Binary != nil {
					t.Errorf("float descriptors misaligned: %d for %d keypoints", len(set.Float), set.Len())
				}
			case Hamming:
				if len(set.Binary) != set.Len() || set.Float != nil {
					t.Errorf("binary descriptors misaligned: %d for %d keypoints", len(set.Binary), set.Len())
				}
			}
			for i := range set.Keypoints {
				p := set.Point(i)
				if p.X < 0 || p.X >= 256 || p.Y < 0 || p.Y >= 256 {
					t.Errorf("keypoint %d outside image: %+v", i, p)
				}
			}
			t.Logf("%s: %d keypoints", tt.method, set.Len())
		})
	}
}

func TestDetectAndDescribeColorInput(t *testing.T) {
	d, err := NewDetector(ORB)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	defer d.Close()

	gray := noiseMat(t, 200, 200, 3)
	defer gray.Close()
	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(gray, &bgr, gocv.ColorGrayToBGR)

	fromGray, err := d.DetectAndDescribe(gray)
	if err != nil {
		t.Fatalf("gray: %v", err)
	}
	fromColor, err := d.DetectAndDescribe(bgr)
	if err != nil {
		t.Fatalf("color: %v", err)
	}
	if fromGray.Len() != fromColor.Len() {
		t.Errorf("color input should be converted to the same gray image: %d vs %d keypoints",
			fromGray.Len(), fromColor.Len())
	}
}

func TestDetectAndDescribeEmptyMat(t *testing.T) {
	d, err := NewDetector(ORB)
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	defer d.Close()

	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := d.DetectAndDescribe(empty); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestGoCVKeyPoints(t *testing.T) {
	set := &Set{Keypoints: []Keypoint{{X: 1.5, Y: 2.5, Size: 31, Angle: 90}}}
	kps := set.GoCVKeyPoints()
	if len(kps) != 1 || kps[0].X != 1.5 || kps[0].Y != 2.5 || kps[0].Size != 31 {
		t.Errorf("unexpected conversion: %+v", kps)
	}
	if (&Set{}).GoCVKeyPoints() != nil {
		t.Error("empty set should convert to nil")
	}
}
