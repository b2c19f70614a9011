package features

import (
	"fmt"

	"gocv.io/x/gocv"
)

// detectComputer is the method set shared by the gocv feature detectors.
type detectComputer interface {
	DetectAndCompute(src gocv.Mat, mask gocv.Mat) ([]gocv.KeyPoint, gocv.Mat)
	Close() error
}

// cvDetector adapts a gocv detector to the Detector interface.
type cvDetector struct {
	method Method
	impl   detectComputer
}

func newORB() *cvDetector {
	// 500 features, the OpenCV default.
	orb := gocv.NewORB()
	return &cvDetector{method: ORB, impl: &orb}
}

func newSIFT() *cvDetector {
	sift := gocv.NewSIFT()
	return &cvDetector{method: SIFT, impl: &sift}
}

func newAKAZE() *cvDetector {
	akaze := gocv.NewAKAZE()
	return &cvDetector{method: AKAZE, impl: &akaze}
}

func (d *cvDetector) Method() Method { return d.method }

func (d *cvDetector) Metric() Metric { return d.method.Metric() }

func (d *cvDetector) Close() error {
	return d.impl.Close()
}

// DetectAndDescribe implements Detector.
func (d *cvDetector) DetectAndDescribe(img gocv.Mat) (*Set, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%s: empty image", d.method)
	}

	gray := img
	if img.Channels() > 1 {
		converted := gocv.NewMat()
		defer converted.Close()
		code := gocv.ColorBGRToGray
		if img.Channels() == 4 {
			code = gocv.ColorBGRAToGray
		}
		gocv.CvtColor(img, &converted, code)
		gray = converted
	}

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := d.impl.DetectAndCompute(gray, mask)
	defer desc.Close()

	set := &Set{Metric: d.Metric()}
	if len(kps) == 0 || desc.Empty() {
		return set, nil
	}
	if desc.Rows() != len(kps) {
		return nil, fmt.Errorf("%s: %d descriptors for %d keypoints", d.method, desc.Rows(), len(kps))
	}

	set.Keypoints = make([]Keypoint, len(kps))
	for i, kp := range kps {
		set.Keypoints[i] = Keypoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
		}
	}

	var err error
	switch set.Metric {
	case L2:
		set.Float, err = floatRows(desc)
	default:
		set.Binary, err = byteRows(desc)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.method, err)
	}
	return set, nil
}

// byteRows copies an 8-bit descriptor matrix into one slice per row.
func byteRows(desc gocv.Mat) ([][]byte, error) {
	rows, cols := desc.Rows(), desc.Cols()
	data := desc.ToBytes()
	if len(data) < rows*cols {
		return nil, fmt.Errorf("descriptor buffer too short: %d < %d", len(data), rows*cols)
	}
	out := make([][]byte, rows)
	for i := 0; i < rows; i++ {
		out[i] = append([]byte(nil), data[i*cols:(i+1)*cols]...)
	}
	return out, nil
}

// floatRows copies a float descriptor matrix into one float64 slice per row.
func floatRows(desc gocv.Mat) ([][]float64, error) {
	src := desc
	if desc.Type() != gocv.MatTypeCV32F {
		converted := gocv.NewMat()
		defer converted.Close()
		desc.ConvertTo(&converted, gocv.MatTypeCV32F)
		src = converted
	}

	rows, cols := src.Rows(), src.Cols()
	data, err := src.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	if len(data) < rows*cols {
		return nil, fmt.Errorf("descriptor buffer too short: %d < %d", len(data), rows*cols)
	}
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j, v := range data[i*cols : (i+1)*cols] {
			row[j] = float64(v)
		}
		out[i] = row
	}
	return out, nil
}
