// Package features detects keypoints and computes their descriptors so that
// two images can be matched against each other.
package features

import (
	"errors"
	"fmt"
	"strings"

	"colorhint/pkg/geometry"

	"gocv.io/x/gocv"
)

// Method names a keypoint detector / descriptor algorithm.
type Method string

const (
	ORB   Method = "orb"   // Oriented FAST + rotated BRIEF, binary descriptors
	SIFT  Method = "sift"  // Gradient histograms, float descriptors
	AKAZE Method = "akaze" // Nonlinear scale space, binary descriptors
)

// DefaultMethod is used when no method is configured.
const DefaultMethod = ORB

// ErrUnknownMethod is returned for detector names that are not registered.
var ErrUnknownMethod = errors.New("unknown feature detection method")

// Metric is the distance used to compare descriptors of a method.
type Metric int

const (
	Hamming Metric = iota // bit differences between binary descriptors
	L2                    // Euclidean distance between float descriptors
)

func (m Metric) String() string {
	switch m {
	case Hamming:
		return "Hamming"
	case L2:
		return "L2"
	default:
		return "Unknown"
	}
}

// Metric returns the descriptor distance that goes with the method.
func (m Method) Metric() Metric {
	if m == SIFT {
		return L2
	}
	return Hamming
}

// ParseMethod resolves a method name case-insensitively. An empty name
// selects DefaultMethod.
func ParseMethod(name string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultMethod, nil
	case ORB:
		return ORB, nil
	case SIFT:
		return SIFT, nil
	case AKAZE:
		return AKAZE, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Methods lists the registered methods.
func Methods() []Method {
	return []Method{ORB, SIFT, AKAZE}
}

// Keypoint is a detected salient location. Size, Angle, Response and
// Octave are detector metadata carried along for drawing only.
type Keypoint struct {
	X, Y     float64
	Size     float64
	Angle    float64
	Response float64
	Octave   int
}

// Set holds the keypoints of one image and their descriptors. Exactly one
// of Binary or Float is populated depending on Metric; descriptor i
// belongs to Keypoints[i].
type Set struct {
	Keypoints []Keypoint
	Binary    [][]byte
	Float     [][]float64
	Metric    Metric
}

// Len returns the number of keypoints.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Keypoints)
}

// Empty reports whether the set has no keypoints.
func (s *Set) Empty() bool {
	return s.Len() == 0
}

// Point returns the location of keypoint i.
func (s *Set) Point(i int) geometry.Point2D {
	kp := s.Keypoints[i]
	return geometry.Point2D{X: kp.X, Y: kp.Y}
}

// DescriptorSize returns the length of one descriptor (bytes for binary,
// floats for L2), or 0 for an empty set.
func (s *Set) DescriptorSize() int {
	if s.Empty() {
		return 0
	}
	if s.Metric == L2 {
		return len(s.Float[0])
	}
	return len(s.Binary[0])
}

// GoCVKeyPoints converts the keypoints back to gocv form for drawing.
func (s *Set) GoCVKeyPoints() []gocv.KeyPoint {
	if s.Empty() {
		return nil
	}
	out := make([]gocv.KeyPoint, len(s.Keypoints))
	for i, kp := range s.Keypoints {
		out[i] = gocv.KeyPoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
			ClassID:  -1,
		}
	}
	return out
}

// Detector finds keypoints in an image and describes them. Implementations
// wrap native detectors and are not safe for concurrent use.
type Detector interface {
	// DetectAndDescribe runs detection on img (converted to grayscale when
	// it has more than one channel). An image without keypoints yields an
	// empty Set, not an error.
	DetectAndDescribe(img gocv.Mat) (*Set, error)

	// Method returns the algorithm the detector implements.
	Method() Method

	// Metric returns the distance its descriptors must be compared with.
	Metric() Metric

	// Close releases native resources.
	Close() error
}

// NewDetector creates the detector registered for method.
func NewDetector(method Method) (Detector, error) {
	switch method {
	case ORB, "":
		return newORB(), nil
	case SIFT:
		return newSIFT(), nil
	case AKAZE:
		return newAKAZE(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
	}
}
