package hints

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Header is the first line of a color-point file.
const Header = "# x, y, r, g, b"

// ErrMalformed is returned for lines that cannot be parsed as a color point.
var ErrMalformed = errors.New("malformed color point")

// Write writes points in the color-point text format: a header line
// followed by one "x, y, r, g, b" line per point.
func Write(w io.Writer, points []ColorPoint) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintln(bw, p.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes points to path, replacing any existing file.
func WriteFile(path string, points []ColorPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, points); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Read parses the color-point text format. Blank lines and lines starting
// with '#' are skipped. Fields may be separated by "," or ", ".
func Read(r io.Reader) ([]ColorPoint, error) {
	var points []ColorPoint
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// ReadFile reads a color-point file from disk.
func ReadFile(path string) ([]ColorPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// ParseLine parses a single "x, y, r, g, b" line.
func ParseLine(line string) (ColorPoint, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return ColorPoint{}, fmt.Errorf("%w: want 5 fields, got %d in %q", ErrMalformed, len(fields), line)
	}

	var v [5]int
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return ColorPoint{}, fmt.Errorf("%w: field %d of %q: %v", ErrMalformed, i+1, line, err)
		}
		v[i] = n
	}
	if v[0] < 0 || v[1] < 0 {
		return ColorPoint{}, fmt.Errorf("%w: negative position in %q", ErrMalformed, line)
	}
	for i := 2; i < 5; i++ {
		if v[i] < 0 || v[i] > 255 {
			return ColorPoint{}, fmt.Errorf("%w: channel %d out of range in %q", ErrMalformed, v[i], line)
		}
	}

	return ColorPoint{X: v[0], Y: v[1], R: uint8(v[2]), G: uint8(v[3]), B: uint8(v[4])}, nil
}

// FormatCompact renders points as "x,y,r,g,b" lines without a header,
// the form plugin hosts pass between nodes.
func FormatCompact(points []ColorPoint) string {
	var sb strings.Builder
	for _, p := range points {
		fmt.Fprintf(&sb, "%d,%d,%d,%d,%d\n", p.X, p.Y, p.R, p.G, p.B)
	}
	return sb.String()
}
