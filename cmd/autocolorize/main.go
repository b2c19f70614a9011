// Command autocolorize extracts color hints for a grayscale image from a
// color reference and writes them as a color-point text file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"colorhint/internal/app"
	"colorhint/internal/config"
	"colorhint/internal/hints"
	"colorhint/internal/image"
	"colorhint/internal/version"
)

func main() {
	gray := flag.String("gray", "", "Path to grayscale target image")
	ref := flag.String("ref", "", "Path to color reference image")
	method := flag.String("method", "orb", "Feature detector: orb, sift or akaze")
	numPoints := flag.Int("num_points", 50, "Maximum number of color points")
	threshold := flag.Float64("match_threshold", 0.7, "Ratio test threshold in (0,1)")
	output := flag.String("output", "color_points.txt", "Output color-point file")
	visualize := flag.Bool("visualize", false, "Also write <output>_visualization.png")
	configPath := flag.String("config", "", "YAML config file")
	seed := flag.Int("seed", 42, "Clustering seed")
	workers := flag.Int("workers", 0, "Matcher goroutines (0 = all CPUs)")
	verbose := flag.Bool("v", false, "Print progress")
	netSize := flag.Int("net_size", 0, "Also write Lab hints rescaled to an NxN network input to <output>_lab.txt")
	compact := flag.Bool("compact", false, "Print all points as x,y,r,g,b lines instead of a summary")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("autocolorize"))
		return
	}
	if *gray == "" || *ref == "" {
		fmt.Println("Usage: autocolorize -gray <image> -ref <image> [-output points.txt] [-visualize]")
		os.Exit(1)
	}

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadUser()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "method":
			cfg.Extract.Method = *method
		case "num_points":
			cfg.Extract.NumPoints = *numPoints
		case "match_threshold":
			cfg.Extract.MatchThreshold = *threshold
		case "seed":
			cfg.Extract.Seed = *seed
		case "workers":
			cfg.Extract.Workers = *workers
		case "v":
			cfg.Extract.Verbose = *verbose
		}
	})

	view := app.NewConsoleView(os.Stdout)
	state, err := app.NewState(view)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create extractor: %v\n", err)
		os.Exit(1)
	}
	defer state.Close()

	if err := state.SetConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}
	if err := state.LoadTarget(*gray); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load grayscale image: %v\n", err)
		os.Exit(1)
	}
	if err := state.LoadReference(*ref); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load reference image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Extracting with %s, up to %d points, threshold %.2f\n",
		cfg.Extract.Method, cfg.Extract.NumPoints, cfg.Extract.MatchThreshold)
	if err := state.AutoColorize(*visualize); err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}

	points := state.GetPoints()
	if len(points) == 0 {
		fmt.Println("No color points found; try a different -method or a higher -match_threshold.")
		return
	}

	if err := state.SavePoints(*output); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d color points to %s\n", len(points), *output)

	if vis := view.Images[app.ImageVisualization]; vis != nil {
		visPath := withSuffix(*output, "_visualization.png")
		if err := image.Save(visPath, vis); err != nil {
			log.Printf("[!] Failed to save visualization: %v", err)
		} else {
			fmt.Printf("Wrote visualization to %s\n", visPath)
		}
	}

	if *netSize > 0 {
		labPath := withSuffix(*output, "_lab.txt")
		if _, err := state.ExportHints(labPath, *netSize); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", labPath, err)
			os.Exit(1)
		}
	}

	if *compact {
		fmt.Print(hints.FormatCompact(points))
		return
	}
	fmt.Println("First points (x, y, r, g, b):")
	for i, p := range points {
		if i == 5 {
			fmt.Printf("  ... and %d more\n", len(points)-5)
			break
		}
		fmt.Printf("  %s\n", p)
	}
}

// withSuffix replaces the extension of path with suffix.
func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
