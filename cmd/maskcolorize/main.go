// Command maskcolorize blends a colorized image over its grayscale
// original under a mask, so only the masked region keeps its color.
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
	"colorhint/internal/image"
	"colorhint/internal/version"
)

func main() {
	gray := flag.String("gray", "", "Path to grayscale original")
	colorized := flag.String("colorized", "", "Path to fully colorized image")
	maskPath := flag.String("mask", "", "Path to mask image (white = keep color)")
	output := flag.String("output", "masked_result.png", "Output image")
	smooth := flag.Bool("smooth", true, "Feather mask edges before blending")
	blurSize := flag.Int("blur_size", image.DefaultFeather, "Feather kernel size")
	samples := flag.Int("samples", 0, "Write this many region color samples to <output>_samples.txt")
	palette := flag.Int("palette", 0, "Print this many dominant colors of the masked region")
	configPath := flag.String("config", "", "YAML config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("maskcolorize"))
		return
	}
	if *gray == "" || *colorized == "" || *maskPath == "" {
		fmt.Println("Usage: maskcolorize -gray <image> -colorized <image> -mask <image> [-output result.png]")
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
		case "smooth":
			cfg.Mask.Smooth = *smooth
		case "blur_size":
			cfg.Mask.BlurSize = *blurSize
		case "samples":
			cfg.Mask.Samples = *samples
		case "palette":
			cfg.Mask.Palette = *palette
		}
	})

	view := app.NewConsoleView(os.Stdout)
	state, err := app.NewState(view)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
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
	if err := state.LoadColorized(*colorized); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load colorized image: %v\n", err)
		os.Exit(1)
	}
	if err := state.LoadMask(*maskPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load mask: %v\n", err)
		os.Exit(1)
	}
	if state.Mask.Count(image.RegionThreshold) == 0 {
		log.Printf("[!] Mask %s selects no pixels; output will equal the grayscale image", *maskPath)
	}

	if err := state.ApplyMask(); err != nil {
		fmt.Fprintf(os.Stderr, "Blending failed: %v\n", err)
		os.Exit(1)
	}
	if err := image.Save(*output, state.Result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save result: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *output)

	if m := view.Images[app.ImageMask]; m != nil {
		mPath := withSuffix(*output, "_mask.png")
		if err := image.Save(mPath, m); err != nil {
			log.Printf("[!] Failed to save mask: %v", err)
		} else {
			fmt.Printf("Wrote %s\n", mPath)
		}
	}

	if cfg.Mask.Samples > 0 {
		pts, err := state.SampleMaskedColors(cfg.Mask.Samples)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sampling failed: %v\n", err)
			os.Exit(1)
		}
		if len(pts) > 0 {
			sPath := withSuffix(*output, "_samples.txt")
			if err := state.SavePoints(sPath); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", sPath, err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %d region samples to %s\n", len(pts), sPath)
		}
	}

	if cfg.Mask.Palette > 0 {
		colors, err := state.SuggestPalette(cfg.Mask.Palette)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Palette failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Region palette:")
		for _, c := range colors {
			fmt.Printf("  #%02x%02x%02x  (%d, %d, %d)\n", c.R, c.G, c.B, c.R, c.G, c.B)
		}
	}
}

// withSuffix replaces the extension of path with suffix.
func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
