// Command chromagram renders visual diagnostics for WAV files: a
// frequency spectrogram and a 12-bin chroma heatmap, both as PNG. The
// heatmap shows exactly what the matcher sees, which makes it easy to
// eyeball why two recordings did or did not line up.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/eligwz/spectrogram"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/audio"
	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"
	"github.com/sakurai-lab/CoverMatch/pkg/logger"
)

var (
	inputDir  string
	outputDir string
	width     int
	height    int
)

func init() {
	flag.StringVar(&inputDir, "in", ".", "Directory of WAV files (or a single file)")
	flag.StringVar(&outputDir, "out", "chromagrams", "Output directory for PNGs")
	flag.IntVar(&width, "width", 2048, "Spectrogram width in pixels")
	flag.IntVar(&height, "height", 512, "Spectrogram height in pixels")
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}

	info, err := os.Stat(inputDir)
	if err != nil {
		logger.Fatalf("Cannot stat %s: %v", inputDir, err)
	}

	if !info.IsDir() {
		if err := processFile(inputDir); err != nil {
			logger.Fatalf("Failed to process %s: %v", inputDir, err)
		}
		return
	}

	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".wav" {
			return nil
		}
		if err := processFile(path); err != nil {
			log.Warnf("Skipping %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		logger.Fatalf("Walk failed: %v", err)
	}

	fmt.Println("Done")
}

func processFile(path string) error {
	log := logger.GetLogger()
	log.Infof("Processing %s", path)

	samples, sampleRate, err := audio.ReadWavMono(path)
	if err != nil {
		return err
	}

	base := filepath.Base(path)

	specPath := filepath.Join(outputDir, base+".spec.png")
	if err := renderSpectrogram(samples, sampleRate, specPath); err != nil {
		return fmt.Errorf("spectrogram: %w", err)
	}
	log.Infof("Saved %s", specPath)

	chromaPath := filepath.Join(outputDir, base+".chroma.png")
	if err := renderChromagram(samples, sampleRate, chromaPath); err != nil {
		return fmt.Errorf("chromagram: %w", err)
	}
	log.Infof("Saved %s", chromaPath)
	return nil
}

func renderSpectrogram(samples []float64, sampleRate int, outPath string) error {
	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))

	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, magnitude, linear scale.
	spectrogram.Drawfft(img, samples, uint32(sampleRate), uint32(height),
		false, false, true, false)

	return spectrogram.SavePng(img, outPath)
}

// renderChromagram draws one column per frame, one 16px row band per
// pitch class, bottom row C, with brightness proportional to bin energy.
func renderChromagram(samples []float64, sampleRate int, outPath string) error {
	extractor := chroma.NewExtractor(chroma.ExtractorConfig{SampleRate: sampleRate})
	seq, err := extractor.Extract(samples)
	if err != nil {
		return err
	}

	const bandHeight = 16
	img := image.NewRGBA(image.Rect(0, 0, seq.Len(), chroma.NumBins*bandHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for t := 0; t < seq.Len(); t++ {
		frame := seq.At(t)
		for bin := 0; bin < chroma.NumBins; bin++ {
			v := frame[bin]
			if v > 1 {
				v = 1
			}
			c := heatColor(v)
			yTop := (chroma.NumBins - 1 - bin) * bandHeight
			for y := yTop; y < yTop+bandHeight; y++ {
				img.Set(t, y, c)
			}
		}
	}

	file, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}

// heatColor maps [0,1] to a black-red-yellow ramp.
func heatColor(v float64) color.RGBA {
	r := 2 * v
	if r > 1 {
		r = 1
	}
	g := 2*v - 1
	if g < 0 {
		g = 0
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), A: 255}
}
