// Command augment renders pitch-shifted and tempo-stretched variants of a
// WAV file through ffmpeg. The variants are useful for exercising the
// matcher: a pitch-shifted copy should still be identified as the same
// performance, a different performance should not.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sakurai-lab/CoverMatch/pkg/logger"
)

var (
	input      string
	outputDir  string
	semitones  string
	tempos     string
	sampleRate int
)

func init() {
	flag.StringVar(&input, "in", "", "Input WAV file")
	flag.StringVar(&outputDir, "out", "augmented", "Output directory")
	flag.StringVar(&semitones, "pitch", "-2,2,5", "Comma-separated semitone shifts to render")
	flag.StringVar(&tempos, "tempo", "0.8,1.1,1.25", "Comma-separated tempo factors to render")
	flag.IntVar(&sampleRate, "rate", 44100, "Output sample rate")
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	if input == "" {
		fmt.Println("Usage: augment -in <file.wav> [-out <dir>] [-pitch -2,2,5] [-tempo 0.8,1.1,1.25]")
		os.Exit(1)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		logger.Fatalf("Failed to create output directory: %v", err)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for _, field := range strings.Split(semitones, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		var k int
		if _, err := fmt.Sscanf(field, "%d", &k); err != nil {
			logger.Fatalf("Invalid semitone shift %q: %v", field, err)
		}
		out := filepath.Join(outputDir, fmt.Sprintf("%s_pitch%+d.wav", base, k))
		if err := renderPitchShift(ctx, input, out, k); err != nil {
			logger.Fatalf("Pitch shift %+d failed: %v", k, err)
		}
		log.Infof("Rendered %s", out)
	}

	for _, field := range strings.Split(tempos, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		var factor float64
		if _, err := fmt.Sscanf(field, "%g", &factor); err != nil {
			logger.Fatalf("Invalid tempo factor %q: %v", field, err)
		}
		if factor <= 0 {
			logger.Fatalf("Tempo factor must be positive, got %g", factor)
		}
		out := filepath.Join(outputDir, fmt.Sprintf("%s_tempo%.2f.wav", base, factor))
		if err := renderTempoStretch(ctx, input, out, factor); err != nil {
			logger.Fatalf("Tempo stretch %.2f failed: %v", factor, err)
		}
		log.Infof("Rendered %s", out)
	}

	fmt.Println("Done")
}

// renderPitchShift transposes by k semitones without changing duration.
// asetrate shifts pitch and speed together, atempo compensates the speed.
func renderPitchShift(ctx context.Context, in, out string, k int) error {
	ratio := math.Pow(2, float64(k)/12)
	filter := fmt.Sprintf("asetrate=%d,aresample=%d,%s",
		int(float64(sampleRate)*ratio), sampleRate, atempoChain(1/ratio))
	return runFFmpeg(ctx, in, out, filter)
}

// renderTempoStretch changes speed by factor while keeping pitch.
func renderTempoStretch(ctx context.Context, in, out string, factor float64) error {
	return runFFmpeg(ctx, in, out, atempoChain(factor))
}

// atempoChain builds an atempo filter chain. A single atempo stage only
// accepts factors in [0.5, 2.0], so larger changes are split into stages.
func atempoChain(factor float64) string {
	var stages []string
	for factor > 2.0 {
		stages = append(stages, "atempo=2.0")
		factor /= 2.0
	}
	for factor < 0.5 {
		stages = append(stages, "atempo=0.5")
		factor /= 0.5
	}
	stages = append(stages, fmt.Sprintf("atempo=%g", factor))
	return strings.Join(stages, ",")
}

func runFFmpeg(ctx context.Context, in, out, filter string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", in,
		"-af", filter,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-acodec", "pcm_s16le",
		out,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w (output: %s)", err, string(output))
	}
	return nil
}
