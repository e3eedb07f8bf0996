package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch"
	"github.com/sakurai-lab/CoverMatch/pkg/logger"
)

var (
	dbPath     string
	tempDir    string
	sampleRate int
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func globalFlags(fs *flag.FlagSet) {
	fs.StringVar(&dbPath, "db", getEnvOrDefault("COVERMATCH_DB_PATH", "covermatch.sqlite3"), "Path to the SQLite database file")
	fs.StringVar(&tempDir, "temp", getEnvOrDefault("COVERMATCH_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	fs.IntVar(&sampleRate, "rate", 44100, "Audio sample rate for processing")
}

func createService() (covermatch.Service, error) {
	return covermatch.NewService(
		covermatch.WithDBPath(dbPath),
		covermatch.WithTempDir(tempDir),
		covermatch.WithSampleRate(sampleRate),
	)
}

func main() {
	log := logger.GetLogger()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Debugf("Executing command: %s", command)

	switch command {
	case "add":
		handleAdd(os.Args[2:])
	case "compare":
		handleCompare(os.Args[2:])
	case "compare-all":
		handleCompareAll(os.Args[2:])
	case "match":
		handleMatch(os.Args[2:])
	case "list":
		handleList(os.Args[2:])
	case "delete":
		handleDelete(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Println(` ____                     __  __       _       _
/ ___|_____   _____ _ __|  \/  | __ _| |_ ___| |__
| |  / _ \ \ / / _ \ '__| |\/| |/ _' | __/ __| '_ \
| |_| (_) \ V /  __/ |  | |  | | (_| | || (__| | | |
\____\___/ \_/ \___|_|  |_|  |_|\__,_|\__\___|_| |_|

       Same-performance identification CLI`)
}

func printUsage() {
	fmt.Println(`Usage: covermatch <command> [flags]

Commands:
  add         -file <audio> -title <title> [-artist <artist>] [-name <name>]
              Extract features from an audio file and store the recording
  compare     -a <recordingID> -b <recordingID> [-threshold <t>]
              Compare two stored recordings
  compare-all [-ids <id1,id2,...>] [-threshold <t>]
              Compare every unordered pair of recordings
  match       -file <audio> [-limit <n>] [-threshold <t>]
              Rank stored recordings against a query file
  list        List songs and their recordings
  delete      -recording <id> | -song <id>
              Remove a recording or a whole song

Global flags (every command):
  -db, -temp, -rate`)
}

func handleAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	globalFlags(fs)
	file := fs.String("file", "", "Audio file to ingest")
	title := fs.String("title", "", "Song title")
	artist := fs.String("artist", "", "Artist name")
	name := fs.String("name", "original", "Recording name (e.g. original, karaoke, pitch+2)")
	fs.Parse(args)

	if *file == "" || *title == "" {
		fmt.Println("add requires -file and -title")
		os.Exit(1)
	}

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rec, err := service.AddRecording(ctx, *file, *title, *artist, *name)
	if err != nil {
		logger.Fatalf("Failed to add recording: %v", err)
	}

	fmt.Printf("Added recording %s (%q, %.1fs) to song %s\n", rec.ID, rec.Name, rec.Duration, rec.SongID)
}

func handleCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	globalFlags(fs)
	idA := fs.String("a", "", "First recording ID")
	idB := fs.String("b", "", "Second recording ID")
	threshold := fs.Float64("threshold", 0, "Match threshold (0 = default)")
	fs.Parse(args)

	if *idA == "" || *idB == "" {
		fmt.Println("compare requires -a and -b")
		os.Exit(1)
	}

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	result, err := service.CompareRecordings(context.Background(), *idA, *idB, *threshold)
	if err != nil {
		logger.Fatalf("Comparison failed: %v", err)
	}

	verdict := "DIFFERENT"
	if result.Match {
		verdict = "SAME"
	}
	fmt.Printf("%s  score=%.4f  threshold=%.2f  transposition=%+d semitones\n",
		verdict, result.Score, result.Threshold, result.Shift)
}

func handleCompareAll(args []string) {
	fs := flag.NewFlagSet("compare-all", flag.ExitOnError)
	globalFlags(fs)
	ids := fs.String("ids", "", "Comma-separated recording IDs (empty = all)")
	threshold := fs.Float64("threshold", 0, "Match threshold (0 = default)")
	fs.Parse(args)

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	var idList []string
	if *ids != "" {
		idList = splitTrimmed(*ids)
	}

	results, err := service.CompareAllRecordings(context.Background(), idList, *threshold)
	if err != nil {
		logger.Fatalf("Batch comparison failed: %v", err)
	}

	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("%s vs %s: error: %s\n", r.RecordingA, r.RecordingB, r.Error)
			continue
		}
		verdict := "different"
		if r.Match {
			verdict = "same"
		}
		fmt.Printf("%s vs %s: score=%.4f shift=%+d %s\n", r.RecordingA, r.RecordingB, r.Score, r.Shift, verdict)
	}
	fmt.Printf("%d pairs compared\n", len(results))
}

func handleMatch(args []string) {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	globalFlags(fs)
	file := fs.String("file", "", "Query audio file")
	limit := fs.Int("limit", 5, "Number of candidates to show")
	threshold := fs.Float64("threshold", 0, "Match threshold (0 = default)")
	fs.Parse(args)

	if *file == "" {
		fmt.Println("match requires -file")
		os.Exit(1)
	}

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	matches, err := service.MatchAudio(ctx, *file, *limit, *threshold)
	if err != nil {
		logger.Fatalf("Match failed: %v", err)
	}

	if len(matches) == 0 {
		fmt.Println("No stored recordings to compare against")
		return
	}
	for i, m := range matches {
		marker := " "
		if m.Match {
			marker = "*"
		}
		fmt.Printf("%s %2d. %.4f  %s - %s (%s, recording %s)\n",
			marker, i+1, m.Score, m.Song.Artist, m.Song.Title, m.Recording.Name, m.Recording.ID)
	}
}

func handleList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	globalFlags(fs)
	fs.Parse(args)

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	songs, err := service.ListSongs()
	if err != nil {
		logger.Fatalf("Failed to list songs: %v", err)
	}

	if len(songs) == 0 {
		fmt.Println("Library is empty")
		return
	}
	for _, song := range songs {
		fmt.Printf("%s - %s (%s)\n", song.Artist, song.Title, song.ID)
		recs, err := service.ListRecordings(song.ID)
		if err != nil {
			logger.Warnf("Failed to list recordings for %s: %v", song.ID, err)
			continue
		}
		for _, rec := range recs {
			fmt.Printf("    %s  %q  %.1fs @ %d Hz\n", rec.ID, rec.Name, rec.Duration, rec.SampleRate)
		}
	}
}

func handleDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	globalFlags(fs)
	recordingID := fs.String("recording", "", "Recording ID to delete")
	songID := fs.String("song", "", "Song ID to delete (with all recordings)")
	fs.Parse(args)

	if (*recordingID == "") == (*songID == "") {
		fmt.Println("delete requires exactly one of -recording or -song")
		os.Exit(1)
	}

	service, err := createService()
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	if *recordingID != "" {
		if err := service.DeleteRecording(*recordingID); err != nil {
			logger.Fatalf("Failed to delete recording: %v", err)
		}
		fmt.Printf("Deleted recording %s\n", *recordingID)
		return
	}
	if err := service.DeleteSong(*songID); err != nil {
		logger.Fatalf("Failed to delete song: %v", err)
	}
	fmt.Printf("Deleted song %s\n", *songID)
}

func splitTrimmed(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			part := s[start:i]
			for len(part) > 0 && part[0] == ' ' {
				part = part[1:]
			}
			for len(part) > 0 && part[len(part)-1] == ' ' {
				part = part[:len(part)-1]
			}
			if part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
