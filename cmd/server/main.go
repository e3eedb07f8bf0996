package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	threshold      float64
	karaoke        bool
	maxFrames      int
	workers        int
	allowedOrigins string
)

func init() {
	// .env values act as defaults; explicit flags still win.
	godotenv.Load()

	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("COVERMATCH_DB_PATH", "covermatch.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("COVERMATCH_TEMP_DIR", "/tmp"), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 44100, "Audio sample rate")
	flag.Float64Var(&threshold, "threshold", 0, "Default match threshold (0 = built-in default)")
	flag.BoolVar(&karaoke, "karaoke", false, "Use the stricter karaoke threshold by default")
	flag.IntVar(&maxFrames, "max-frames", 0, "Maximum frames per comparison (0 = built-in default)")
	flag.IntVar(&workers, "workers", 0, "Batch comparison workers (0 = one per CPU)")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	opts := []covermatch.Option{
		covermatch.WithDBPath(dbPath),
		covermatch.WithTempDir(tempDir),
		covermatch.WithSampleRate(sampleRate),
		covermatch.WithWorkers(workers),
	}
	if karaoke {
		opts = append(opts, covermatch.WithKaraokeProfile())
	}
	if threshold > 0 {
		opts = append(opts, covermatch.WithThreshold(threshold))
	}
	if maxFrames > 0 {
		opts = append(opts, covermatch.WithMaxFrames(maxFrames))
	}

	service, err := covermatch.NewService(opts...)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		AllowedOrigins: origins,
	}

	server := NewServer(service, config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
