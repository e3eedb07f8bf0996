package covermatch

import "github.com/sakurai-lab/CoverMatch/pkg/covermatch/match"

type Config struct {
	DBPath     string
	TempDir    string
	SampleRate int
	Threshold  float64
	MaxFrames  int
	Workers    int
	Logger     Logger
	Storage    Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// WithThreshold sets the default match threshold; individual calls can
// still override it.
func WithThreshold(threshold float64) Option {
	return func(c *Config) {
		c.Threshold = threshold
	}
}

// WithKaraokeProfile switches the default threshold to the stricter
// karaoke value.
func WithKaraokeProfile() Option {
	return func(c *Config) {
		c.Threshold = match.KaraokeThreshold
	}
}

// WithMaxFrames bounds sequence length per comparison; longer sequences
// are decimated before the similarity matrix is built.
func WithMaxFrames(n int) Option {
	return func(c *Config) {
		c.MaxFrames = n
	}
}

// WithWorkers sets the batch comparison worker count (0 = one per CPU).
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:     "covermatch.sqlite3",
		TempDir:    "/tmp",
		SampleRate: 44100,
		Threshold:  match.DefaultThreshold,
		MaxFrames:  match.DefaultMaxFrames,
	}
}
