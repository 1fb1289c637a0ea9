package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// RootPaths is the ordered list of directories dependency strings are
	// resolved against; "." stands for the importing file's directory.
	RootPaths []string `toml:"root_paths"`
	// BaseLibrary is the directory holding the canonical library corpus.
	BaseLibrary string   `toml:"base_library"`
	Exclude     Exclude  `toml:"exclude"`
	Keywords    Keywords `toml:"keywords"`
	Watch       Watch    `toml:"watch"`
	Index       Index    `toml:"index"`
	Output      Output   `toml:"output"`
	History     History  `toml:"history"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Keywords are the user-configurable classification keyword lists, merged
// with the built-in sets at parse time. Base-library files ignore them.
type Keywords struct {
	Imports     []string `toml:"imports"`
	Definitions []string `toml:"definitions"`
	Theorems    []string `toml:"theorems"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// Index throttles watcher-triggered re-indexing (files per second / burst).
type Index struct {
	Rate  float64 `toml:"rate"`
	Burst int     `toml:"burst"`
}

type Output struct {
	MetricsAddr  string `toml:"metrics_addr"`
	TraceGRPC    string `toml:"trace_grpc"`
	AlertBeep    bool   `toml:"alert_beep"`
	AlertSummary bool   `toml:"alert_summary"`
}

type History struct {
	Path string `toml:"path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.RootPaths) == 0 {
		c.RootPaths = []string{"."}
	}
	if len(c.Exclude.Files) == 0 {
		// Known generator scripts living next to real library sources.
		c.Exclude.Files = []string{"update_database*", "make_database*"}
	}
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = []string{".git"}
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Index.Rate == 0 {
		c.Index.Rate = 20
	}
	if c.Index.Burst == 0 {
		c.Index.Burst = 40
	}
}
