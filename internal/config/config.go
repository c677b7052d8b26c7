// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Project       string        `toml:"project"`
	SnapshotDir   string        `toml:"snapshot_dir"`
	HistoryPath   string        `toml:"history_path"`
	Report        Report        `toml:"report"`
	Watch         Watch         `toml:"watch"`
	Timeline      Timeline      `toml:"timeline"`
	Exclude       Exclude       `toml:"exclude"`
	Observability Observability `toml:"observability"`
}

type Report struct {
	Colors bool `toml:"colors"`
}

type Watch struct {
	Debounce         time.Duration `toml:"debounce"`
	RendersPerSecond float64       `toml:"renders_per_second"`
	RenderBurst      int           `toml:"render_burst"`
}

type Timeline struct {
	Window time.Duration `toml:"window"`
	Format string        `toml:"format"`
}

type Exclude struct {
	Files []string `toml:"files"` // Glob patterns for snapshot files to ignore
}

type Observability struct {
	Addr         string `toml:"addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Defaults are preset so absent keys keep them after decoding.
	cfg := Config{
		Project:     "default",
		SnapshotDir: ".",
		HistoryPath: ".typecov/history.db",
		Report:      Report{Colors: true},
		Watch: Watch{
			Debounce:         500 * time.Millisecond,
			RendersPerSecond: 2,
			RenderBurst:      1,
		},
		Timeline: Timeline{
			Window: 7 * 24 * time.Hour,
			Format: "tsv",
		},
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
