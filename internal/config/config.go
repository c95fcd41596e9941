// Package config loads the shared configuration for the command line tools.
package config

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (PRODUCTS_ prefix), flags, or YAML config files.
type Config struct {
	DatabaseURI string `usage:"PostgreSQL connection URI (PRODUCTS_DATABASE_URI or DATABASE_URI)" flag:"database-uri"`
	Ingest      IngestConfig
}

// IngestConfig controls the catalog ingest pipeline.
type IngestConfig struct {
	DataDir                string  `default:"data" usage:"Directory containing catalog drop files" flag:"data-dir"`
	Pattern                string  `default:"*.jsonl.gz" usage:"Glob pattern matching catalog drop files"`
	BatchSize              int     `default:"500" usage:"Products written per COPY batch" flag:"batch-size"`
	BloomCapacity          uint    `default:"1000000" usage:"Expected distinct records across one drop"`
	BloomFalsePositiveRate float64 `default:"0.001" usage:"Bloom filter false positive rate"`
	BatchLabel             string  `default:"" usage:"Source label recorded with the import batch (defaults to the data directory)"`
}

// Load loads configuration from environment variables, YAML config files, and
// command line flags. It does not require the database URI to be set; commands
// that need the database enforce that themselves.
func Load() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "PRODUCTS",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/products/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URI to the application's PRODUCTS_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURI == "" {
		if v := os.Getenv("DATABASE_URI"); v != "" {
			c.DatabaseURI = v
		}
	}
}
