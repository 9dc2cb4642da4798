package config

import (
	"io/fs"
	"os"
	"strconv"

	"pedigree/internal/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Source struct {
		GedFile   string `yaml:"ged_file"`
		MediaRoot string `yaml:"media_root"` // directory that contains Data/Media, Data/Picture
	} `yaml:"source"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Server struct {
		Addr  string `yaml:"addr"`
		Watch bool   `yaml:"watch"`
	} `yaml:"server"`
	Resolver struct {
		Concurrency   int    `yaml:"concurrency"` // fan-out per batch, 0 = unlimited
		RemoteBaseURL string `yaml:"remote_base_url"`
		MaxHops       int    `yaml:"max_hops"`
	} `yaml:"resolver"`
	Log struct {
		JSON  bool `yaml:"json"`
		Debug bool `yaml:"debug"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Source.GedFile = "family.ged"
	cfg.Source.MediaRoot = "."
	cfg.Export.Dir = "public/data/people"
	cfg.Storage.DBPath = "pedigree.db"
	cfg.Server.Addr = ":8080"
	cfg.Resolver.Concurrency = 8
	cfg.Resolver.MaxHops = 12
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config on top of defaults
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(err, "read config %s", path)
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, errors.WithHint(errors.Wrapf(err, "parse config %s", path),
				"pedigree.yaml must be a mapping with source, export, storage, server, resolver and log sections")
		}
	}

	// 3. Override with Environment Variables if present
	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PEDIGREE_GED_FILE"); v != "" {
		cfg.Source.GedFile = v
	}
	if v := os.Getenv("PEDIGREE_MEDIA_ROOT"); v != "" {
		cfg.Source.MediaRoot = v
	}
	if v := os.Getenv("PEDIGREE_DB"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("PEDIGREE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PEDIGREE_REMOTE_URL"); v != "" {
		cfg.Resolver.RemoteBaseURL = v
	}
	if v, err := strconv.ParseBool(os.Getenv("PEDIGREE_LOG_JSON")); err == nil {
		cfg.Log.JSON = v
	}
	if v, err := strconv.Atoi(os.Getenv("PEDIGREE_CONCURRENCY")); err == nil && v >= 0 {
		cfg.Resolver.Concurrency = v
	}
}
