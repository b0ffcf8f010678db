package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"simple-ledger-go/common"
	"simple-ledger-go/hashing"
	"simple-ledger-go/logx"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_DIFFICULTY = 4
	DEFAULT_HASH       = "sha256"
	DEFAULT_WORKERS    = 1
	DEFAULT_LOG_LEVEL  = "info"
)

var ErrInvalidConfig = errors.New("invalid config")

type ChainConfig struct {
	Difficulty int    `yaml:"difficulty" ini:"difficulty"`
	Hash       string `yaml:"hash" ini:"hash"`
}

type MiningConfig struct {
	// zero means unbounded
	MaxIterations uint64 `yaml:"max_iterations" ini:"max_iterations"`
	Workers       int    `yaml:"workers" ini:"workers"`
	TimeoutMs     int    `yaml:"timeout_ms" ini:"timeout_ms"`
}

type LogConfig struct {
	Level string `yaml:"level" ini:"level"`
}

type Config struct {
	Chain  ChainConfig  `yaml:"chain"`
	Mining MiningConfig `yaml:"mining"`
	Log    LogConfig    `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Chain: ChainConfig{
			Difficulty: DEFAULT_DIFFICULTY,
			Hash:       DEFAULT_HASH,
		},
		Mining: MiningConfig{
			Workers: DEFAULT_WORKERS,
		},
		Log: LogConfig{
			Level: DEFAULT_LOG_LEVEL,
		},
	}
}

// Load reads a .yml/.yaml or .ini file on top of the defaults.
// Keys missing from the file keep their default value.
func Load(path string) (*Config, error) {
	if !common.ExistFile(path) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}

	cfg := Default()
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = loadYaml(path, cfg)
	case ".ini":
		err = loadIni(path, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, path)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf(
		"loaded %s: difficulty=%d hash=%s workers=%d max_iterations=%d",
		path, cfg.Chain.Difficulty, cfg.Chain.Hash, cfg.Mining.Workers, cfg.Mining.MaxIterations,
	))
	return cfg, nil
}

func loadYaml(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func loadIni(path string, cfg *Config) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	sections := []struct {
		name   string
		target interface{}
	}{
		{"chain", &cfg.Chain},
		{"mining", &cfg.Mining},
		{"log", &cfg.Log},
	}
	for _, s := range sections {
		if !file.HasSection(s.name) {
			continue
		}
		if err := file.Section(s.name).MapTo(s.target); err != nil {
			return fmt.Errorf("decode %s [%s]: %w", path, s.name, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Chain.Difficulty < 0 || c.Chain.Difficulty > hashing.HEX_LEN {
		return fmt.Errorf(
			"%w: difficulty %d must be within 0 and %d",
			ErrInvalidConfig, c.Chain.Difficulty, hashing.HEX_LEN,
		)
	}
	if _, err := hashing.ParseAlgorithm(c.Chain.Hash); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Mining.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.Mining.TimeoutMs < 0 {
		return fmt.Errorf("%w: timeout_ms must not be negative", ErrInvalidConfig)
	}
	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
