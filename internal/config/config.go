// Package config loads execution settings from a YAML file.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/harshithgowdakt/lazyframe/internal/compression"
	"github.com/harshithgowdakt/lazyframe/internal/logging"
	"github.com/harshithgowdakt/lazyframe/internal/processor"
)

// Config holds the tunables for one engine process.
type Config struct {
	// BlockSize is the maximum rows per emitted block.
	BlockSize int `yaml:"block_size"`
	// QueueDepth is the number of blocks buffered between two stages.
	QueueDepth int `yaml:"queue_depth"`
	// MaxStages caps the stages one compiled plan may run.
	MaxStages int `yaml:"max_stages"`
	// Partitions is how many workers a partitionable source is split across.
	// 1 disables partitioning.
	Partitions int `yaml:"partitions"`
	LogLevel   string `yaml:"log_level"`
	// Compression names the codec used for serialized plans.
	Compression string `yaml:"compression"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BlockSize:   processor.DefaultBlockSize,
		QueueDepth:  processor.DefaultQueueDepth,
		MaxStages:   processor.DefaultMaxStages,
		Partitions:  1,
		LogLevel:    "info",
		Compression: "lz4",
	}
}

// Load reads path over the defaults. Fields missing from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.BlockSize <= 0 {
		return errors.Newf("block_size must be positive, got %d", c.BlockSize)
	}
	if c.QueueDepth <= 0 {
		return errors.Newf("queue_depth must be positive, got %d", c.QueueDepth)
	}
	if c.MaxStages <= 0 {
		return errors.Newf("max_stages must be positive, got %d", c.MaxStages)
	}
	if c.Partitions <= 0 {
		return errors.Newf("partitions must be positive, got %d", c.Partitions)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := compression.ByName(c.Compression); err != nil {
		return err
	}
	return nil
}

// Codec returns the plan compression codec.
func (c Config) Codec() (compression.Codec, error) {
	return compression.ByName(c.Compression)
}

// ProcessorOptions maps the execution fields onto processor.Options.
func (c Config) ProcessorOptions(log *zap.Logger) processor.Options {
	return processor.Options{
		BlockSize:  c.BlockSize,
		QueueDepth: c.QueueDepth,
		MaxStages:  c.MaxStages,
		Logger:     log,
	}
}
