package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/onsails/prosto/chunk"
	"github.com/onsails/prosto/format"
	"github.com/onsails/prosto/pipeline"
)

// Config is the YAML configuration shared by all commands. Flags override file values.
type Config struct {
	Compression     format.CompressionType `yaml:"compression"`
	Level           int                    `yaml:"level"`
	ChunkSize       int                    `yaml:"chunk_size"`
	MailboxCapacity int                    `yaml:"mailbox_capacity"`
	MaxRecordSize   int                    `yaml:"max_record_size"`
	MetricsAddr     string                 `yaml:"metrics_addr"`
	LogLevel        logrus.Level           `yaml:"log_level"`
}

func defaultConfig() *Config {
	return &Config{
		Compression:     chunk.DefaultCompression,
		Level:           chunk.DefaultLevel,
		ChunkSize:       pipeline.DefaultChunkSize,
		MailboxCapacity: 64,
		MaxRecordSize:   4 * 1024 * 1024,
		LogLevel:        logrus.InfoLevel,
	}
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	configFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer configFile.Close()

	if err := yaml.NewDecoder(configFile).Decode(config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must be >= 0, got %d", c.ChunkSize)
	}
	if c.MailboxCapacity < 1 {
		return fmt.Errorf("mailbox_capacity must be >= 1, got %d", c.MailboxCapacity)
	}
	if c.MaxRecordSize < 1 {
		return fmt.Errorf("max_record_size must be >= 1, got %d", c.MaxRecordSize)
	}

	return nil
}

// pipelineOptions translates the configuration into stage options.
func (c *Config) pipelineOptions(logger logrus.Ext1FieldLogger, metrics *pipeline.Metrics) []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithCompression(c.Compression),
		pipeline.WithLevel(c.Level),
		pipeline.WithChunkSize(c.ChunkSize),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics),
	}
}

func (c *Config) newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(c.LogLevel)

	return logger
}

// commonFlags holds the flags every command accepts.
type commonFlags struct {
	configPath  string
	compression string
	level       int
	chunkSize   int
	capacity    int
	metricsAddr string
	logLevel    string
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.compression, "compression", "", "compression algorithm: none, zstd, s2, lz4, snappy")
	fs.IntVar(&f.level, "level", 0, "compression level")
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "compressed chunk size in bytes")
	fs.IntVar(&f.capacity, "capacity", 0, "mailbox capacity")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	fs.StringVar(&f.logLevel, "log-level", "", "log level")
}

// resolve loads the configuration file and applies the flags that were set explicitly.
func (f *commonFlags) resolve(fs *flag.FlagSet) (*Config, error) {
	config, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	var flagErr error
	fs.Visit(func(fl *flag.Flag) {
		if flagErr != nil {
			return
		}

		switch fl.Name {
		case "compression":
			config.Compression, flagErr = format.ParseCompressionType(f.compression)
		case "level":
			config.Level = f.level
		case "chunk-size":
			config.ChunkSize = f.chunkSize
		case "capacity":
			config.MailboxCapacity = f.capacity
		case "metrics-addr":
			config.MetricsAddr = f.metricsAddr
		case "log-level":
			config.LogLevel, flagErr = logrus.ParseLevel(f.logLevel)
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

const commonOptionsHelp = `
	-config=""         YAML configuration file
	-compression=zstd  Compression algorithm: none, zstd, s2, lz4, snappy
	-level=3           Compression level
	-chunk-size=262144 Compressed size at which a chunk is sealed
	-capacity=64       Mailbox capacity between stages
	-metrics-addr=""   Serve prometheus metrics on this address
	-log-level=info    Log level
`
