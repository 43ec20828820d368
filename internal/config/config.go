package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Databases Databases `yaml:"databases"`
	Warehouse Warehouse `yaml:"warehouse"`
	Export    Export    `yaml:"export"`
}

type Databases struct {
	Postgres string `yaml:"postgres"`
	MySQL    string `yaml:"mysql"`
	SQLite   string `yaml:"sqlite"`
}

type Warehouse struct {
	DateWindowDays int `yaml:"date_window_days"`
	LoadBatchSize  int `yaml:"load_batch_size"`
	LoadBatches    int `yaml:"load_batches"`
}

type Export struct {
	OutputDir string `yaml:"output_dir"`
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Warehouse.DateWindowDays == 0 {
		c.Warehouse.DateWindowDays = 730
	}
	if c.Warehouse.LoadBatchSize == 0 {
		c.Warehouse.LoadBatchSize = 200
	}
	if c.Warehouse.LoadBatches == 0 {
		c.Warehouse.LoadBatches = 10
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "./output"
	}
	if c.Databases.SQLite == "" {
		c.Databases.SQLite = "ops_warehouse.db"
	}
}
