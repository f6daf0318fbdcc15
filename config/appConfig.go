package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mlintelligence/config/values"
)

type DatabaseSettings struct {
	Driver   string         `yaml:"driver"`
	Sqlite   SqliteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// Pick returns the backend selected by Driver.
func (ds DatabaseSettings) Pick() (DatabaseConfig, error) {
	switch ds.Driver {
	case "", "sqlite":
		return ds.Sqlite, nil
	case "postgres":
		return ds.Postgres, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", ds.Driver)
	}
}

type AppConfig struct {
	Database    DatabaseSettings     `yaml:"database"`
	Scraper     values.ScraperValues `yaml:"scraper"`
	MetricsAddr string               `yaml:"metrics_addr"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseSettings{
			Driver:   "sqlite",
			Sqlite:   GetSqliteConfig(),
			Postgres: GetPostgresConfig(),
		},
		Scraper: values.Default(),
	}
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}
