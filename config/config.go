package config

import (
	"fmt"
	"os"
)

type DatabaseConfig interface {
	GetConnectionString() string
	DriverName() string
}

// PostgresConfig represents the configuration needed to connect to a PostgreSQL database
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

func (pc PostgresConfig) GetConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

func (pc PostgresConfig) DriverName() string { return "postgres" }

func GetPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnv("POSTGRES_PORT", "5432"),
		User:     getEnv("POSTGRES_USER", "postgres"),
		Password: getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:   getEnv("POSTGRES_NAME", "postgres"),
	}
}

// SqliteConfig holds the path of a local SQLite store file.
type SqliteConfig struct {
	Path string `yaml:"path"`
}

func (sc SqliteConfig) GetConnectionString() string {
	return sc.Path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
}

func (sc SqliteConfig) DriverName() string { return "sqlite" }

func GetSqliteConfig() SqliteConfig {
	return SqliteConfig{
		Path: getEnv("SQLITE_PATH", "data/ml_intelligence.db"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
