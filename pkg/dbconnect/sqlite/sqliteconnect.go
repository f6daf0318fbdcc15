package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"mlintelligence/config"
)

// SqliteDatabase opens the local store file, creating its directory on
// first use. The DSN enables WAL and a busy timeout so an external writer
// (a second discovery process) serializes instead of failing.
type SqliteDatabase struct {
	config.SqliteConfig
	db *sql.DB
	mu sync.Mutex
}

func NewConnector(dbConfig config.SqliteConfig) *SqliteDatabase {
	return &SqliteDatabase{SqliteConfig: dbConfig}
}

func (s *SqliteDatabase) Connect() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	if dir := filepath.Dir(s.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s.db = db
	return s.db, nil
}

func (s *SqliteDatabase) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return fmt.Errorf("database connection is not established")
	}
	return s.db.Ping()
}

func (s *SqliteDatabase) DriverName() string { return "sqlite" }
