package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// MigrationsSchema creates the registry table every other migration checks
// before applying itself. Must run first.
type MigrationsSchema struct{}

func (m *MigrationsSchema) UpMigration(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMP
		);
		`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

type ProductsTable struct{}

func (m *ProductsTable) UpMigration(db *sql.DB) error {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = 'products')").Scan(&migrationExists)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Println("Migration 'products' already completed. Skipping.")
		return nil
	}
	query := `
		CREATE TABLE IF NOT EXISTS products (
		ml_id TEXT PRIMARY KEY,
		title TEXT,
		permalink TEXT,
		search_term TEXT,
		link_term TEXT,

		price_current REAL,
		price_original REAL,
		is_best_seller INTEGER,
		is_full INTEGER,
		is_ad INTEGER,
		sales_qty_search INTEGER,
		reviews_rating_average REAL,
		is_international INTEGER,
		ranking_search INTEGER,
		is_first_page INTEGER,

		brand TEXT,
		model TEXT,
		specifications_json TEXT,
		categories_json TEXT,
		reviews_rating_count INTEGER,
		last_comment_date TEXT,
		days_since_last_comment INTEGER,
		ai_summary TEXT,
		immediate_availability INTEGER,
		description TEXT,
		comments_total_available INTEGER,
		comments_fetched_count INTEGER,
		comments_last_90d INTEGER,

		seller_name TEXT,
		status TEXT DEFAULT 'DISCOVERED',
		last_updated TIMESTAMP
		);
		`
	if _, err = db.Exec(query); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	_, err = db.Exec("INSERT INTO schema_migrations (name, applied_at) VALUES ('products', CURRENT_TIMESTAMP)")
	if err != nil {
		return fmt.Errorf("failed to mark products migration as complete: %w", err)
	}

	log.Println("Migration 'products' completed successfully.")
	return nil
}

type SellersTable struct{}

func (m *SellersTable) UpMigration(db *sql.DB) error {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = 'sellers')").Scan(&migrationExists)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Println("Migration 'sellers' already completed. Skipping.")
		return nil
	}
	query := `
		CREATE TABLE IF NOT EXISTS sellers (
		seller_name TEXT PRIMARY KEY,
		is_official_store INTEGER,
		sales_level TEXT,
		total_sales_history INTEGER,
		last_updated TIMESTAMP
		);
		`
	if _, err = db.Exec(query); err != nil {
		return fmt.Errorf("failed to create sellers table: %w", err)
	}
	_, err = db.Exec("INSERT INTO schema_migrations (name, applied_at) VALUES ('sellers', CURRENT_TIMESTAMP)")
	if err != nil {
		return fmt.Errorf("failed to mark sellers migration as complete: %w", err)
	}

	log.Println("Migration 'sellers' completed successfully.")
	return nil
}
