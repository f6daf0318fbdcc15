package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mlintelligence/internal/mlmarket/business/models"
	"mlintelligence/pkg/dbconnect"
)

// ErrSellerNotFound is returned when a lookup names a seller that was never
// observed on a detail page.
var ErrSellerNotFound = errors.New("seller not found")

// execer lets the seller upsert run against either the pool or an open
// transaction; the enrichment write reuses it inside its transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type SellerRepository struct {
	db     *sql.DB
	driver string
}

func NewSellerRepository(db *sql.DB, driver string) *SellerRepository {
	return &SellerRepository{db: db, driver: driver}
}

// Upsert inserts a seller observation or overwrites the mutable columns of an
// existing one. seller_name is the identity and is never rewritten;
// is_official_store keeps its first-write value.
func (r *SellerRepository) Upsert(ctx context.Context, s models.SellerFact) error {
	if s.Name == "" {
		return errors.New("seller fact missing name")
	}
	now := time.Now().Format(timeLayout)
	if err := upsertSellerExec(ctx, r.db, r.driver, s, now); err != nil {
		return fmt.Errorf("failed to upsert seller %q: %w", s.Name, err)
	}
	return nil
}

func upsertSellerExec(ctx context.Context, ex execer, driver string, s models.SellerFact, now string) error {
	query := dbconnect.Rebind(driver, `
		INSERT INTO sellers (
			seller_name, is_official_store, sales_level, total_sales_history, last_updated
		) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (seller_name) DO UPDATE SET
			sales_level = excluded.sales_level,
			total_sales_history = excluded.total_sales_history,
			last_updated = excluded.last_updated`)

	_, err := ex.ExecContext(ctx, query,
		s.Name, boolToInt(s.IsOfficialStore), s.SalesLevel, s.TotalSalesHistory, now)
	return err
}

// GetByName loads a seller row.
func (r *SellerRepository) GetByName(ctx context.Context, name string) (*models.Seller, error) {
	query := dbconnect.Rebind(r.driver, `
		SELECT seller_name, is_official_store, sales_level, total_sales_history, last_updated
		FROM sellers WHERE seller_name = ?`)

	var (
		s           models.Seller
		official    sql.NullInt64
		level       sql.NullString
		updatedText sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&s.Name, &official, &level, &s.TotalSalesHistory, &updatedText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("seller %q: %w", name, ErrSellerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load seller %q: %w", name, err)
	}
	s.IsOfficialStore = official.Int64 != 0
	s.SalesLevel = level.String
	if updatedText.Valid {
		if t, perr := time.Parse(timeLayout, updatedText.String); perr == nil {
			s.LastUpdated = t
		}
	}
	return &s, nil
}
