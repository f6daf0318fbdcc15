package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mlintelligence/internal/mlmarket/business/models"
	"mlintelligence/pkg/dbconnect"
)

// timeLayout is the canonical form for every timestamp we persist. Stored as
// text so that staleness cutoffs compare the same way on both drivers.
const timeLayout = "2006-01-02 15:04:05"

// ErrProductNotFound is returned when an enrichment write targets an ml_id
// that was never discovered.
var ErrProductNotFound = errors.New("product not found")

const defaultCandidateLimit = 50

type ProductRepository struct {
	db     *sql.DB
	driver string
}

func NewProductRepository(db *sql.DB, driver string) *ProductRepository {
	return &ProductRepository{db: db, driver: driver}
}

// UpsertDiscovery inserts a search observation or, on conflict, overwrites the
// full discovery field group plus last_updated. Enrichment columns and status
// are never touched here, so a repeated search pass cannot demote an already
// enriched product.
func (r *ProductRepository) UpsertDiscovery(ctx context.Context, d models.DiscoveryFields) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid discovery record: %w", err)
	}

	query := dbconnect.Rebind(r.driver, `
		INSERT INTO products (
			ml_id, title, permalink, search_term, link_term,
			price_current, price_original,
			is_best_seller, is_full, is_ad,
			sales_qty_search, reviews_rating_average,
			is_international, ranking_search, is_first_page,
			status, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'DISCOVERED', ?)
		ON CONFLICT (ml_id) DO UPDATE SET
			title = excluded.title,
			permalink = excluded.permalink,
			search_term = excluded.search_term,
			link_term = excluded.link_term,
			price_current = excluded.price_current,
			price_original = excluded.price_original,
			is_best_seller = excluded.is_best_seller,
			is_full = excluded.is_full,
			is_ad = excluded.is_ad,
			sales_qty_search = excluded.sales_qty_search,
			reviews_rating_average = excluded.reviews_rating_average,
			is_international = excluded.is_international,
			ranking_search = excluded.ranking_search,
			is_first_page = excluded.is_first_page,
			last_updated = excluded.last_updated`)

	now := time.Now().Format(timeLayout)
	_, err := r.db.ExecContext(ctx, query,
		d.MLID, d.Title, d.Permalink, d.SearchTerm, d.LinkTerm,
		d.PriceCurrent, d.PriceOriginal,
		boolToInt(d.IsBestSeller), boolToInt(d.IsFull), boolToInt(d.IsAd),
		d.SalesQtySearch, nullFloat(d.ReviewsRatingAverage),
		boolToInt(d.IsInternational), d.RankingSearch, boolToInt(d.IsFirstPage),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert discovery record for %s: %w", d.MLID, err)
	}
	return nil
}

// UpsertEnrichment writes the enrichment field group for an existing product
// and promotes it to ENRICHED. When the detail page also yielded a seller
// observation, the seller row is written in the same transaction so a product
// never references a seller that failed to persist.
func (r *ProductRepository) UpsertEnrichment(ctx context.Context, mlID string, e models.EnrichmentFields, seller *models.SellerFact) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin enrichment transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Format(timeLayout)

	if seller != nil && seller.Name != "" {
		if err := upsertSellerExec(ctx, tx, r.driver, *seller, now); err != nil {
			return fmt.Errorf("failed to upsert seller %q: %w", seller.Name, err)
		}
	}

	specsJSON, err := marshalOrderedMap(e.Specifications)
	if err != nil {
		return fmt.Errorf("failed to encode specifications for %s: %w", mlID, err)
	}
	catsJSON, err := marshalOrderedMap(e.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories for %s: %w", mlID, err)
	}

	query := dbconnect.Rebind(r.driver, `
		UPDATE products SET
			brand = ?,
			model = ?,
			specifications_json = ?,
			categories_json = ?,
			reviews_rating_count = ?,
			last_comment_date = ?,
			days_since_last_comment = ?,
			ai_summary = ?,
			immediate_availability = ?,
			description = ?,
			comments_total_available = ?,
			comments_fetched_count = ?,
			comments_last_90d = ?,
			is_best_seller = ?,
			is_international = ?,
			seller_name = ?,
			status = 'ENRICHED',
			last_updated = ?
		WHERE ml_id = ?`)

	res, err := tx.ExecContext(ctx, query,
		nullString(e.Brand), nullString(e.Model),
		specsJSON, catsJSON,
		e.ReviewsRatingCount,
		nullTime(e.LastCommentDate), nullInt(e.DaysSinceLastComment),
		nullString(e.AISummary),
		boolToInt(e.ImmediateAvailability), nullString(e.Description),
		e.CommentsTotalAvailable, e.CommentsFetchedCount, e.CommentsLast90d,
		boolToInt(e.IsBestSeller), boolToInt(e.IsInternational),
		nullString(e.SellerName),
		now, mlID,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrichment record for %s: %w", mlID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for %s: %w", mlID, err)
	}
	if affected == 0 {
		return fmt.Errorf("enrichment target %s: %w", mlID, ErrProductNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit enrichment for %s: %w", mlID, err)
	}
	return nil
}

// SelectCandidates returns products matching every set filter, in random
// order, capped at the filter limit. Products without a rating pass the
// MinRating filter so that unrated listings stay eligible for enrichment.
func (r *ProductRepository) SelectCandidates(ctx context.Context, f models.CandidateFilter) ([]models.CandidateRef, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.MinPrice > 0 {
		conds = append(conds, "price_current >= ?")
		args = append(args, f.MinPrice)
	}
	if f.MinRating > 0 {
		conds = append(conds, "(reviews_rating_average >= ? OR reviews_rating_average IS NULL)")
		args = append(args, f.MinRating)
	}
	if f.MinSales > 0 {
		conds = append(conds, "sales_qty_search >= ?")
		args = append(args, f.MinSales)
	}
	if f.DaysSinceUpdate > 0 {
		cutoff := time.Now().AddDate(0, 0, -f.DaysSinceUpdate).Format(timeLayout)
		conds = append(conds, "last_updated <= ?")
		args = append(args, cutoff)
	}
	if f.SearchTerm != "" {
		conds = append(conds, "search_term = ?")
		args = append(args, f.SearchTerm)
	}
	if f.OnlyNew {
		conds = append(conds, "status = 'DISCOVERED'")
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	query := "SELECT ml_id, permalink, title, last_updated FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY RANDOM() LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, dbconnect.Rebind(r.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.CandidateRef
	for rows.Next() {
		var (
			c       models.CandidateRef
			title   sql.NullString
			updated sql.NullString
		)
		if err := rows.Scan(&c.MLID, &c.Permalink, &title, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		c.Title = title.String
		if updated.Valid {
			if t, perr := time.Parse(timeLayout, updated.String); perr == nil {
				c.LastUpdated = t
			}
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidate rows: %w", err)
	}
	return candidates, nil
}

// GetProduct loads a full row by ml_id.
func (r *ProductRepository) GetProduct(ctx context.Context, mlID string) (*models.Product, error) {
	query := dbconnect.Rebind(r.driver, `
		SELECT ml_id, title, permalink, search_term, link_term,
			price_current, price_original,
			is_best_seller, is_full, is_ad,
			sales_qty_search, reviews_rating_average,
			is_international, ranking_search, is_first_page,
			brand, model, specifications_json, categories_json,
			reviews_rating_count, last_comment_date, days_since_last_comment,
			ai_summary, immediate_availability, description,
			comments_total_available, comments_fetched_count, comments_last_90d,
			seller_name, status, last_updated
		FROM products WHERE ml_id = ?`)

	var (
		p models.Product

		title, searchTerm, linkTerm                            sql.NullString
		priceCurrent, priceOriginal, rating                    sql.NullFloat64
		isBestSeller, isFull, isAd, isInternational, firstPage sql.NullInt64
		salesQty, ranking                                      sql.NullInt64

		brand, model, specsJSON, catsJSON   sql.NullString
		ratingCount                         sql.NullInt64
		lastComment                         sql.NullString
		daysSince                           sql.NullInt64
		aiSummary, description              sql.NullString
		availability                        sql.NullInt64
		totalAvail, fetchedCount, last90d   sql.NullInt64
		sellerName, status, lastUpdatedText sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, mlID).Scan(
		&p.Discovery.MLID, &title, &p.Discovery.Permalink, &searchTerm, &linkTerm,
		&priceCurrent, &priceOriginal,
		&isBestSeller, &isFull, &isAd,
		&salesQty, &rating,
		&isInternational, &ranking, &firstPage,
		&brand, &model, &specsJSON, &catsJSON,
		&ratingCount, &lastComment, &daysSince,
		&aiSummary, &availability, &description,
		&totalAvail, &fetchedCount, &last90d,
		&sellerName, &status, &lastUpdatedText,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", mlID, ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", mlID, err)
	}

	p.Discovery.Title = title.String
	p.Discovery.SearchTerm = searchTerm.String
	p.Discovery.LinkTerm = linkTerm.String
	p.Discovery.PriceCurrent = priceCurrent.Float64
	p.Discovery.PriceOriginal = priceOriginal.Float64
	p.Discovery.IsBestSeller = isBestSeller.Int64 != 0
	p.Discovery.IsFull = isFull.Int64 != 0
	p.Discovery.IsAd = isAd.Int64 != 0
	p.Discovery.SalesQtySearch = int(salesQty.Int64)
	p.Discovery.ReviewsRatingAverage = floatPtr(rating)
	p.Discovery.IsInternational = isInternational.Int64 != 0
	p.Discovery.RankingSearch = int(ranking.Int64)
	p.Discovery.IsFirstPage = firstPage.Int64 != 0

	p.Enrichment.Brand = stringPtr(brand)
	p.Enrichment.Model = stringPtr(model)
	if specsJSON.Valid && specsJSON.String != "" {
		m := models.NewOrderedMap()
		if uerr := m.UnmarshalJSON([]byte(specsJSON.String)); uerr != nil {
			return nil, fmt.Errorf("failed to decode specifications for %s: %w", mlID, uerr)
		}
		p.Enrichment.Specifications = m
	}
	if catsJSON.Valid && catsJSON.String != "" {
		m := models.NewOrderedMap()
		if uerr := m.UnmarshalJSON([]byte(catsJSON.String)); uerr != nil {
			return nil, fmt.Errorf("failed to decode categories for %s: %w", mlID, uerr)
		}
		p.Enrichment.Categories = m
	}
	p.Enrichment.ReviewsRatingCount = int(ratingCount.Int64)
	if lastComment.Valid && lastComment.String != "" {
		if t, perr := time.Parse(timeLayout, lastComment.String); perr == nil {
			p.Enrichment.LastCommentDate = &t
		}
	}
	if daysSince.Valid {
		d := int(daysSince.Int64)
		p.Enrichment.DaysSinceLastComment = &d
	}
	p.Enrichment.AISummary = stringPtr(aiSummary)
	p.Enrichment.ImmediateAvailability = availability.Int64 != 0
	p.Enrichment.Description = stringPtr(description)
	p.Enrichment.CommentsTotalAvailable = int(totalAvail.Int64)
	p.Enrichment.CommentsFetchedCount = int(fetchedCount.Int64)
	p.Enrichment.CommentsLast90d = int(last90d.Int64)
	p.Enrichment.SellerName = stringPtr(sellerName)

	p.Status = models.Status(status.String)
	if lastUpdatedText.Valid {
		if t, perr := time.Parse(timeLayout, lastUpdatedText.String); perr == nil {
			p.LastUpdated = t
		}
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return v.Format(timeLayout)
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func marshalOrderedMap(m *models.OrderedMap) (interface{}, error) {
	if m == nil || m.Len() == 0 {
		return nil, nil
	}
	b, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
