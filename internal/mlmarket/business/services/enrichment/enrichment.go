// Package enrichment shapes detail-page observations into enrichment facts
// and writes them over existing discovery records.
package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mlintelligence/internal/mlmarket/business/models"
	"mlintelligence/internal/mlmarket/business/services/parse"
	"mlintelligence/internal/mlmarket/pkg/fetch"
	"mlintelligence/pkg/logger"
)

// aiSummaryDefault is stored when the page exposes no generated summary.
const aiSummaryDefault = "Não disponível"

// commentWindowDays bounds the recent-activity counter.
const commentWindowDays = 90

// ProductStore is the slice of the repository the detail pass needs.
type ProductStore interface {
	UpsertEnrichment(ctx context.Context, mlID string, e models.EnrichmentFields, seller *models.SellerFact) error
}

type Service struct {
	products ProductStore
	log      logger.Logger
	now      func() time.Time
}

func NewService(products ProductStore, log logger.Logger) *Service {
	return &Service{products: products, log: log, now: time.Now}
}

// Shape turns a raw detail observation into the enrichment field group plus
// an optional seller fact. Missing page regions map to their documented
// defaults; Shape itself never fails.
func (s *Service) Shape(detail *fetch.RawDetail) (models.EnrichmentFields, *models.SellerFact) {
	e := models.EnrichmentFields{
		ImmediateAvailability: detail.ImmediateAvailability,
		IsBestSeller:          detail.IsBestSeller,
		IsInternational:       detail.IsInternational,
	}

	if len(detail.SpecRows) > 0 {
		specs := models.NewOrderedMap()
		for _, row := range detail.SpecRows {
			key := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(row.Key), ":"))
			if key == "" {
				continue
			}
			value := strings.TrimSpace(row.Value)
			specs.Set(key, value)
			switch {
			case strings.Contains(key, "Marca") && e.Brand == nil:
				e.Brand = &value
			case strings.Contains(key, "Modelo") && e.Model == nil:
				e.Model = &value
			}
		}
		if specs.Len() > 0 {
			e.Specifications = specs
		}
	}

	if len(detail.Categories) > 0 {
		cats := models.NewOrderedMap()
		for i, label := range detail.Categories {
			cats.Set(fmt.Sprintf("categoria_%d", i+1), strings.TrimSpace(label))
		}
		e.Categories = cats
	}

	e.ReviewsRatingCount = parse.Digits(detail.RatingLabelText)
	e.CommentsTotalAvailable = parse.Digits(detail.TotalOpinionText)

	now := s.now()
	cutoff := now.AddDate(0, 0, -commentWindowDays)
	var latest *time.Time
	for _, text := range detail.CommentDateTexts {
		d := parse.DatePTBR(text)
		if d == nil {
			continue
		}
		e.CommentsFetchedCount++
		if !d.Before(cutoff) {
			e.CommentsLast90d++
		}
		if latest == nil || d.After(*latest) {
			latest = d
		}
	}
	if latest != nil {
		e.LastCommentDate = latest
		days := int(now.Sub(*latest).Hours() / 24)
		e.DaysSinceLastComment = &days
	}

	summary := strings.TrimSpace(detail.AISummary)
	if summary == "" {
		summary = aiSummaryDefault
	}
	e.AISummary = &summary

	if desc := strings.TrimSpace(detail.Description); desc != "" {
		e.Description = &desc
	}

	seller := shapeSeller(detail)
	if seller != nil {
		e.SellerName = &seller.Name
	}
	return e, seller
}

// shapeSeller reads the seller block. The classification title wins; the
// thermometer level is the fallback; a sentinel marks sellers where neither
// could be read.
func shapeSeller(detail *fetch.RawDetail) *models.SellerFact {
	name := strings.TrimSpace(detail.SellerName)
	if name == "" {
		return nil
	}
	level := strings.TrimSpace(detail.SellerClassification)
	if level == "" {
		if n := parse.Digits(detail.SellerThermometer); n > 0 {
			level = fmt.Sprintf("level %d", n)
		} else {
			level = models.SalesLevelUnknown
		}
	}
	return &models.SellerFact{
		Name:              name,
		IsOfficialStore:   detail.OfficialStore,
		SalesLevel:        level,
		TotalSalesHistory: parse.Magnitude(detail.SellerSalesText),
	}
}

// Process shapes a detail observation and persists it for the given product.
func (s *Service) Process(ctx context.Context, mlID string, detail *fetch.RawDetail) error {
	for _, fe := range detail.FieldErrors {
		s.log.Log("item %s: %s, using default", mlID, fe.Error())
	}
	e, seller := s.Shape(detail)
	if err := s.products.UpsertEnrichment(ctx, mlID, e, seller); err != nil {
		return err
	}
	return nil
}
