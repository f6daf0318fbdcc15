// Package discovery shapes search-page card observations into discovery
// facts and lands them in the product store.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"mlintelligence/internal/mlmarket/business/models"
	"mlintelligence/internal/mlmarket/business/services/parse"
	"mlintelligence/internal/mlmarket/pkg/fetch"
	"mlintelligence/pkg/logger"
)

// ProductStore is the slice of the repository the search pass needs.
type ProductStore interface {
	UpsertDiscovery(ctx context.Context, d models.DiscoveryFields) error
}

type Service struct {
	store ProductStore
	log   logger.Logger
}

func NewService(store ProductStore, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// ShapeCard turns one listing card into a discovery fact. It returns
// (nil, false) for cards that carry no usable product identity: ad
// redirect links, links without an ML id, and cards without a title.
func ShapeCard(card fetch.RawCard, term string, page, ranking int) (*models.DiscoveryFields, bool) {
	if strings.Contains(card.Link, "click1") {
		return nil, false
	}
	mlID := parse.MLID(card.Link)
	if mlID == "" {
		return nil, false
	}
	title := strings.TrimSpace(card.Title)
	if title == "" {
		return nil, false
	}

	cardText := strings.ToLower(card.CardText)

	fact := models.DiscoveryFields{
		MLID:            mlID,
		Title:           title,
		Permalink:       parse.CanonicalPermalink(card.Link),
		SearchTerm:      term,
		LinkTerm:        strings.ReplaceAll(term, " ", "-"),
		IsBestSeller:    strings.Contains(cardText, "mais vendido"),
		IsFull:          card.HasFullBadge,
		IsAd:            strings.Contains(cardText, "patrocinado"),
		IsInternational: strings.Contains(cardText, "internacional"),
		RankingSearch:   ranking,
		IsFirstPage:     page == 0,
	}

	if p := parse.Price(card.PriceText); p != nil {
		fact.PriceCurrent = *p
	}
	// No strikethrough price means the listing is not discounted; the
	// original price then equals the current one.
	if p := parse.Price(card.OriginalPriceText); p != nil {
		fact.PriceOriginal = *p
	} else {
		fact.PriceOriginal = fact.PriceCurrent
	}
	fact.ReviewsRatingAverage = parse.Rating(card.RatingText)

	// The sold-count segment moves between the review box and the condition
	// line depending on card layout; prefer whichever mentions sales.
	soldSource := card.ConditionText
	if strings.Contains(strings.ToLower(card.ReviewBoxText), "vendido") {
		soldSource = card.ReviewBoxText
	}
	fact.SalesQtySearch = parse.SoldCount(soldSource)

	return &fact, true
}

// IngestPage shapes and persists every usable card of a search page.
// Ranking advances only for cards that were actually saved, so skipped
// cards leave no gaps in the ordering. A storage failure halts the page.
func (s *Service) IngestPage(ctx context.Context, page *fetch.RawSearchPage, startRanking int) (int, int, error) {
	saved := 0
	ranking := startRanking
	for _, card := range page.Cards {
		fact, ok := ShapeCard(card, page.Term, page.Page, ranking)
		if !ok {
			continue
		}
		if err := s.store.UpsertDiscovery(ctx, *fact); err != nil {
			return saved, ranking, fmt.Errorf("failed to persist %s: %w", fact.MLID, err)
		}
		saved++
		ranking++
	}
	s.log.Log("term %q page %d: saved %d of %d cards", page.Term, page.Page+1, saved, len(page.Cards))
	return saved, ranking, nil
}
