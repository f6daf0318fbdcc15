package models

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusDiscovered Status = "DISCOVERED"
	StatusEnriched   Status = "ENRICHED"
)

// DiscoveryFields is the field group owned by the search pass. A discovery
// upsert rewrites this whole group and nothing else.
type DiscoveryFields struct {
	MLID                 string
	Title                string
	Permalink            string
	SearchTerm           string
	LinkTerm             string
	PriceCurrent         float64
	PriceOriginal        float64
	IsBestSeller         bool
	IsFull               bool
	IsAd                 bool
	SalesQtySearch       int
	ReviewsRatingAverage *float64 // nil when the listing card carried no rating
	IsInternational      bool
	RankingSearch        int
	IsFirstPage          bool
}

func (f DiscoveryFields) Validate() error {
	if strings.TrimSpace(f.MLID) == "" {
		return errors.New("discovery fact missing ml_id")
	}
	if strings.TrimSpace(f.Permalink) == "" {
		return errors.New("discovery fact missing permalink")
	}
	if strings.TrimSpace(f.Title) == "" {
		return errors.New("discovery fact missing title")
	}
	return nil
}

// EnrichmentFields is the field group owned by the detail pass.
// IsBestSeller and IsInternational are re-observed on the detail page and
// overwrite the shared columns; ranking/search-term/first-page never do.
type EnrichmentFields struct {
	Brand                  *string
	Model                  *string
	Specifications         *OrderedMap
	Categories             *OrderedMap
	ReviewsRatingCount     int
	LastCommentDate        *time.Time
	DaysSinceLastComment   *int
	AISummary              *string
	ImmediateAvailability  bool
	Description            *string
	CommentsTotalAvailable int
	CommentsFetchedCount   int
	CommentsLast90d        int
	IsBestSeller           bool
	IsInternational        bool
	SellerName             *string // populated from the seller fact at write time
}

type Product struct {
	Discovery   DiscoveryFields
	Enrichment  EnrichmentFields
	Status      Status
	LastUpdated time.Time
}
