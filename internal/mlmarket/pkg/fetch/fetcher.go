// Package fetch is the boundary to the page-fetching collaborator. All
// selector- and browser-specific logic lives behind these interfaces; the
// pipeline only ever sees raw text observations.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrPageLoad = errors.New("page load failed")
	ErrTimeout  = errors.New("fetch timed out")
	ErrBlocked  = errors.New("blocked by marketplace anti-bot")
)

// FieldError records a single selector that failed during extraction.
// The shaping step maps every such field to a documented default instead
// of failing the item.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// RawCard is one listing-card observation from a search results page.
type RawCard struct {
	Link              string
	Title             string
	PriceText         string
	OriginalPriceText string
	CardText          string // full card inner text; flags are derived from it
	ReviewBoxText     string
	ConditionText     string
	RatingText        string
	HasFullBadge      bool
}

type RawSearchPage struct {
	Term  string
	Page  int // zero-based
	Cards []RawCard
}

// RawDetail is one product detail-page observation.
type RawDetail struct {
	URL                   string
	Title                 string
	IsBestSeller          bool
	Categories            []string // breadcrumb labels, root to leaf
	SpecRows              []SpecRow
	Description           string
	AISummary             string
	RatingLabelText       string
	TotalOpinionText      string
	CommentDateTexts      []string
	ImmediateAvailability bool
	IsInternational       bool

	SellerName           string
	SellerClassification string
	SellerThermometer    string
	SellerSalesText      string
	OfficialStore        bool

	FieldErrors []FieldError
}

// SpecRow is one row of the specification table, order preserved.
type SpecRow struct {
	Key   string
	Value string
}

type SearchFetcher interface {
	FetchSearchPage(ctx context.Context, term string, page int) (*RawSearchPage, error)
}

type DetailFetcher interface {
	FetchDetail(ctx context.Context, permalink string) (*RawDetail, error)
}
