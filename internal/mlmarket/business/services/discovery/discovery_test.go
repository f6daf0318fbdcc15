package discovery

import (
	"context"
	"errors"
	"testing"

	"mlintelligence/internal/mlmarket/business/models"
	"mlintelligence/internal/mlmarket/pkg/fetch"
)

type nopLogger struct{}

func (nopLogger) Log(string, ...interface{})   {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) SetPrefix(string)             {}

type fakeStore struct {
	saved   []models.DiscoveryFields
	failOn  string
	failErr error
}

func (f *fakeStore) UpsertDiscovery(_ context.Context, d models.DiscoveryFields) error {
	if f.failOn != "" && d.MLID == f.failOn {
		return f.failErr
	}
	f.saved = append(f.saved, d)
	return nil
}

func card(link, title string) fetch.RawCard {
	return fetch.RawCard{
		Link:      link,
		Title:     title,
		PriceText: "R$ 1.299,90",
	}
}

func TestShapeCardFull(t *testing.T) {
	c := fetch.RawCard{
		Link:              "https://www.mercadolivre.com.br/furadeira/p/MLB12345678#wid=abc",
		Title:             "Furadeira de Impacto",
		PriceText:         "R$ 1.299,90",
		OriginalPriceText: "R$ 1.599,90",
		CardText:          "Patrocinado\nMAIS VENDIDO\nFuradeira de Impacto",
		ReviewBoxText:     "4.8 (330) | +1mil vendidos",
		RatingText:        "4.8",
		HasFullBadge:      true,
	}

	fact, ok := ShapeCard(c, "furadeira de impacto", 0, 7)
	if !ok {
		t.Fatal("expected card to shape")
	}
	if fact.MLID != "MLB12345678" {
		t.Errorf("MLID = %q", fact.MLID)
	}
	if fact.Permalink != "https://www.mercadolivre.com.br/furadeira/p/MLB12345678" {
		t.Errorf("Permalink = %q, want fragment stripped", fact.Permalink)
	}
	if fact.LinkTerm != "furadeira-de-impacto" {
		t.Errorf("LinkTerm = %q", fact.LinkTerm)
	}
	if fact.PriceCurrent != 1299.90 || fact.PriceOriginal != 1599.90 {
		t.Errorf("prices = %v / %v", fact.PriceCurrent, fact.PriceOriginal)
	}
	if !fact.IsAd || !fact.IsBestSeller || !fact.IsFull {
		t.Errorf("flags = ad:%v best:%v full:%v, want all true", fact.IsAd, fact.IsBestSeller, fact.IsFull)
	}
	if fact.SalesQtySearch != 1000 {
		t.Errorf("SalesQtySearch = %d, want 1000", fact.SalesQtySearch)
	}
	if fact.ReviewsRatingAverage == nil || *fact.ReviewsRatingAverage != 4.8 {
		t.Errorf("rating = %v, want 4.8", fact.ReviewsRatingAverage)
	}
	if !fact.IsFirstPage || fact.RankingSearch != 7 {
		t.Errorf("page fields = first:%v rank:%d", fact.IsFirstPage, fact.RankingSearch)
	}
}

func TestShapeCardSkips(t *testing.T) {
	cases := []struct {
		name string
		card fetch.RawCard
	}{
		{"ad redirect link", card("https://click1.mercadolivre.com.br/track?x=1", "Produto")},
		{"no ml id in link", card("https://www.mercadolivre.com.br/produto-generico", "Produto")},
		{"empty title", card("https://www.mercadolivre.com.br/p/MLB11112222", "  ")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := ShapeCard(tc.card, "produto", 0, 0); ok {
				t.Error("expected card to be skipped")
			}
		})
	}
}

func TestShapeCardMissingRatingStaysNil(t *testing.T) {
	c := card("https://www.mercadolivre.com.br/p/MLB11112222", "Produto")
	fact, ok := ShapeCard(c, "produto", 1, 0)
	if !ok {
		t.Fatal("expected card to shape")
	}
	if fact.ReviewsRatingAverage != nil {
		t.Errorf("rating = %v, want nil when the card carries none", *fact.ReviewsRatingAverage)
	}
	if fact.IsFirstPage {
		t.Error("page 1 must not be flagged first page")
	}
}

func TestShapeCardOriginalPriceDefaultsToCurrent(t *testing.T) {
	c := card("https://www.mercadolivre.com.br/p/MLB11112222", "Produto")
	c.PriceText = "R$ 199,90"
	c.OriginalPriceText = ""
	fact, ok := ShapeCard(c, "produto", 0, 0)
	if !ok {
		t.Fatal("expected card to shape")
	}
	if fact.PriceOriginal != 199.90 {
		t.Errorf("PriceOriginal = %v, want the current price on a non-discounted card", fact.PriceOriginal)
	}
}

func TestShapeCardSoldCountFromConditionLine(t *testing.T) {
	c := card("https://www.mercadolivre.com.br/p/MLB11112222", "Produto")
	c.ConditionText = "Novo | +500 vendidos"
	c.ReviewBoxText = "4.6 (120)"
	fact, _ := ShapeCard(c, "produto", 0, 0)
	if fact.SalesQtySearch != 500 {
		t.Errorf("SalesQtySearch = %d, want 500 from the condition line", fact.SalesQtySearch)
	}
}

func TestIngestPageRankingSkipsLeaveNoGaps(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nopLogger{})

	page := &fetch.RawSearchPage{
		Term: "furadeira",
		Page: 0,
		Cards: []fetch.RawCard{
			card("https://www.mercadolivre.com.br/p/MLB00000001", "Furadeira A"),
			card("https://click1.mercadolivre.com.br/track?x=1", "Anúncio"),
			card("https://www.mercadolivre.com.br/p/MLB00000002", "Furadeira B"),
		},
	}

	saved, next, err := svc.IngestPage(context.Background(), page, 1)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if saved != 2 || next != 3 {
		t.Errorf("saved = %d next = %d, want 2 and 3", saved, next)
	}
	if len(store.saved) != 2 {
		t.Fatalf("store received %d facts", len(store.saved))
	}
	if store.saved[0].RankingSearch != 1 || store.saved[1].RankingSearch != 2 {
		t.Errorf("rankings = %d, %d, want consecutive 1, 2",
			store.saved[0].RankingSearch, store.saved[1].RankingSearch)
	}
}

func TestIngestPageHaltsOnStorageError(t *testing.T) {
	boom := errors.New("disk is gone")
	store := &fakeStore{failOn: "MLB00000002", failErr: boom}
	svc := NewService(store, nopLogger{})

	page := &fetch.RawSearchPage{
		Term: "furadeira",
		Cards: []fetch.RawCard{
			card("https://www.mercadolivre.com.br/p/MLB00000001", "Furadeira A"),
			card("https://www.mercadolivre.com.br/p/MLB00000002", "Furadeira B"),
			card("https://www.mercadolivre.com.br/p/MLB00000003", "Furadeira C"),
		},
	}

	saved, _, err := svc.IngestPage(context.Background(), page, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the storage error surfaced", err)
	}
	if saved != 1 {
		t.Errorf("saved = %d, want ingestion halted after the first card", saved)
	}
}
