package fetch

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"mlintelligence/config/values"
)

const mockCardsPerPage = 8

// MockFetcher synthesizes deterministic marketplace observations so the
// pipeline can run end to end without a browser engine. The same term and
// page always produce the same cards.
type MockFetcher struct {
	values values.ScraperValues
}

func NewMockFetcher(v values.ScraperValues) *MockFetcher {
	return &MockFetcher{values: v}
}

func seedFor(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

func (m *MockFetcher) FetchSearchPage(ctx context.Context, term string, page int) (*RawSearchPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := &RawSearchPage{Term: term, Page: page}
	base := seedFor(term)%9000 + 1000
	for i := 0; i < mockCardsPerPage; i++ {
		n := int(base) + page*mockCardsPerPage + i
		card := RawCard{
			Link:          fmt.Sprintf("https://produto.mercadolivre.com.br/MLB-%08d-%s-_JM", n, slug(term)),
			Title:         fmt.Sprintf("%s modelo %d", term, n),
			PriceText:     fmt.Sprintf("R$ %d,90", 50+(n%40)*25),
			CardText:      "Novo",
			ConditionText: fmt.Sprintf("Novo | %d vendidos", n%200),
			RatingText:    fmt.Sprintf("4.%d", n%10),
		}
		if i%4 == 0 {
			card.CardText = "Patrocinado Novo"
		}
		if i%5 == 0 {
			card.HasFullBadge = true
		}
		out.Cards = append(out.Cards, card)
	}
	return out, nil
}

func (m *MockFetcher) FetchDetail(ctx context.Context, permalink string) (*RawDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := seedFor(permalink)
	now := time.Now()
	dates := []string{
		ptbrDate(now.AddDate(0, 0, -int(seed%30))),
		ptbrDate(now.AddDate(0, 0, -int(seed%30)-45)),
		ptbrDate(now.AddDate(0, 0, -int(seed%30)-120)),
	}
	return &RawDetail{
		URL:          permalink,
		Title:        fmt.Sprintf("Produto %d", seed%100000),
		IsBestSeller: seed%7 == 0,
		Categories:   []string{"Casa, Móveis e Decoração", "Iluminação", "Lustres"},
		SpecRows: []SpecRow{
			{Key: "Marca", Value: fmt.Sprintf("Marca %d", seed%12)},
			{Key: "Modelo", Value: fmt.Sprintf("M-%d", seed%900)},
			{Key: "Voltagem", Value: "Bivolt"},
		},
		Description:           "Descrição sintética para execução offline.",
		AISummary:             "Resumo sintético.",
		RatingLabelText:       fmt.Sprintf("%d avaliações", 10+seed%500),
		TotalOpinionText:      fmt.Sprintf("%d opiniões", 20+seed%800),
		CommentDateTexts:      dates,
		ImmediateAvailability: true,
		SellerName:            fmt.Sprintf("LOJA %d", seed%50),
		SellerClassification:  "MercadoLíder Platinum",
		SellerSalesText:       "+5mil vendas",
		OfficialStore:         seed%3 == 0,
	}, nil
}

var ptMonths = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

func ptbrDate(t time.Time) string {
	return fmt.Sprintf("%02d %s. %d", t.Day(), ptMonths[t.Month()-1], t.Year())
}

func slug(term string) string {
	out := make([]rune, 0, len(term))
	for _, r := range term {
		if r == ' ' {
			out = append(out, '-')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
