package fetch

import (
	"fmt"

	"mlintelligence/config/values"
)

// NewEngine builds the configured fetch engine. The real browser engine is
// an external collaborator and is not bundled; the mock engine runs fully
// offline for demos and tests.
func NewEngine(v values.ScraperValues) (SearchFetcher, DetailFetcher, error) {
	switch v.Engine {
	case "", "mock":
		m := NewMockFetcher(v)
		return m, m, nil
	default:
		return nil, nil, fmt.Errorf("unknown fetch engine %q", v.Engine)
	}
}
