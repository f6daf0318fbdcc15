package models

import "time"

// CandidateFilter gates which products are eligible for a (re-)detail
// fetch. All clauses AND together; zero values disable their clause.
type CandidateFilter struct {
	MinPrice        float64
	MinRating       float64
	MinSales        int
	DaysSinceUpdate int
	SearchTerm      string // empty means no term scope
	OnlyNew         bool   // true restricts to status DISCOVERED
	Limit           int
}

type CandidateRef struct {
	MLID        string
	Permalink   string
	Title       string
	LastUpdated time.Time
}
