package models

import "time"

// SalesLevelUnknown is stored when neither a classification title nor a
// thermometer value could be read off the seller block.
const SalesLevelUnknown = "Not Found"

type SellerFact struct {
	Name              string
	IsOfficialStore   bool
	SalesLevel        string
	TotalSalesHistory int
}

type Seller struct {
	Name              string
	IsOfficialStore   bool
	SalesLevel        string
	TotalSalesHistory int
	LastUpdated       time.Time
}
