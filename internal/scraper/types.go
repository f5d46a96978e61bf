package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// FlightNumbers holds the four disc flight ratings. Missing values stay nil;
// a product with all four nil is not a disc and is never persisted.
type FlightNumbers struct {
	Speed *float64
	Glide *float64
	Turn  *float64
	Fade  *float64
}

// Empty reports whether all four ratings are absent
func (f FlightNumbers) Empty() bool {
	return f.Speed == nil && f.Glide == nil && f.Turn == nil && f.Fade == nil
}

// ProductRecord represents a normalized scraped product
type ProductRecord struct {
	UniqueID   string
	Title      string
	Price      string
	Currency   string
	Flight     FlightNumbers
	LinkToDisc string
	ImageURL   string
	Store      string
}

// Sink receives batches of normalized records. Each batch is written
// atomically with insert-or-update semantics keyed on UniqueID.
type Sink interface {
	UpsertBatch(ctx context.Context, records []ProductRecord) (int64, error)
}

// Scraper interface defines the contract for all store scrapers
type Scraper interface {
	// Run crawls the store and submits batches to the sink
	Run(ctx context.Context, sink Sink) error

	// Store returns the store domain used as the record's store field
	Store() string
}

// ProcessorFunc parses a single product node into a record. Returning an
// error skips the node; the rest of the page is still processed.
type ProcessorFunc func(s *goquery.Selection) (*ProductRecord, error)

// Selectors contains CSS selectors for the elements of a store's markup
type Selectors struct {
	ProductList   string
	Title         string
	Price         string
	FlightRatings string
	Link          string
	Image         string
	Pagination    string
	ShowMore      string
	WaitFor       string
}
