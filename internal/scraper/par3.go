package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

// Par3Scraper probes numbered collection pages on par3.lv. It stops at the
// first page without product nodes, or when the page's own "current/total"
// pagination indicator reports the next page past the end. A malformed or
// missing indicator means "assume last page" and stops the probe.
type Par3Scraper struct {
	BaseScraper
	PageURL string
}

// NewPar3Scraper creates the par3.lv scraper
func NewPar3Scraper(cfg config.Config, cacheSvc cache.CacheService) *Par3Scraper {
	return &Par3Scraper{
		BaseScraper: BaseScraper{
			StoreName: "par3.lv",
			BaseURL:   "https://par3.lv",
			CacheKey:  "par3_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: cfg.RateLimitBlock,
			Selectors: Selectors{
				ProductList:   "product-list.product-list",
				Title:         "span.product-card__title",
				Price:         "sale-price",
				FlightRatings: "div.specs_card",
				Image:         "div.product-card__figure img",
				Pagination:    "span.pagination__current",
			},
		},
		PageURL: cfg.Par3PageURL,
	}
}

// Run probes pages in ascending order until the termination condition hits
func (c *Par3Scraper) Run(ctx context.Context, sink Sink) error {
	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return nil
		}

		pageURL := fmt.Sprintf(c.PageURL, page)
		body, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			c.logger().Warn().Err(err).Int("page", page).Msg("Page fetch failed, stopping crawl")
			return nil
		}

		doc, err := c.createDocument(body)
		if err != nil {
			return err
		}

		nodes := doc.Find(c.Selectors.ProductList).First().ChildrenFiltered("product-card")
		if nodes.Length() == 0 {
			c.logger().Info().Int("page", page).Msg("No products found, crawl finished")
			return nil
		}

		records := c.collectRecords(nodes, page, c.parseProduct)
		if len(records) > 0 {
			affected, err := sink.UpsertBatch(ctx, records)
			if err != nil {
				return apperrors.NewDatabase(c.StoreName, "batch upsert failed", err)
			}
			c.logger().Info().Int("page", page).Int("records", len(records)).Int64("affected", affected).Msg("Page committed")
		}

		if c.lastPageReached(doc, page) {
			return nil
		}
	}
}

// lastPageReached reads the "current/total" pagination indicator. Malformed
// or absent indicators are read as "this was the last page".
func (c *Par3Scraper) lastPageReached(doc *goquery.Document, page int) bool {
	indicator := trimmedText(doc.Find(c.Selectors.Pagination).First())
	if indicator == "" {
		c.logger().Debug().Int("page", page).Msg("Pagination indicator not found, assuming last page")
		return true
	}

	parts := strings.Split(indicator, "/")
	if len(parts) != 2 {
		c.logger().Warn().Str("indicator", indicator).Msg("Malformed pagination indicator, assuming last page")
		return true
	}
	total, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		c.logger().Warn().Str("indicator", indicator).Msg("Malformed pagination indicator, assuming last page")
		return true
	}

	if page+1 > total {
		c.logger().Info().Int("page", page).Int("total", total).Msg("Reached last page")
		return true
	}
	return false
}

// parseProduct parses a single product-card node
func (c *Par3Scraper) parseProduct(s *goquery.Selection) (*ProductRecord, error) {
	title := trimmedText(s.Find(c.Selectors.Title).First())
	if title == "" {
		return nil, apperrors.NewParsing(c.StoreName, "title not found", nil)
	}

	priceSel := s.Find(c.Selectors.Price).First()
	if priceSel.Length() == 0 {
		return nil, apperrors.NewParsing(c.StoreName, "price not found for "+title, nil)
	}
	amount, currency := helpers.ParsePrice(lastOwnText(priceSel))
	if amount == "" {
		return nil, apperrors.NewParsing(c.StoreName, "empty price for "+title, nil)
	}

	// Flight numbers come pipe-delimited: "Speed | Glide | Turn | Fade".
	var flight FlightNumbers
	if specs := trimmedText(s.Find(c.Selectors.FlightRatings).First()); specs != "" {
		parts := strings.Split(specs, "|")
		if len(parts) >= 4 {
			flight.Speed = helpers.ParseRating(parts[0])
			flight.Glide = helpers.ParseRating(parts[1])
			flight.Turn = helpers.ParseRating(parts[2])
			flight.Fade = helpers.ParseRating(parts[3])
		}
	}

	link, _ := s.Find("a").First().Attr("href")
	imageSrc, _ := s.Find(c.Selectors.Image).First().Attr("src")

	return &ProductRecord{
		Title:      title,
		Price:      amount,
		Currency:   currency,
		Flight:     flight,
		LinkToDisc: helpers.ResolveURL(link, c.BaseURL),
		ImageURL:   helpers.ResolveURL(imageSrc, c.BaseURL),
	}, nil
}
