package scraper

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

// Latitude64Scraper crawls latitude64.com through its product sitemap: every
// listed product page is visited exactly once, with a polite delay between
// fetches, and the whole crawl is written as a single batch.
type Latitude64Scraper struct {
	BaseScraper
	SitemapURL string
	PageDelay  time.Duration
}

// NewLatitude64Scraper creates the latitude64.com scraper
func NewLatitude64Scraper(cfg config.Config, cacheSvc cache.CacheService) *Latitude64Scraper {
	return &Latitude64Scraper{
		BaseScraper: BaseScraper{
			StoreName: "latitude64.com",
			BaseURL:   "https://latitude64.com",
			CacheKey:  "latitude64_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: cfg.RateLimitBlock,
			Selectors: Selectors{
				Title:         "h1.product-info__title",
				Price:         "sale-price",
				FlightRatings: "div.feature-chart__table-row",
				Image:         "img.rounded",
			},
		},
		SitemapURL: cfg.Latitude64SitemapURL,
		PageDelay:  cfg.Latitude64PageDelay,
	}
}

// Run enumerates the sitemap and scrapes each product page
func (c *Latitude64Scraper) Run(ctx context.Context, sink Sink) error {
	body, err := c.fetchPage(ctx, c.SitemapURL)
	if err != nil {
		return err
	}

	urls, err := ParseSitemap(body, c.BaseURL)
	if err != nil {
		return apperrors.NewParsing(c.StoreName, "failed to parse sitemap", err)
	}

	c.logger().Info().Int("pages", len(urls)).Msg("Sitemap enumerated")

	var records []ProductRecord
	for i, pageURL := range urls {
		if ctx.Err() != nil {
			break
		}

		pageBody, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			// A page fetch failure stops the traversal cleanly; whatever
			// was collected so far is still committed below.
			c.logger().Warn().Err(err).Str("url", pageURL).Msg("Page fetch failed, stopping crawl")
			break
		}

		doc, err := c.createDocument(pageBody)
		if err != nil {
			c.logger().Warn().Err(err).Str("url", pageURL).Msg("Skipping unparseable page")
			continue
		}

		record, err := c.parseProduct(doc.Selection, pageURL)
		if err != nil {
			c.logger().Warn().Err(err).Int("page", i).Str("url", pageURL).Msg("Skipping product page")
		} else if finalized, ok := c.finalize(record); ok {
			records = append(records, *finalized)
		}

		if c.PageDelay > 0 {
			time.Sleep(c.PageDelay)
		}
	}

	if len(records) == 0 {
		c.logger().Info().Msg("No disc products collected")
		return nil
	}

	affected, err := sink.UpsertBatch(ctx, records)
	if err != nil {
		return apperrors.NewDatabase(c.StoreName, "batch upsert failed", err)
	}
	c.logger().Info().Int("records", len(records)).Int64("affected", affected).Msg("Crawl committed")
	return nil
}

// parseProduct parses a single latitude64 product page
func (c *Latitude64Scraper) parseProduct(s *goquery.Selection, pageURL string) (*ProductRecord, error) {
	title := trimmedText(s.Find(c.Selectors.Title).First())
	if title == "" {
		return nil, apperrors.NewParsing(c.StoreName, "title not found", nil)
	}

	priceSel := s.Find(c.Selectors.Price).First()
	if priceSel.Length() == 0 {
		return nil, apperrors.NewParsing(c.StoreName, "price not found", nil)
	}
	// Screen-reader spans duplicate the visible price text.
	priceClone := priceSel.Clone()
	priceClone.Find("span.sr-only").Remove()
	amount, currency := helpers.ParsePrice(trimmedText(priceClone))
	if amount == "" {
		return nil, apperrors.NewParsing(c.StoreName, "empty price for "+title, nil)
	}

	var flight FlightNumbers
	s.Find(c.Selectors.FlightRatings).Each(func(_ int, row *goquery.Selection) {
		label := trimmedText(row.Find("div.feature-chart__heading"))
		value := trimmedText(row.Find("div.feature-chart__value"))
		switch label {
		case "Speed":
			flight.Speed = helpers.ParseRating(value)
		case "Glide":
			flight.Glide = helpers.ParseRating(value)
		case "Turn":
			flight.Turn = helpers.ParseRating(value)
		case "Fade":
			flight.Fade = helpers.ParseRating(value)
		}
	})

	imageSrc, _ := s.Find(c.Selectors.Image).First().Attr("src")

	return &ProductRecord{
		Title:      title,
		Price:      amount,
		Currency:   currency,
		Flight:     flight,
		LinkToDisc: pageURL,
		ImageURL:   helpers.ResolveURL(imageSrc, c.BaseURL),
	}, nil
}
