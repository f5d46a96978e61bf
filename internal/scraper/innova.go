package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

// InnovaScraper visits a fixed list of innovaeurope.com category pages
// (each category lists its full inventory on one page) and writes the whole
// crawl as a single batch.
type InnovaScraper struct {
	BaseScraper
	CategoryURL  string
	Categories   []string
	FetchTimeout time.Duration
}

// NewInnovaScraper creates the innovaeurope.com scraper
func NewInnovaScraper(cfg config.Config, cacheSvc cache.CacheService) *InnovaScraper {
	return &InnovaScraper{
		BaseScraper: BaseScraper{
			StoreName: "innovaeurope.com",
			BaseURL:   "https://www.innovaeurope.com",
			CacheKey:  "innova_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: cfg.RateLimitBlock,
			Selectors: Selectors{
				ProductList: "div.product.product-grid-view",
				Title:       "h3.product-name",
				Price:       "span.PricesalesPrice",
			},
		},
		CategoryURL:  cfg.InnovaCategoryURL,
		Categories:   cfg.InnovaCategories,
		FetchTimeout: cfg.FetchTimeout,
	}
}

// Run visits each category page once and batches all parsed records
func (c *InnovaScraper) Run(ctx context.Context, sink Sink) error {
	if c.CacheSvc != nil && c.CacheKey != "" {
		if _, err := c.CacheSvc.Get(c.CacheKey); err == nil {
			return apperrors.NewRateLimit(c.StoreName, c.BlockTime)
		}
	}

	collector := colly.NewCollector(
		colly.UserAgent(chromeUserAgent),
	)
	collector.SetRequestTimeout(c.FetchTimeout)

	var records []ProductRecord
	position := 0
	collector.OnHTML(c.Selectors.ProductList, func(e *colly.HTMLElement) {
		position++
		record, err := c.parseProduct(e.DOM)
		if err != nil {
			c.logger().Warn().
				Err(err).
				Str("url", e.Request.URL.String()).
				Int("position", position).
				Msg("Skipping product node")
			return
		}
		if finalized, ok := c.finalize(record); ok {
			records = append(records, *finalized)
		}
	})

	for _, category := range c.Categories {
		if ctx.Err() != nil {
			break
		}
		pageURL := fmt.Sprintf(c.CategoryURL, category)
		if err := collector.Visit(pageURL); err != nil {
			c.logger().Warn().Err(err).Str("category", category).Msg("Category fetch failed, stopping crawl")
			break
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

// parseProduct parses a single grid node from a category page
func (c *InnovaScraper) parseProduct(s *goquery.Selection) (*ProductRecord, error) {
	title := trimmedText(s.Find(c.Selectors.Title).First())
	if title == "" {
		return nil, apperrors.NewParsing(c.StoreName, "title not found", nil)
	}

	amount, currency := helpers.ParsePrice(trimmedText(s.Find(c.Selectors.Price).First()))
	if amount == "" {
		return nil, apperrors.NewParsing(c.StoreName, "empty price for "+title, nil)
	}

	// One anchor per flight axis, the value lives in a nested span.
	flight := FlightNumbers{
		Speed: helpers.ParseRating(trimmedText(s.Find("a.flight-speed span").First())),
		Glide: helpers.ParseRating(trimmedText(s.Find("a.flight-glide span").First())),
		Turn:  helpers.ParseRating(trimmedText(s.Find("a.flight-turn span").First())),
		Fade:  helpers.ParseRating(trimmedText(s.Find("a.flight-fade span").First())),
	}

	link, _ := s.Find("a").First().Attr("href")
	imageSrc, _ := s.Find("img").First().Attr("data-src")

	return &ProductRecord{
		Title:      title,
		Price:      amount,
		Currency:   currency,
		Flight:     flight,
		LinkToDisc: helpers.ResolveURL(link, c.BaseURL),
		ImageURL:   helpers.ResolveURL(imageSrc, c.BaseURL),
	}, nil
}
