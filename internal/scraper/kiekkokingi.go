package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

// RenderFunc returns the rendered markup of a URL. Tests override it; the
// default drives a headless Chrome session.
type RenderFunc func(ctx context.Context, url string) (string, error)

// KiekkokingiScraper probes numbered collection pages on kiekkokingi.fi.
// The listing grid is populated client-side, so pages are rendered in a
// headless browser; the first page without product nodes ends the probe,
// which also covers render waits that time out.
type KiekkokingiScraper struct {
	BaseScraper
	PageURL       string
	SelectorWait  time.Duration
	RenderTimeout time.Duration

	renderFunc RenderFunc
}

// NewKiekkokingiScraper creates the kiekkokingi.fi scraper
func NewKiekkokingiScraper(cfg config.Config, cacheSvc cache.CacheService) *KiekkokingiScraper {
	return &KiekkokingiScraper{
		BaseScraper: BaseScraper{
			StoreName: "kiekkokingi.fi",
			BaseURL:   "https://kiekkokingi.fi",
			CacheKey:  "kiekkokingi_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: cfg.RateLimitBlock,
			Selectors: Selectors{
				ProductList:   "article.productitem",
				Title:         "h2.productitem--title",
				Price:         "span.money",
				FlightRatings: "div.tooltip",
				Link:          "a.productitem--image-link",
				Image:         "img.productitem--image-primary",
				WaitFor:       "article.productitem",
			},
		},
		PageURL:       cfg.KiekkokingiPageURL,
		SelectorWait:  cfg.SelectorWait,
		RenderTimeout: cfg.RenderTimeout,
	}
}

// Run renders numbered pages until one comes back without products
func (c *KiekkokingiScraper) Run(ctx context.Context, sink Sink) error {
	render := c.renderFunc
	if render == nil {
		session := NewChromeSession(ctx, c.StoreName, c.RenderTimeout)
		defer session.Close()
		render = func(ctx context.Context, url string) (string, error) {
			if err := session.Navigate(url, c.Selectors.WaitFor, c.SelectorWait); err != nil {
				return "", err
			}
			return session.HTML()
		}
	}

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			return nil
		}

		pageURL := fmt.Sprintf(c.PageURL, page)
		markup, err := render(ctx, pageURL)
		if err != nil {
			c.logger().Warn().Err(err).Int("page", page).Msg("Page render failed, stopping crawl")
			return nil
		}

		doc, err := c.createDocument(strings.NewReader(markup))
		if err != nil {
			return err
		}

		nodes := doc.Find(c.Selectors.ProductList)
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
	}
}

// parseProduct parses a single productitem article
func (c *KiekkokingiScraper) parseProduct(s *goquery.Selection) (*ProductRecord, error) {
	title := trimmedText(s.Find(c.Selectors.Title).First())
	if title == "" {
		return nil, apperrors.NewParsing(c.StoreName, "title not found", nil)
	}

	// Discounted items render two money spans; the second carries the
	// current price.
	moneySpans := s.Find(c.Selectors.Price)
	if moneySpans.Length() == 0 {
		return nil, apperrors.NewParsing(c.StoreName, "price not found for "+title, nil)
	}
	priceSel := moneySpans.Eq(0)
	if moneySpans.Length() > 1 {
		priceSel = moneySpans.Eq(1)
	}
	amount, currency := helpers.ParsePrice(trimmedText(priceSel))
	if amount == "" {
		return nil, apperrors.NewParsing(c.StoreName, "empty price for "+title, nil)
	}

	// Four tooltip divs in Speed/Glide/Turn/Fade order; the rating is the
	// tooltip's own text, not its hover span.
	var flight FlightNumbers
	tooltips := s.Find(c.Selectors.FlightRatings)
	if tooltips.Length() >= 4 {
		flight.Speed = helpers.ParseRating(ownText(tooltips.Eq(0)))
		flight.Glide = helpers.ParseRating(ownText(tooltips.Eq(1)))
		flight.Turn = helpers.ParseRating(ownText(tooltips.Eq(2)))
		flight.Fade = helpers.ParseRating(ownText(tooltips.Eq(3)))
	}

	link, _ := s.Find(c.Selectors.Link).First().Attr("href")
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
