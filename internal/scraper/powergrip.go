package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

// browserSession is the slice of ChromeSession the powergrip scraper needs.
// Tests substitute a scripted fake.
type browserSession interface {
	Navigate(url, waitFor string, wait time.Duration) error
	HTML() (string, error)
	IsVisible(selector string) (bool, error)
	Click(selector string) error
	WaitCountAbove(selector string, n int, timeout time.Duration) (int, bool)
	Close()
}

// PowergripScraper expands the powergrip.fi infinite-scroll listing by
// dispatching the "show more" control until it disappears or the product
// count stops growing. Identities already emitted in this run are tracked
// in-memory so expansions never re-submit the same record.
type PowergripScraper struct {
	BaseScraper
	URL           string
	SelectorWait  time.Duration
	ScrollWait    time.Duration
	RenderTimeout time.Duration

	newSession func(ctx context.Context) browserSession
}

// NewPowergripScraper creates the powergrip.fi scraper
func NewPowergripScraper(cfg config.Config, cacheSvc cache.CacheService) *PowergripScraper {
	return &PowergripScraper{
		BaseScraper: BaseScraper{
			StoreName: "powergrip.fi",
			BaseURL:   "https://powergrip.fi",
			CacheKey:  "powergrip_rate_limited",
			CacheSvc:  cacheSvc,
			BlockTime: cfg.RateLimitBlock,
			Selectors: Selectors{
				ProductList:   "div.ais-infinite-hits--item.product-thumbnail-wrapper",
				Title:         ".product-title span",
				Price:         ".price-tag",
				FlightRatings: ".product-flight-ratings li",
				ShowMore:      ".ais-infinite-hits--showmoreButton",
				WaitFor:       "div.ais-infinite-hits--item.product-thumbnail-wrapper",
			},
		},
		URL:           cfg.PowergripURL,
		SelectorWait:  cfg.SelectorWait,
		ScrollWait:    cfg.ScrollWait,
		RenderTimeout: cfg.RenderTimeout,
	}
}

// Run expands the listing until the show-more control is exhausted
func (c *PowergripScraper) Run(ctx context.Context, sink Sink) error {
	newSession := c.newSession
	if newSession == nil {
		newSession = func(ctx context.Context) browserSession {
			return NewChromeSession(ctx, c.StoreName, c.RenderTimeout)
		}
	}
	session := newSession(ctx)
	defer session.Close()

	if err := session.Navigate(c.URL, c.Selectors.WaitFor, c.SelectorWait); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	for round := 1; ; round++ {
		if ctx.Err() != nil {
			return nil
		}

		markup, err := session.HTML()
		if err != nil {
			c.logger().Warn().Err(err).Int("round", round).Msg("Reading rendered markup failed, stopping crawl")
			return nil
		}

		doc, err := c.createDocument(strings.NewReader(markup))
		if err != nil {
			return err
		}

		nodes := doc.Find(c.Selectors.ProductList)
		count := nodes.Length()

		records := c.collectRecords(nodes, round, c.parseProduct)
		fresh := records[:0:0]
		for _, record := range records {
			if _, ok := seen[record.UniqueID]; ok {
				continue
			}
			seen[record.UniqueID] = struct{}{}
			fresh = append(fresh, record)
		}

		if len(fresh) > 0 {
			affected, err := sink.UpsertBatch(ctx, fresh)
			if err != nil {
				return apperrors.NewDatabase(c.StoreName, "batch upsert failed", err)
			}
			c.logger().Info().Int("round", round).Int("records", len(fresh)).Int64("affected", affected).Msg("Expansion committed")
		}

		visible, err := session.IsVisible(c.Selectors.ShowMore)
		if err != nil || !visible {
			c.logger().Info().Int("rounds", round).Int("products", len(seen)).Msg("Show-more control exhausted, crawl finished")
			return nil
		}
		if err := session.Click(c.Selectors.ShowMore); err != nil {
			c.logger().Warn().Err(err).Msg("Show-more click failed, stopping crawl")
			return nil
		}
		if _, grew := session.WaitCountAbove(c.Selectors.ProductList, count, c.ScrollWait); !grew {
			c.logger().Info().Int("rounds", round).Int("products", len(seen)).Msg("Product count stopped growing, crawl finished")
			return nil
		}
	}
}

// parseProduct parses a single infinite-hits card
func (c *PowergripScraper) parseProduct(s *goquery.Selection) (*ProductRecord, error) {
	title := trimmedText(s.Find(c.Selectors.Title).First())
	if title == "" {
		return nil, apperrors.NewParsing(c.StoreName, "title not found", nil)
	}

	amount, _ := helpers.ParsePrice(trimmedText(s.Find(c.Selectors.Price).First()))
	if amount == "" {
		return nil, apperrors.NewParsing(c.StoreName, "empty price for "+title, nil)
	}

	// Ratings are labeled list items: SPEED/GLIDE/TURN/FADE.
	var flight FlightNumbers
	s.Find(c.Selectors.FlightRatings).Each(func(_ int, li *goquery.Selection) {
		label := strings.ToUpper(trimmedText(li.Find(".label")))
		value := trimmedText(li.Find(".value"))
		switch label {
		case "SPEED":
			flight.Speed = helpers.ParseRating(value)
		case "GLIDE":
			flight.Glide = helpers.ParseRating(value)
		case "TURN":
			flight.Turn = helpers.ParseRating(value)
		case "FADE":
			flight.Fade = helpers.ParseRating(value)
		}
	})

	link, _ := s.Find("a").First().Attr("href")
	imageSrc, _ := s.Find("img").First().Attr("src")

	return &ProductRecord{
		Title:      title,
		Price:      amount,
		Currency:   "€", // the store never renders a currency symbol on cards
		Flight:     flight,
		LinkToDisc: helpers.ResolveURL(link, c.BaseURL),
		ImageURL:   helpers.ResolveURL(imageSrc, c.BaseURL),
	}, nil
}
