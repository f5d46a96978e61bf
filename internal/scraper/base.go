package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	"github.com/Artt4/disc-golf-equipment-price-comparator/logger"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

// FetchFunc fetches a URL and returns its markup. Tests override it.
type FetchFunc func(ctx context.Context, url string) (io.Reader, error)

// BaseScraper provides common functionality for all store scrapers
type BaseScraper struct {
	StoreName string
	BaseURL   string
	CacheKey  string
	CacheSvc  cache.CacheService
	BlockTime time.Duration
	Selectors Selectors

	fetchFunc FetchFunc
	log       *logger.Logger
}

// Store returns the store domain
func (b *BaseScraper) Store() string {
	return b.StoreName
}

func (b *BaseScraper) logger() *logger.Logger {
	if b.log == nil {
		b.log = logger.ForScraper(b.StoreName)
	}
	return b.log
}

// fetchPage fetches a URL, honoring the rate-limit cooldown cache. A store
// that answered 429 earlier stays blocked until the cache entry expires.
func (b *BaseScraper) fetchPage(ctx context.Context, url string) (io.Reader, error) {
	if b.CacheSvc != nil && b.CacheKey != "" {
		if _, err := b.CacheSvc.Get(b.CacheKey); err == nil {
			return nil, apperrors.NewRateLimit(b.StoreName, b.BlockTime)
		}
	}

	fetch := b.fetchFunc
	if fetch == nil {
		fetch = func(_ context.Context, url string) (io.Reader, error) {
			return helpers.FetchWithRandomHeaders(url)
		}
	}

	body, err := fetch(ctx, url)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) && b.CacheSvc != nil && b.CacheKey != "" {
			b.CacheSvc.Set(b.CacheKey, []byte(fmt.Sprintf("%d", int(b.BlockTime.Seconds()))), b.BlockTime)
			return nil, apperrors.NewRateLimit(b.StoreName, b.BlockTime)
		}
		return nil, apperrors.NewNetwork(b.StoreName, "failed to fetch "+url, err)
	}

	return body, nil
}

// createDocument creates a goquery document from a reader
func (b *BaseScraper) createDocument(reader io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, apperrors.NewParsing(b.StoreName, "failed to parse HTML", err)
	}
	return doc, nil
}

// collectRecords runs the processor over every product node. A node that
// fails to parse is logged with its position and skipped; the remaining
// nodes on the page are still processed.
func (b *BaseScraper) collectRecords(selections *goquery.Selection, page int, processor ProcessorFunc) []ProductRecord {
	var records []ProductRecord
	selections.Each(func(i int, s *goquery.Selection) {
		record, err := processor(s)
		if err != nil {
			b.logger().Warn().
				Err(err).
				Int("page", page).
				Int("position", i).
				Msg("Skipping product node")
			return
		}
		if record == nil {
			return
		}
		if finalized, ok := b.finalize(record); ok {
			records = append(records, *finalized)
		}
	})
	return records
}

// finalize stamps store and identity onto a parsed record and applies the
// non-disc filter: a record with all four flight numbers absent is dropped.
func (b *BaseScraper) finalize(record *ProductRecord) (*ProductRecord, bool) {
	if strings.TrimSpace(record.Title) == "" {
		return nil, false
	}
	if record.Flight.Empty() {
		b.logger().Debug().
			Str("title", record.Title).
			Msg("Skipping non-disc product")
		return nil, false
	}
	record.Store = b.StoreName
	record.UniqueID = helpers.ComputeIdentity(record.Title, b.StoreName)
	return record, true
}

// trimmedText returns the selection's text with surrounding whitespace removed
func trimmedText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// ownText returns the first non-empty text node directly under the
// selection, ignoring child elements such as tooltip spans.
func ownText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	for n := s.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				return text
			}
		}
	}
	return ""
}

// lastOwnText returns the last non-empty text node directly under the
// selection.
func lastOwnText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var last string
	for n := s.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				last = text
			}
		}
	}
	return last
}
