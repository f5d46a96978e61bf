package scraper

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"

	"github.com/Artt4/disc-golf-equipment-price-comparator/helpers"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

func docFromString(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	assert.NoError(t, err)
	return doc
}

func rating(v float64) *float64 {
	return &v
}

func TestCollectRecordsSkipsFailedNodes(t *testing.T) {
	b := &BaseScraper{StoreName: "par3.lv"}
	doc := docFromString(t, `<ul>
		<li data-title="Buzzz"></li>
		<li></li>
		<li data-title="Zone"></li>
	</ul>`)

	records := b.collectRecords(doc.Find("li"), 1, func(s *goquery.Selection) (*ProductRecord, error) {
		title, ok := s.Attr("data-title")
		if !ok {
			return nil, apperrors.NewParsing("par3.lv", "title not found", nil)
		}
		return &ProductRecord{Title: title, Flight: FlightNumbers{Speed: rating(5)}}, nil
	})

	// The middle node fails to parse and is skipped; its neighbors survive
	assert.Len(t, records, 2)
	assert.Equal(t, "Buzzz", records[0].Title)
	assert.Equal(t, "Zone", records[1].Title)
}

func TestFinalize(t *testing.T) {
	b := &BaseScraper{StoreName: "par3.lv"}

	record, ok := b.finalize(&ProductRecord{
		Title:  "Buzzz",
		Flight: FlightNumbers{Speed: rating(5)},
	})
	assert.True(t, ok)
	assert.Equal(t, "par3.lv", record.Store)
	assert.Equal(t, helpers.ComputeIdentity("Buzzz", "par3.lv"), record.UniqueID)

	// All four flight numbers absent marks a non-disc product
	_, ok = b.finalize(&ProductRecord{Title: "Disc Golf Towel"})
	assert.False(t, ok)

	_, ok = b.finalize(&ProductRecord{Title: "   ", Flight: FlightNumbers{Speed: rating(5)}})
	assert.False(t, ok)
}

func TestFetchPageCooldown(t *testing.T) {
	cacheSvc := cache.NewMemoryService()
	b := &BaseScraper{
		StoreName: "par3.lv",
		CacheKey:  "par3_rate_limited",
		CacheSvc:  cacheSvc,
		BlockTime: 10 * time.Minute,
		fetchFunc: func(_ context.Context, _ string) (io.Reader, error) {
			t.Fatal("fetch must not run while the cooldown entry exists")
			return nil, nil
		},
	}

	assert.NoError(t, cacheSvc.Set("par3_rate_limited", []byte("600"), time.Minute))

	_, err := b.fetchPage(context.Background(), "https://par3.lv")
	assert.Error(t, err)

	var scrapeErr *apperrors.ScrapeError
	assert.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, apperrors.ErrorTypeRateLimit, scrapeErr.Type)
}

func TestFetchPageSetsCooldownOnRateLimit(t *testing.T) {
	cacheSvc := cache.NewMemoryService()
	b := &BaseScraper{
		StoreName: "par3.lv",
		CacheKey:  "par3_rate_limited",
		CacheSvc:  cacheSvc,
		BlockTime: 10 * time.Minute,
		fetchFunc: func(_ context.Context, _ string) (io.Reader, error) {
			return nil, fmt.Errorf("throttled: %w", helpers.ErrRateLimited)
		},
	}

	_, err := b.fetchPage(context.Background(), "https://par3.lv")
	assert.Error(t, err)

	var scrapeErr *apperrors.ScrapeError
	assert.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, apperrors.ErrorTypeRateLimit, scrapeErr.Type)

	// The cooldown entry now blocks further fetches
	_, cacheErr := cacheSvc.Get("par3_rate_limited")
	assert.NoError(t, cacheErr)
}

func TestOwnText(t *testing.T) {
	doc := docFromString(t, `<div class="tooltip">
		12
		<span class="tooltip-text">Speed</span>
	</div>`)

	assert.Equal(t, "12", ownText(doc.Find("div.tooltip")))

	priceDoc := docFromString(t, `<sale-price><span class="sr-only">Sale price</span> 45,00 &euro; </sale-price>`)
	assert.Equal(t, "45,00 €", lastOwnText(priceDoc.Find("sale-price")))
}
