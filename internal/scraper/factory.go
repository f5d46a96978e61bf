package scraper

import (
	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

// CreateScrapers creates all store scrapers in their fixed run order:
// static-fetch stores first, headless-browser stores last.
func CreateScrapers(cfg config.Config, cacheSvc cache.CacheService) []Scraper {
	return []Scraper{
		NewInnovaScraper(cfg, cacheSvc),
		NewPar3Scraper(cfg, cacheSvc),
		NewLatitude64Scraper(cfg, cacheSvc),
		NewKiekkokingiScraper(cfg, cacheSvc),
		NewPowergripScraper(cfg, cacheSvc),
	}
}
