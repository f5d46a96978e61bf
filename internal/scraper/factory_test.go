package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Artt4/disc-golf-equipment-price-comparator/config"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/cache"
)

func TestCreateScrapers(t *testing.T) {
	scrapers := CreateScrapers(config.LoadConfig(), cache.NewMemoryService())

	var stores []string
	for _, s := range scrapers {
		stores = append(stores, s.Store())
	}

	// Static-fetch stores run before the headless-browser stores
	assert.Equal(t, []string{
		"innovaeurope.com",
		"par3.lv",
		"latitude64.com",
		"kiekkokingi.fi",
		"powergrip.fi",
	}, stores)
}
