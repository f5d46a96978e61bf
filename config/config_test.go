package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "localhost:11211", cfg.MemcacheAddr)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 45*time.Second, cfg.RenderTimeout)
	assert.Equal(t, 8*time.Second, cfg.SelectorWait)
	assert.Equal(t, 600*time.Second, cfg.RateLimitBlock)
	assert.Equal(t, time.Second, cfg.Latitude64PageDelay)
	assert.Contains(t, cfg.Par3PageURL, "%d")
	assert.Contains(t, cfg.KiekkokingiPageURL, "%d")
	assert.Contains(t, cfg.InnovaCategoryURL, "%s")
	assert.Equal(t, []string{"putters", "midrange", "distance-drivers"}, cfg.InnovaCategories)
	assert.Equal(t, "development", cfg.Environment)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MEMCACHE_ADDR", "memcached:11211")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "30")
	t.Setenv("INNOVA_CATEGORIES", "putters, fairway-drivers ,")
	t.Setenv("SCRAPER_ENVIRONMENT", "production")

	cfg := LoadConfig()

	assert.Equal(t, "memcached:11211", cfg.MemcacheAddr)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"putters", "fairway-drivers"}, cfg.InnovaCategories)
	assert.Equal(t, "production", cfg.Environment)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()

	cfg.Par3PageURL = "https://www.par3.lv/collections/disku-golfa-diski"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PAR3_PAGE_URL")

	cfg = LoadConfig()
	cfg.InnovaCategoryURL = "https://www.innovaeurope.com/en/putters"
	err = cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "INNOVA_CATEGORY_URL")

	cfg = LoadConfig()
	cfg.InnovaCategories = nil
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.PowergripURL = ""
	assert.Error(t, cfg.Validate())
}
