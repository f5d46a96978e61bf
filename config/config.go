package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Memcache configuration (rate-limit cooldown cache)
	MemcacheAddr string

	// Fetch configuration
	FetchTimeout   time.Duration
	RenderTimeout  time.Duration
	SelectorWait   time.Duration
	ScrollWait     time.Duration
	RateLimitBlock time.Duration

	// Store URLs
	Latitude64SitemapURL string
	Latitude64PageDelay  time.Duration
	Par3PageURL          string
	InnovaCategoryURL    string
	InnovaCategories     []string
	KiekkokingiPageURL   string
	PowergripURL         string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "15"))
	renderTimeout, _ := strconv.Atoi(getEnv("RENDER_TIMEOUT_SECONDS", "45"))
	selectorWait, _ := strconv.Atoi(getEnv("SELECTOR_WAIT_SECONDS", "8"))
	scrollWait, _ := strconv.Atoi(getEnv("SCROLL_WAIT_SECONDS", "4"))
	blockTime, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "600"))
	pageDelayMs, _ := strconv.Atoi(getEnv("LATITUDE64_PAGE_DELAY_MS", "1000"))

	return Config{
		MemcacheAddr:   getEnv("MEMCACHE_ADDR", "localhost:11211"),
		FetchTimeout:   time.Duration(fetchTimeout) * time.Second,
		RenderTimeout:  time.Duration(renderTimeout) * time.Second,
		SelectorWait:   time.Duration(selectorWait) * time.Second,
		ScrollWait:     time.Duration(scrollWait) * time.Second,
		RateLimitBlock: time.Duration(blockTime) * time.Second,

		Latitude64SitemapURL: getEnv("LATITUDE64_SITEMAP_URL", "https://latitude64.com/sitemap_products_1.xml?from=2008270274629&to=9570245083483"),
		Latitude64PageDelay:  time.Duration(pageDelayMs) * time.Millisecond,
		Par3PageURL:          getEnv("PAR3_PAGE_URL", "https://www.par3.lv/collections/disku-golfa-diski?page=%d"),
		InnovaCategoryURL:    getEnv("INNOVA_CATEGORY_URL", "https://www.innovaeurope.com/en/%s/results,1-400"),
		InnovaCategories:     splitList(getEnv("INNOVA_CATEGORIES", "putters,midrange,distance-drivers")),
		KiekkokingiPageURL:   getEnv("KIEKKOKINGI_PAGE_URL", "https://kiekkokingi.fi/collections/uudet-frisbeegolfkiekot?page=%d&grid_list=grid-view"),
		PowergripURL:         getEnv("POWERGRIP_URL", "https://powergrip.fi/tuote/"),

		Environment: getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if !strings.Contains(c.Par3PageURL, "%d") {
		return fmt.Errorf("PAR3_PAGE_URL must contain a %%d page placeholder")
	}
	if !strings.Contains(c.KiekkokingiPageURL, "%d") {
		return fmt.Errorf("KIEKKOKINGI_PAGE_URL must contain a %%d page placeholder")
	}
	if !strings.Contains(c.InnovaCategoryURL, "%s") {
		return fmt.Errorf("INNOVA_CATEGORY_URL must contain a %%s category placeholder")
	}
	if len(c.InnovaCategories) == 0 {
		return fmt.Errorf("INNOVA_CATEGORIES must not be empty")
	}
	if c.Latitude64SitemapURL == "" || c.PowergripURL == "" {
		return fmt.Errorf("store URLs must not be empty")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
