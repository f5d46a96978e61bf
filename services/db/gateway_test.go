package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Artt4/disc-golf-equipment-price-comparator/internal/scraper"
)

func rating(v float64) *float64 {
	return &v
}

func TestUpsertArgs(t *testing.T) {
	record := scraper.ProductRecord{
		UniqueID: "abc123",
		Title:    "Buzzz",
		Price:    "45.00",
		Currency: "€",
		Flight: scraper.FlightNumbers{
			Speed: rating(5),
			Glide: rating(4),
			Turn:  rating(-1),
			Fade:  rating(1),
		},
		LinkToDisc: "https://par3.lv/products/buzzz",
		ImageURL:   "https://cdn.par3.lv/buzzz.jpg",
		Store:      "par3.lv",
	}

	args := upsertArgs(record)
	assert.Len(t, args, 11)
	assert.Equal(t, "abc123", args[0])
	assert.Equal(t, "Buzzz", args[1])
	assert.Equal(t, "45.00", args[2])
	assert.Equal(t, "€", args[3])
	assert.Equal(t, rating(5), args[4])
	assert.Equal(t, rating(-1), args[6])
	assert.Equal(t, "par3.lv", args[10])
}

func TestUpsertArgsNullables(t *testing.T) {
	record := scraper.ProductRecord{
		UniqueID: "abc123",
		Title:    "Buzzz",
		Store:    "par3.lv",
		Flight:   scraper.FlightNumbers{Speed: rating(5)},
	}

	args := upsertArgs(record)

	// Empty price and absent ratings become SQL NULLs
	assert.Nil(t, args[2])
	assert.Equal(t, rating(5), args[4])
	assert.Nil(t, args[5])
	assert.Nil(t, args[6])
	assert.Nil(t, args[7])
}

func TestUpsertSQLRefreshesOnlyMutableColumns(t *testing.T) {
	assert.Contains(t, upsertSQL, "ON CONFLICT (unique_id) DO UPDATE SET")

	updateClause := upsertSQL[strings.Index(upsertSQL, "DO UPDATE SET"):]
	for _, column := range []string{"price", "currency", "speed", "glide", "turn", "fade", "link_to_disc", "image_url"} {
		assert.Contains(t, updateClause, column+" ")
	}

	// Identity columns never change after the first insert
	assert.NotContains(t, updateClause, "title")
	assert.NotContains(t, updateClause, "store")
	assert.NotContains(t, updateClause, "unique_id =")
}
