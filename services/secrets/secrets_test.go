package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("connection_host", "db.internal")

	provider := NewEnvProvider()

	value, err := provider.Get("connection_host")
	assert.NoError(t, err)
	assert.Equal(t, "db.internal", value)
}

func TestEnvProviderMissing(t *testing.T) {
	provider := NewEnvProvider()

	_, err := provider.Get("definitely_not_set_anywhere")
	assert.Error(t, err)

	var scrapeErr *apperrors.ScrapeError
	assert.ErrorAs(t, err, &scrapeErr)
	assert.Equal(t, apperrors.ErrorTypeConfiguration, scrapeErr.Type)
}

func TestStaticProvider(t *testing.T) {
	provider := NewStaticProvider(map[string]string{
		"connection_user":     "scraper",
		"connection_password": "secret",
	})

	value, err := provider.Get("connection_user")
	assert.NoError(t, err)
	assert.Equal(t, "scraper", value)

	_, err = provider.Get("connection_database")
	assert.Error(t, err)
}
