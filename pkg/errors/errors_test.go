package errors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorFormat(t *testing.T) {
	underlying := errors.New("connection reset")
	err := NewNetwork("par3.lv", "failed to fetch page", underlying)

	assert.Equal(t, "[network] par3.lv: failed to fetch page - connection reset", err.Error())
	assert.Equal(t, underlying, errors.Unwrap(err))

	bare := NewValidation("par3.lv", "title not found")
	assert.Equal(t, "[validation] par3.lv: title not found", bare.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, NewNetwork("par3.lv", "timeout", nil).IsRetryable())
	assert.True(t, NewDatabase("", "connect failed", nil).IsRetryable())

	assert.False(t, NewParsing("par3.lv", "bad markup", nil).IsRetryable())
	assert.False(t, NewRateLimit("par3.lv", 10*time.Minute).IsRetryable())
	assert.False(t, NewConfiguration("secret missing", nil).IsRetryable())
}

func TestNewRateLimit(t *testing.T) {
	err := NewRateLimit("par3.lv", 10*time.Minute)
	assert.Equal(t, ErrorTypeRateLimit, err.Type)
	assert.Contains(t, err.Message, "10m")
	assert.False(t, err.Time.IsZero())
}
