package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

// ParsePrice splits a scraped price string into a numeric amount and the
// currency remainder. The amount keeps only digits and separators, with a
// comma decimal separator rewritten to a dot ("45,00 €" -> "45.00", "€").
// An empty amount is not an error; entries without a price are skipped by
// the caller.
func ParsePrice(raw string) (amount string, currency string) {
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.ReplaceAll(raw, " ", "")

	var numeric, symbol strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			numeric.WriteRune(r)
		} else {
			symbol.WriteRune(r)
		}
	}

	amount = strings.ReplaceAll(numeric.String(), ",", ".")
	currency = strings.TrimSpace(symbol.String())
	return amount, currency
}

// ParseRating converts a scraped flight-number string to a float. Missing or
// unresolvable values map to nil, never to a default.
func ParseRating(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

// ComputeIdentity derives the stable product identity: lowercase the title,
// strip spaces, append "_" and the store name, hash with SHA-256 and
// hex-encode. Identity depends only on (title, store) so that re-scrapes at
// a new price update the existing row.
func ComputeIdentity(title, store string) string {
	combined := strings.ToLower(title + "_" + store)
	combined = strings.ReplaceAll(combined, " ", "")
	sum := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(sum[:])
}

// ResolveURL turns a possibly relative href/src into an absolute URL against
// the store's base origin.
func ResolveURL(href, base string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimSuffix(base, "/") + href
	default:
		return strings.TrimSuffix(base, "/") + "/" + href
	}
}

// GetSplitPart returns the index-th part of target split by separate.
func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}
