// Package catalog adapts the supplier's inconsistent raw records into the
// canonical storefront product model and assembles cached product lists.
package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"storefront-service/internal/clients/cj"
	"storefront-service/internal/models"
)

const (
	placeholderImage = "https://images.unsplash.com/photo-1545239351-1141bd82e8a6?ixlib=rb-4.0.3&auto=format&fit=crop&w=1200&q=80"

	// DefaultExchangeRate converts supplier USD prices to display naira.
	DefaultExchangeRate = 1600

	defaultUnitPriceUSD   = 12
	minDisplayPrice       = 500
	defaultStock          = 50
	defaultShippingDays   = 7
	defaultRating         = 4.6
	defaultCategory       = "general"
	defaultTitle          = "Untitled product"
	defaultDescription    = "CJdropshipping product"
	defaultSellerName     = "CJ Supplier"
	defaultSellerLocation = "CJ Warehouse"
)

// identityFields is the shared precedence order for record identity. Both
// deduplication and the final product identifier resolve through this list so
// the two can never disagree on which field wins.
var identityFields = []string{"productId", "id", "sku", "variantId", "productSku"}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
var digitsPattern = regexp.MustCompile(`\d+`)

// RawIdentity resolves a record's identity: the first non-empty trimmed
// string among the identifier-like fields, or "" when none is usable.
func RawIdentity(rec cj.RawRecord) string {
	if rec == nil {
		return ""
	}
	for _, field := range identityFields {
		if v, ok := rec[field]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// Dedupe removes records whose identity has already been seen, keeping the
// first occurrence. Records with no resolvable identity are dropped entirely
// rather than risking a collision.
func Dedupe(list []cj.RawRecord) []cj.RawRecord {
	seen := make(map[string]bool, len(list))
	result := make([]cj.RawRecord, 0, len(list))
	for _, rec := range list {
		id := RawIdentity(rec)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, rec)
	}
	return result
}

// Normalizer maps raw supplier records into canonical products.
type Normalizer struct {
	// ExchangeRate is the fixed supplier-currency to display-currency rate.
	// Non-positive values fall back to DefaultExchangeRate.
	ExchangeRate float64
}

// Normalize converts a raw record into a Product. Returns nil only when the
// record itself is nil; every field has a default.
func (n Normalizer) Normalize(rec cj.RawRecord) *models.Product {
	if rec == nil {
		return nil
	}

	title := stringField(rec, defaultTitle, "productName", "name", "nameEn", "title", "productTitle")
	id := RawIdentity(rec)
	if id == "" {
		id = title
	}

	return &models.Product{
		ID:          id,
		Title:       title,
		Description: stringField(rec, defaultDescription, "productDescription", "description", "shortDescription"),
		Price:       n.resolvePrice(rec),
		Category:    stringField(rec, defaultCategory, "categoryName", "categoryId", "category"),
		Image:       stringField(rec, placeholderImage, "bigImage", "productImage", "mainImage", "image"),
		Rating:      resolveRating(rec),
		Seller: models.ProductSeller{
			Name:     stringField(rec, defaultSellerName, "storeName", "supplierName", "vendorName"),
			Location: stringField(rec, defaultSellerLocation, "warehouseName", "shipFrom", "location"),
		},
		Stock:              resolveStock(rec),
		ShippingTimeInDays: resolveShippingDays(rec),
	}
}

// resolvePrice parses the first price candidate that yields an extractable
// numeric value, substitutes the default unit price when the result is
// missing or non-positive, converts at the exchange rate, and floor-clamps
// the display price. The two defaulting stages are deliberate.
func (n Normalizer) resolvePrice(rec cj.RawRecord) int64 {
	usd := float64(0)
	found := false
	for _, field := range []string{"sellPrice", "nowPrice", "price", "productPrice", "retailPrice", "discountPrice"} {
		if v, ok := rec[field]; ok {
			if parsed, ok := parsePrice(v); ok {
				usd = parsed
				found = true
				break
			}
		}
	}
	if !found || usd <= 0 {
		usd = defaultUnitPriceUSD
	}

	rate := n.ExchangeRate
	if !(rate > 0) || math.IsInf(rate, 0) {
		rate = DefaultExchangeRate
	}

	price := int64(math.Round(usd * rate))
	if price < minDisplayPrice {
		price = minDisplayPrice
	}
	return price
}

func resolveStock(rec cj.RawRecord) int {
	for _, field := range []string{"inventory", "warehouseInventoryNum", "stock"} {
		if v, ok := rec[field]; ok {
			if num, ok := parseNumber(v); ok {
				return int(num)
			}
		}
	}
	return defaultStock
}

// resolveShippingDays parses the first present lead-time candidate. String
// values like "7-12 days" yield their first run of digits.
func resolveShippingDays(rec cj.RawRecord) int {
	for _, field := range []string{"deliveryCycle", "deliveryTime", "shippingTime"} {
		v, ok := rec[field]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString {
			if match := digitsPattern.FindString(s); match != "" {
				if days, err := strconv.Atoi(match); err == nil {
					return days
				}
			}
			return defaultShippingDays
		}
		if num, ok := parseNumber(v); ok {
			return int(num)
		}
		return defaultShippingDays
	}
	return defaultShippingDays
}

func resolveRating(rec cj.RawRecord) float64 {
	for _, field := range []string{"rating", "score"} {
		if v, ok := rec[field]; ok {
			if num, ok := parseNumber(v); ok {
				return num
			}
		}
	}
	return defaultRating
}

// stringField returns the first candidate field that stringifies to a
// non-empty value, else the default.
func stringField(rec cj.RawRecord, fallback string, fields ...string) string {
	for _, field := range fields {
		if v, ok := rec[field]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
	}
	return fallback
}

// parsePrice extracts a finite numeric value from a price field, supporting
// values embedded in strings ("USD 12.50").
func parsePrice(v any) (float64, bool) {
	switch value := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	default:
		match := numberPattern.FindString(stringify(v))
		if match == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
}

// parseNumber accepts plain numbers and fully-numeric strings.
func parseNumber(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return value, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}
