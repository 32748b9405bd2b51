package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultAmount is returned when a budget string is empty, unparsable or
// resolves to zero. A failed parse must never block a service request.
const DefaultAmount int64 = 1000

var amountPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// NormalizeAmount turns a free-text budget ("₦5,000 - ₦10,000", "10000", "")
// into a definite integer amount. For a range it resolves to the first number.
// Pure and total: it never fails and never blocks.
func NormalizeAmount(raw string) int64 {
	cleaned := strings.ReplaceAll(raw, ",", "")

	match := amountPattern.FindString(cleaned)
	if match == "" {
		return DefaultAmount
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(value) || value <= 0 {
		return DefaultAmount
	}

	return int64(math.Round(value))
}
