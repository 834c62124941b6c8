package utils

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// SendJSONError writes a JSON error payload with the given status code.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// RoundFloat rounds a float to the given number of decimal places. Used only
// at display/report boundaries, never inside valuation math.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// FormatPHP renders an amount as a display string in Philippine pesos with
// two decimal places and thousands separators, e.g. ₱1,234.50.
func FormatPHP(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := "₱" + grouped.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}
