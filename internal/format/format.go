package format

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencySymbol prefixes every price in the storefront.
const CurrencySymbol = "฿"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Baht renders amount with two decimals and grouping, e.g. ฿1,234.50.
func Baht(amount float64, lang string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + CurrencySymbol + printer(lang).Sprintf("%.2f", amount)
}

// Number renders an integer with grouping.
func Number(n int, lang string) string {
	return printer(lang).Sprintf("%d", n)
}

// ParseDate accepts the timestamp layouts the backend emits.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Date formats a backend timestamp for display. Unparseable values are shown as sent.
func Date(value, lang string) string {
	ts, ok := ParseDate(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	switch strings.ToLower(lang) {
	case "th":
		return ts.Format("02/01/2006")
	default:
		return ts.Format("Jan 2, 2006")
	}
}

// MaskCard renders the last four digits of a card.
func MaskCard(last4 string) string {
	last4 = strings.TrimSpace(last4)
	if last4 == "" {
		return ""
	}
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return "•••• " + last4
}

func printer(lang string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
