// Package textfmt formats amounts, numbers and dates the way French legal
// documents spell them.
package textfmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	ntw "moul.io/number-to-words"
)

const amountFormat = "# ###,"

var months = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// Amount renders n with space thousands separators ("1 000 000").
func Amount(n int64) string {
	if n < 0 {
		return "-" + humanize.FormatInteger(amountFormat, int(-n))
	}
	return humanize.FormatInteger(amountFormat, int(n))
}

// Words spells n out in French ("deux millions").
func Words(n int64) string {
	if n == 0 {
		return "zéro"
	}
	if n < 0 {
		return "moins " + ntw.IntegerToFrFr(int(-n))
	}
	return ntw.IntegerToFrFr(int(n))
}

// Money renders an amount in digits followed by its written-out form, e.g.
// "500 000 Ariary (cinq cent mille Ariary)".
func Money(n int64, currency string) string {
	return fmt.Sprintf("%s %s (%s %s)", Amount(n), currency, Words(n), currency)
}

// Date renders t as "2 janvier 2026". The zero time renders as an empty
// string.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	day := fmt.Sprint(t.Day())
	if t.Day() == 1 {
		day = "1er"
	}
	return fmt.Sprintf("%s %s %d", day, months[t.Month()-1], t.Year())
}

// ShortDate renders t as "02/01/2026".
func ShortDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// Years renders a duration in years ("1 an", "99 ans").
func Years(n int) string {
	if n == 1 {
		return "1 an"
	}
	return fmt.Sprintf("%d ans", n)
}

// Plural appends "s" to word when n != 1.
func Plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	for i, r := range s {
		return strings.ToUpper(string(r)) + s[i+len(string(r)):]
	}
	return s
}

// OrBlank returns placeholder when s is empty, so mandatory blanks in legal
// forms remain visible for hand completion.
func OrBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return "........................"
	}
	return s
}
