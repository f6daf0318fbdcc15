// Package parse implements the text-format contracts of the marketplace:
// localized magnitude notation, pt-BR date text, price strings, and the
// listing-id forms embedded in permalinks.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.BrazilianPortuguese)

var months = map[string]time.Month{
	"jan": time.January, "fev": time.February, "mar": time.March,
	"abr": time.April, "mai": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "set": time.September,
	"out": time.October, "nov": time.November, "dez": time.December,
}

var (
	idPathRe   = regexp.MustCompile(`/p/(MLB\d+)`)
	idAnyRe    = regexp.MustCompile(`MLB-?\d+`)
	decimalRe  = regexp.MustCompile(`\d+(\.\d+)?`)
	digitsRe   = regexp.MustCompile(`\d+`)
	nonPriceRe = regexp.MustCompile(`[^\d.]`)
	nonNumRe   = regexp.MustCompile(`[^\d.,]`)
)

// DatePTBR parses "08 abr. 2023"-style text into a calendar date.
// Unrecognized month abbreviations default to January; fully unparsable
// input yields nil, never an error.
func DatePTBR(text string) *time.Time {
	if text == "" {
		return nil
	}
	t := strings.TrimSpace(lower.String(text))
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, " de ", " ")
	parts := strings.Fields(t)
	if len(parts) < 3 {
		return nil
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	monthStr := parts[1]
	if len(monthStr) > 3 {
		monthStr = monthStr[:3]
	}
	year, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return nil
	}
	month, ok := months[monthStr]
	if !ok {
		month = time.January
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	if d.Day() != day || d.Month() != month {
		// date like "31 fev" normalized away; treat as unparsable
		return nil
	}
	return &d
}

// Magnitude parses the "+5mil vendas" notation: a "mil" suffix multiplies
// a decimal number by 1000, truncated to integer; otherwise the remaining
// digits parse as a plain integer. Unparsable input yields 0.
func Magnitude(text string) int {
	if text == "" {
		return 0
	}
	t := lower.String(text)
	t = strings.ReplaceAll(t, "+", "")
	t = strings.ReplaceAll(t, "vendas", "")
	t = strings.ReplaceAll(t, "vendidas", "")
	t = strings.TrimSpace(t)
	if strings.Contains(t, "mil") {
		num := strings.TrimSpace(strings.ReplaceAll(t, "mil", ""))
		num = strings.ReplaceAll(num, ",", ".")
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0
		}
		return int(f * 1000)
	}
	n, err := strconv.Atoi(strings.ReplaceAll(t, ".", ""))
	if err != nil {
		return 0
	}
	return n
}

// Price parses "R$ 1.234,56" into 1234.56. nil when unparsable.
func Price(text string) *float64 {
	if text == "" {
		return nil
	}
	t := strings.ReplaceAll(text, "R$", "")
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", ".")
	t = nonPriceRe.ReplaceAllString(strings.TrimSpace(t), "")
	if t == "" {
		return nil
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Rating parses a bare decimal rating ("4.5"). nil when absent or invalid.
func Rating(text string) *float64 {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return nil
	}
	return &f
}

// MLID extracts the stable marketplace identifier from a permalink:
// the /p/MLB123 catalog form first, then the dashed MLB-123 item form.
func MLID(link string) string {
	if link == "" {
		return ""
	}
	if m := idPathRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := idAnyRe.FindString(link); m != "" {
		return strings.ReplaceAll(m, "-", "")
	}
	return ""
}

// SoldCount parses the sold-quantity fragment of a listing card
// ("Novo | +1,5mil vendidos" → 1500). Only the segment after the last '|'
// carries the quantity.
func SoldCount(text string) int {
	if text == "" {
		return 0
	}
	t := lower.String(text)
	mult := 1.0
	if strings.Contains(t, "mil") {
		mult = 1000
	}
	if i := strings.LastIndex(t, "|"); i >= 0 {
		t = t[i+1:]
	}
	t = strings.ReplaceAll(nonNumRe.ReplaceAllString(strings.TrimSpace(t), ""), ",", ".")
	m := decimalRe.FindString(t)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return int(f * mult)
}

// Digits returns the first integer embedded in text, ignoring thousands
// separators ("1.234 avaliações" → 1234). 0 when none.
func Digits(text string) int {
	m := digitsRe.FindString(strings.ReplaceAll(text, ".", ""))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// CanonicalPermalink strips tracking fragments and query strings.
func CanonicalPermalink(link string) string {
	if i := strings.IndexByte(link, '#'); i >= 0 {
		link = link[:i]
	}
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[:i]
	}
	return link
}
