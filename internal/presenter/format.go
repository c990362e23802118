package presenter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale   = "en-US"
	DefaultCurrency = "USD"
)

const nbsp = "\u00a0"

type localeFormat struct {
	tag      language.Tag
	date     string // time layout
	symAfter bool   // "1.300,00 €" instead of "€1,300.00"
	symSep   string // between symbol and number

	// Filled from CLDR data at init.
	group    string
	decimal  string
	minGroup int // integer digits needed before grouping starts
}

// Locales we carry calendar and currency patterns for. The first entry is the
// fallback for number formatting; unmatched locales get ISO dates.
var locales = []localeFormat{
	{tag: language.AmericanEnglish, date: "01/02/2006"},
	{tag: language.BritishEnglish, date: "02/01/2006"},
	{tag: language.EuropeanPortuguese, date: "02/01/2006", symAfter: true, symSep: nbsp},
	{tag: language.BrazilianPortuguese, date: "02/01/2006", symSep: nbsp},
	{tag: language.German, date: "02.01.2006", symAfter: true, symSep: nbsp},
	{tag: language.French, date: "02/01/2006", symAfter: true, symSep: nbsp},
	{tag: language.Spanish, date: "2/1/2006", symAfter: true, symSep: nbsp},
	{tag: language.Italian, date: "2/1/2006", symAfter: true, symSep: nbsp},
}

func init() {
	for i := range locales {
		locales[i].group, locales[i].decimal, locales[i].minGroup = separators(locales[i].tag)
	}
}

// separators reads the grouping and decimal symbols x/text uses for tag.
func separators(tag language.Tag) (group, dec string, minGroup int) {
	p := message.NewPrinter(tag)
	s := p.Sprint(number.Decimal(1234567.5, number.Scale(1))) // "1,234,567.5"
	group, dec, minGroup = ",", ".", 4
	i, j := strings.Index(s, "1"), strings.Index(s, "234")
	k, l := strings.Index(s, "567"), strings.LastIndex(s, "5")
	if i < 0 || j <= i || k < 0 || l <= k+3 {
		return group, dec, minGroup
	}
	group, dec = s[i+1:j], s[k+3:l]
	if !strings.Contains(p.Sprint(number.Decimal(1234)), group) {
		minGroup = 5
	}
	return group, dec, minGroup
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

func resolve(locale string) (localeFormat, bool) {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return locales[0], false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return locales[0], false
	}
	return locales[idx], true
}

// FormatDate renders a calendar date in the locale's short pattern.
func FormatDate(locale string, t time.Time) string {
	lf, ok := resolve(locale)
	if !ok {
		return t.Format("2006-01-02")
	}
	return t.Format(lf.date)
}

// FormatDateTime renders the date followed by the 24h time.
func FormatDateTime(locale string, t time.Time) string {
	return FormatDate(locale, t) + ", " + t.Format("15:04")
}

// DaysBetween is the absolute number of days between two instants, rounded.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(math.Abs(b.Sub(a).Hours()) / 24))
}

// RelativeDate describes date as seen from now: "Today", "Yesterday",
// "N days ago" up to a week, otherwise the locale calendar date.
func RelativeDate(date, now time.Time, locale string) string {
	switch days := DaysBetween(date, now); {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return FormatDate(locale, date)
	}
}

// FormatNumber renders amount with two fraction digits and locale grouping.
// Digits come from the decimal itself, so large amounts stay exact.
func FormatNumber(amount decimal.Decimal, locale string) string {
	lf, _ := resolve(locale)
	amount = amount.Round(2)
	intPart, frac, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	out := groupDigits(intPart, lf.group, lf.minGroup) + lf.decimal + frac
	if amount.IsNegative() {
		out = "-" + out
	}
	return out
}

func groupDigits(digits, sep string, minGroup int) string {
	if len(digits) < minGroup || sep == "" {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatCurrency renders amount with the currency's narrow symbol on the side
// the locale puts it. Negative amounts start with a minus.
func FormatCurrency(amount decimal.Decimal, cur, locale string) string {
	if cur == "" {
		cur = DefaultCurrency
	}
	lf, _ := resolve(locale)
	sym := cur
	if unit, err := currency.ParseISO(cur); err == nil {
		sym = message.NewPrinter(lf.tag).Sprint(currency.NarrowSymbol(unit))
	}
	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	num := FormatNumber(amount.Abs(), locale)
	if lf.symAfter {
		return sign + num + lf.symSep + sym
	}
	return sign + sym + lf.symSep + num
}

// FormatTimer renders a countdown as mm:ss.
func FormatTimer(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
