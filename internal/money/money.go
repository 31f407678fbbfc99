package money

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/julianstephens/kairos/internal/constants"
	"github.com/julianstephens/kairos/internal/models"
)

// zeroDecimal lists currencies rendered without fractional digits by default
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"CLP": true,
	"VND": true,
}

// suffixLanguages place the currency symbol after the amount
var suffixLanguages = map[string]bool{
	"de": true,
	"fr": true,
	"it": true,
	"ru": true,
	"pl": true,
	"sv": true,
	"fi": true,
	"cs": true,
}

var (
	defaultMu     sync.RWMutex
	defaultLocale string
)

// SetDefaultLocale sets the locale used when a Money value carries none.
// An empty value restores detection from the environment.
func SetDefaultLocale(locale string) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLocale = locale
}

// DeviceLocale returns the configured default locale, else the locale from
// LC_ALL, LC_MONETARY or LANG, else en-US.
func DeviceLocale() string {
	defaultMu.RLock()
	l := defaultLocale
	defaultMu.RUnlock()
	if l != "" {
		return l
	}

	for _, key := range []string{"LC_ALL", "LC_MONETARY", "LANG"} {
		if tag := posixToBCP47(os.Getenv(key)); tag != "" {
			return tag
		}
	}
	return constants.DefaultLocale
}

// posixToBCP47 turns "es_CL.UTF-8" into "es-CL". C and POSIX locales yield "".
func posixToBCP47(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}

// DefaultFractionDigits returns 0 for zero-decimal currencies and 2 otherwise.
func DefaultFractionDigits(code string) int {
	if zeroDecimal[strings.ToUpper(code)] {
		return 0
	}
	return 2
}

type options struct {
	min *int
	max *int
}

// Option adjusts how an amount is rendered
type Option func(*options)

// MinFractionDigits overrides the minimum number of fractional digits
func MinFractionDigits(n int) Option {
	return func(o *options) { o.min = &n }
}

// MaxFractionDigits overrides the maximum number of fractional digits
func MaxFractionDigits(n int) Option {
	return func(o *options) { o.max = &n }
}

// Format renders m as a localized currency string, e.g. "$1,234.50",
// "¥1,500" or "12.345,50 €". When the currency code or the locale cannot be
// used it falls back to "<sign><CODE> <abs>", e.g. "-XYZ 12.50".
func Format(m models.Money, opts ...Option) string {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	def := DefaultFractionDigits(m.Currency)
	minFD, maxFD := def, def
	if o.min != nil {
		minFD = *o.min
	}
	if o.max != nil {
		maxFD = *o.max
	}
	if maxFD < 0 {
		maxFD = 0
	}

	if minFD < 0 || minFD > maxFD {
		return fallback(m, maxFD)
	}

	unit, err := currency.ParseISO(strings.ToUpper(m.Currency))
	if err != nil {
		return fallback(m, maxFD)
	}

	locale := m.Locale
	if locale == "" {
		locale = DeviceLocale()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fallback(m, maxFD)
	}

	p := message.NewPrinter(tag)
	scale := math.Pow10(maxFD)
	abs := math.Round(math.Abs(m.Value)*scale) / scale

	amount := p.Sprint(number.Decimal(abs,
		number.MinFractionDigits(minFD),
		number.MaxFractionDigits(maxFD),
	))
	symbol := p.Sprint(currency.NarrowSymbol(unit))

	sign := ""
	if m.Value < 0 && abs != 0 {
		sign = "-"
	}

	base, _ := tag.Base()
	region, _ := tag.Region()
	if suffixLanguages[base.String()] || (base.String() == "es" && region.String() == "ES") || (base.String() == "pt" && region.String() == "PT") {
		return sign + amount + " " + symbol
	}
	return sign + symbol + amount
}

func fallback(m models.Money, digits int) string {
	sign := ""
	if m.Value < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%s %.*f", sign, m.Currency, digits, math.Abs(m.Value))
}
