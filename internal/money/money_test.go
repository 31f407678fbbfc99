package money

import (
	"strings"
	"testing"

	"github.com/julianstephens/kairos/internal/models"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input models.Money
		opts  []Option
		want  string
	}{
		{
			name:  "usd uses two decimals",
			input: models.Money{Value: 1234.5, Currency: "USD", Locale: "en-US"},
			want:  "$1,234.50",
		},
		{
			name:  "negative usd",
			input: models.Money{Value: -890, Currency: "USD", Locale: "en-US"},
			want:  "-$890.00",
		},
		{
			name:  "jpy has no fractional digits",
			input: models.Money{Value: 1500, Currency: "JPY", Locale: "en-US"},
			want:  "¥1,500",
		},
		{
			name:  "jpy rounds fractional input",
			input: models.Money{Value: 1500.6, Currency: "JPY", Locale: "en-US"},
			want:  "¥1,501",
		},
		{
			name:  "lowercase currency code",
			input: models.Money{Value: 10, Currency: "usd", Locale: "en-US"},
			want:  "$10.00",
		},
		{
			name:  "euro in spain puts symbol after amount",
			input: models.Money{Value: 12345.5, Currency: "EUR", Locale: "es-ES"},
			want:  "12.345,50 €",
		},
		{
			name:  "max fraction digits override",
			input: models.Money{Value: 3.14159, Currency: "USD", Locale: "en-US"},
			opts:  []Option{MinFractionDigits(0), MaxFractionDigits(0)},
			want:  "$3",
		},
		{
			name:  "unknown currency falls back to code",
			input: models.Money{Value: -12.5, Currency: "XYZ", Locale: "en-US"},
			want:  "-XYZ 12.50",
		},
		{
			name:  "min above max falls back",
			input: models.Money{Value: 1500, Currency: "JPY", Locale: "en-US"},
			opts:  []Option{MinFractionDigits(2)},
			want:  "JPY 1500",
		},
		{
			name:  "malformed locale falls back",
			input: models.Money{Value: 5, Currency: "USD", Locale: "not a locale!"},
			want:  "USD 5.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.input, tt.opts...)
			if got != tt.want {
				t.Errorf("Format(%+v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestZeroDecimalCurrencies(t *testing.T) {
	for _, code := range []string{"JPY", "KRW", "CLP", "VND"} {
		got := Format(models.Money{Value: 123456, Currency: code, Locale: "en-US"})
		if strings.Contains(got, ".") {
			t.Errorf("Format(%s) = %q, expected no fractional digits", code, got)
		}
		if DefaultFractionDigits(code) != 0 {
			t.Errorf("DefaultFractionDigits(%s) = %d, want 0", code, DefaultFractionDigits(code))
		}
	}
	for _, code := range []string{"USD", "EUR", "MXN"} {
		if DefaultFractionDigits(code) != 2 {
			t.Errorf("DefaultFractionDigits(%s) = %d, want 2", code, DefaultFractionDigits(code))
		}
	}
}

func TestDeviceLocale(t *testing.T) {
	t.Cleanup(func() { SetDefaultLocale("") })

	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MONETARY", "")
	t.Setenv("LANG", "es_CL.UTF-8")
	SetDefaultLocale("")
	if got := DeviceLocale(); got != "es-CL" {
		t.Errorf("DeviceLocale() = %q, want %q", got, "es-CL")
	}

	t.Setenv("LANG", "C")
	if got := DeviceLocale(); got != "en-US" {
		t.Errorf("DeviceLocale() with C locale = %q, want en-US", got)
	}

	SetDefaultLocale("fr-FR")
	if got := DeviceLocale(); got != "fr-FR" {
		t.Errorf("DeviceLocale() with configured default = %q, want fr-FR", got)
	}
}

func TestFormatUsesDeviceLocaleWhenMissing(t *testing.T) {
	t.Cleanup(func() { SetDefaultLocale("") })
	SetDefaultLocale("en-US")

	got := Format(models.Money{Value: 2500, Currency: "USD"})
	if got != "$2,500.00" {
		t.Errorf("Format() = %q, want %q", got, "$2,500.00")
	}
}
