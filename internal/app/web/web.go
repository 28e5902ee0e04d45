// Package web holds the HTML templates and the helpers they use.
package web

import (
	"embed"
	"html/template"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Currency is the ISO code every balance is displayed in.
const Currency = money.USD

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.tmpl")
}

// FuncMap returns the helpers available to the templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"usd":     FormatMoney,
		"percent": FormatPercent,
	}
}

// FormatMoney renders an amount in Currency, rounded to its minor unit (e.g. "$1,234.56").
func FormatMoney(d decimal.Decimal) string {
	cur := *money.New(0, Currency).Currency()
	minor := d.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPercent renders a percentage with two decimals and an explicit sign.
func FormatPercent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if d.Round(2).IsPositive() {
		return "+" + s
	}
	return s
}
