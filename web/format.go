package web

import (
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.AmericanEnglish)

var funcs = template.FuncMap{
	"number": FormatNumber,
	"selected": func(a, b interface{}) bool {
		return fmt.Sprint(a) == fmt.Sprint(b)
	},
}

// FormatNumber groups thousands the way US visitors expect: 25000.5 becomes
// "25,000.5".
func FormatNumber(v interface{}) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}
