package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips diacritics and case-folds s, so "Café" and "CAFE" compare
// equal. Transformers are stateful; build a fresh chain per call.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())

	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}

	return out
}
