package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold lower-cases s for case-insensitive comparison. A fresh Caser is
// built per call since cases.Caser is not safe for concurrent use.
func Fold(s string) string {
	if s == "" {
		return s
	}
	return cases.Lower(language.Und).String(s)
}

// FoldTrim trims surrounding whitespace, then folds.
func FoldTrim(s string) string {
	return Fold(strings.TrimSpace(s))
}
