// Package keys derives match keys and fuzzy signatures from canonical
// records. Derivation is deterministic: the same record always yields the
// same key and signature.
package keys

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize applies the fixed normalization policy: Unicode NFKC, trim,
// collapse internal whitespace, case-fold. Normalize is idempotent.
// A Caser is stateful, so each call gets its own; partition workers call
// Normalize concurrently.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// foldNumeric reduces numeric-looking values to a single canonical form so
// "007", "7" and "7.0" compare equal when a key field opts in. Values that
// do not parse as numbers are returned unchanged.
func foldNumeric(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
