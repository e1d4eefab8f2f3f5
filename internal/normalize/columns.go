package normalize

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fran-as/millDischargeDashboard/internal/dataset"
)

// suffixMap translates the unit suffix of a raw header into its canonical
// spelling. Keys are lower case.
var suffixMap = map[string]string{
	"m3xh":    "M3PerH",
	"m3xhr":   "M3PerHr",
	"psi":     "Psi",
	"cant":    "Count",
	"rpm":     "Rpm",
	"kw":      "Kw",
	"amp":     "Amp",
	"prctj":   "Percent",
	"kgperm3": "KgPerM3",
	"kgxm3":   "Kgxm3",
	"um":      "Um",
}

// NormalizeColumnName maps a raw spreadsheet header onto the canonical
// lowerCamelCase name. "date" is reserved regardless of case. Otherwise the
// text after the last underscore is treated as a unit suffix; unknown
// suffixes are simply capitalized.
func NormalizeColumnName(raw string) string {
	name := strings.TrimSpace(raw)
	if strings.ToLower(name) == dataset.DateColumn {
		return dataset.DateColumn
	}

	parts := strings.Split(name, "_")
	if len(parts) > 1 {
		base := strings.Join(parts[:len(parts)-1], "")
		suffix := strings.ToLower(parts[len(parts)-1])
		mapped, ok := suffixMap[suffix]
		if !ok {
			mapped = capitalize(suffix)
		}
		name = base + mapped
	}

	return lowerFirst(name)
}

// NormalizeColumns applies NormalizeColumnName to every header, keeping
// order. Collisions are not resolved here; see DetectCollisions.
func NormalizeColumns(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = NormalizeColumnName(h)
	}
	return out
}

// CollisionError reports raw headers that normalize to the same name.
type CollisionError struct {
	Canonical string
	Raw       []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("columns %s all normalize to %q", strings.Join(quoteAll(e.Raw), ", "), e.Canonical)
}

// DetectCollisions returns a *CollisionError for the first canonical name
// (in sorted order) claimed by more than one raw header.
func DetectCollisions(raw, canonical []string) error {
	owners := make(map[string][]string, len(canonical))
	for i, c := range canonical {
		owners[c] = append(owners[c], raw[i])
	}

	var names []string
	for c, r := range owners {
		if len(r) > 1 {
			names = append(names, c)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return &CollisionError{Canonical: names[0], Raw: owners[names[0]]}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
