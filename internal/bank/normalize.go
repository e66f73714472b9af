// Package bank maps free-text bank labels to canonical bank codes.
package bank

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical codes for the banks the advisor knows by name.
const (
	BANDEC     = "BANDEC"
	BPA        = "BPA"
	Metro      = "METRO"
	MiTransfer = "MITRANSFER"
)

// synonyms is keyed by the punctuation-free, legal-suffix-free form
// produced by matchKey.
var synonyms = map[string]string{
	"BANDEC":                      BANDEC,
	"BANCO DE CREDITO Y COMERCIO": BANDEC,
	"BPA":                         BPA,
	"BANCO POPULAR DE AHORRO":     BPA,
	"METRO":                       Metro,
	"METROPOLITANO":               Metro,
	"BANCO METROPOLITANO":         Metro,
	"MITRANSFER":                  MiTransfer,
	"MI TRANSFER":                 MiTransfer,
	"TRANSFERMOVIL":               MiTransfer,
	"TRANSFER MOVIL":              MiTransfer,
}

var legalSuffixes = []string{" SA", " S A", " LTDA", " SL"}

// Normalize returns the canonical code for label, or the cleaned label
// (accents stripped, uppercased, whitespace collapsed) when no synonym
// matches. Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(label string) string {
	cleaned := clean(label)
	if code, ok := synonyms[matchKey(cleaned)]; ok {
		return code
	}
	return cleaned
}

// Known reports whether label resolves to one of the synonym table's codes.
func Known(label string) bool {
	_, ok := synonyms[matchKey(clean(label))]
	return ok
}

// MaskNumber keeps the last four digits of a card number.
func MaskNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return "****" + digits
	}
	return "****" + digits[len(digits)-4:]
}

// clean strips combining marks on both sides of uppercasing: U+01F0 (ǰ)
// only has an uppercase form once its mark is gone.
func clean(label string) string {
	s := strings.ToUpper(stripMarks(label))
	s = stripMarks(s)
	return strings.Join(strings.Fields(s), " ")
}

func stripMarks(s string) string {
	// Chained transformers keep state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func matchKey(cleaned string) string {
	k := strings.NewReplacer(".", " ", ",", " ").Replace(cleaned)
	k = strings.Join(strings.Fields(k), " ")
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(k, suffix) {
			k = strings.TrimSuffix(k, suffix)
			break
		}
	}
	return k
}
