// Package normalize ofrece normalización de texto para búsqueda: minúsculas y
// sin marcas diacríticas, de modo que "Pérez" y "perez" coincidan.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Accented y Folded son alfabetos paralelos para plegar acentos en SQL con
// translate(). Cubren las vocales acentuadas del español, la diéresis y la ñ;
// deben plegar igual que Search para que término y columna coincidan.
const (
	Accented = "áéíóúüñ"
	Folded   = "aeiouun"
)

// Search normaliza un término de búsqueda: trim, minúsculas y sin acentos.
func Search(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
