// Package textnorm normaliza texto para búsquedas por prefijo insensibles a mayúsculas.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Lower devuelve s en minúsculas (reglas de pt-BR) y en forma NFC, sin espacios en los extremos.
// Se usa tanto para name_lowercase como para el término de búsqueda, así ambos lados comparan igual.
func Lower(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	// cases.Caser guarda estado: uno por llamada.
	return cases.Lower(language.BrazilianPortuguese).String(s)
}
