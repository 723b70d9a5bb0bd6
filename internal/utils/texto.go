package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizarBusca remove acentos, espaços nas bordas e converte para minúsculas.
// Exemplo: "  São João " -> "sao joao"
func NormalizarBusca(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, s)
	if err != nil {
		normalized = s
	}
	return strings.ToLower(normalized)
}

// TextoBusca junta os campos pesquisáveis numa única string normalizada,
// gravada na coluna "busca" das entidades.
func TextoBusca(campos ...string) string {
	partes := make([]string, 0, len(campos))
	for _, c := range campos {
		if n := NormalizarBusca(c); n != "" {
			partes = append(partes, n)
		}
	}
	return strings.Join(partes, " ")
}

// PadraoLike monta o padrão %termo% para a coluna busca; vazio se não há termo.
func PadraoLike(termo string) string {
	n := NormalizarBusca(termo)
	if n == "" {
		return ""
	}
	n = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(n)
	return "%" + n + "%"
}
