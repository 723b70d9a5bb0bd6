package utils

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// IDDaRota lê um parâmetro numérico da rota do mux.
func IDDaRota(r *http.Request, nome string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[nome], 10, 64)
	if err != nil || v == 0 {
		return 0, &ErrValidacao{Mensagens: []string{"ID inválido"}}
	}
	return uint(v), nil
}

// UintDaQuery lê um parâmetro numérico opcional da query string (0 se ausente ou inválido).
func UintDaQuery(r *http.Request, nome string) uint {
	v, err := strconv.ParseUint(strings.TrimSpace(r.URL.Query().Get(nome)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

// DecodificarJSON lê o corpo em dst; corpo vazio ou malformado vira ErrValidacao.
func DecodificarJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidacao{Mensagens: []string{"JSON inválido"}}
	}
	return nil
}
