package lead

import (
	"fmt"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
)

// ValidarTransicao: NOVO -> EM_ANDAMENTO -> CONCLUIDO, com atalho NOVO -> CONCLUIDO.
// Concluir exige observação.
func ValidarTransicao(atual, novo Status, observacao string) error {
	if !novo.Valido() {
		return utils.NovoErrValidacao("status inválido: %s", novo)
	}
	switch {
	case atual == StatusConcluido:
		return &utils.ErrConflito{Mensagem: "lead concluído não muda de status"}
	case novo == atual:
		return &utils.ErrConflito{Mensagem: fmt.Sprintf("lead já está em %s", atual)}
	case novo == StatusNovo:
		return &utils.ErrConflito{Mensagem: "lead não volta para NOVO"}
	case novo == StatusConcluido && strings.TrimSpace(observacao) == "":
		return utils.NovoErrValidacao("observação é obrigatória para concluir o lead")
	}
	return nil
}

func textoTransicao(de, para Status, obs string) string {
	texto := fmt.Sprintf("Status alterado de %s para %s", de, para)
	if obs = strings.TrimSpace(obs); obs != "" {
		texto += ". Observação: " + obs
	}
	return texto
}
