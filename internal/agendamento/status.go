package agendamento

import (
	"fmt"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
)

// ValidarTransicao: só PENDENTE muda, e sempre com motivo.
func ValidarTransicao(atual, novo Status, motivo string) error {
	if novo != StatusConcluido && novo != StatusCancelado {
		return utils.NovoErrValidacao("status deve ser CONCLUIDO ou CANCELADO")
	}
	if atual != StatusPendente {
		return &utils.ErrConflito{Mensagem: fmt.Sprintf("agendamento %s não muda de status", atual)}
	}
	if strings.TrimSpace(motivo) == "" {
		return utils.NovoErrValidacao("motivo é obrigatório")
	}
	return nil
}
