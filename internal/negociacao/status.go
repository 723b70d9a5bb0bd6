package negociacao

import (
	"fmt"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/historico"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

// ValidarTransicao aplica as regras do PATCH de status. FECHADO só entra pelo
// fechamento e CANCELADO só pelo estorno; PERDIDO e CANCELADO são finais.
func ValidarTransicao(id uint, atual, novo models.StatusNegociacao) error {
	if !novo.Valido() {
		return utils.NovoErrValidacao("status inválido: %s", novo)
	}
	switch {
	case atual == models.StatusFechado:
		return &utils.ErrConflito{Mensagem: fmt.Sprintf(
			"negociação fechada não muda de status; para corrigir use o estorno em POST /negociacoes/%d/refazer", id)}
	case atual == models.StatusPerdido || atual == models.StatusCancelado:
		return &utils.ErrConflito{Mensagem: fmt.Sprintf("negociação %s não pode mudar de status", atual)}
	case novo == atual:
		return &utils.ErrConflito{Mensagem: fmt.Sprintf("negociação já está em %s", atual)}
	case novo == models.StatusFechado:
		return &utils.ErrConflito{Mensagem: fmt.Sprintf(
			"para fechar a negociação use POST /negociacoes/%d/fechamento", id)}
	case novo == models.StatusCancelado:
		return &utils.ErrConflito{Mensagem: "cancelamento só acontece pelo estorno de uma negociação fechada"}
	}
	return nil
}

func textoTransicao(de, para models.StatusNegociacao, obs string) string {
	texto := fmt.Sprintf("Status alterado de %s para %s", de, para)
	if obs = strings.TrimSpace(obs); obs != "" {
		texto += ". Observação: " + obs
	}
	return texto
}

// MarcarFechada leva uma negociação aberta a FECHADO dentro da transação do
// fechamento e registra no histórico.
func MarcarFechada(tx *gorm.DB, repo Repository, hist historico.Repository, n *Negociacao, usuarioID uint, obs string) error {
	if !n.Status.Aberto() {
		return &utils.ErrConflito{Mensagem: fmt.Sprintf("negociação em %s não pode ser fechada", n.Status)}
	}
	de := n.Status
	n.Status = models.StatusFechado
	if err := repo.Salvar(tx, n); err != nil {
		return err
	}
	return hist.Criar(tx, historico.ParaNegociacao(n.EmpresaID, n.ID, usuarioID, textoTransicao(de, n.Status, obs)))
}
