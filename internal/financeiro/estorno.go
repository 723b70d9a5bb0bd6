package financeiro

import (
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"gorm.io/gorm"
)

// EstornarNegociacao cancela as transações ainda não pagas da negociação e
// marca seus fechamentos como ESTORNADO. Linhas PAGO ficam como estão e
// voltam em Mantidas. Deve rodar dentro da transação do estorno.
func EstornarNegociacao(tx *gorm.DB, empresaID, negociacaoID uint) (*ResultadoEstorno, error) {
	var linhas []Transacao
	if err := tx.Where("empresa_id = ? AND negociacao_id = ?", empresaID, negociacaoID).
		Order("id ASC").Find(&linhas).Error; err != nil {
		return nil, err
	}

	res := &ResultadoEstorno{Canceladas: []Transacao{}, Mantidas: []Transacao{}}
	var ids []uint
	for _, t := range linhas {
		switch t.Status {
		case models.TransacaoPago:
			res.Mantidas = append(res.Mantidas, t)
		case models.TransacaoCancelado:
		default:
			t.Status = models.TransacaoCancelado
			res.Canceladas = append(res.Canceladas, t)
			ids = append(ids, t.ID)
		}
	}

	if len(ids) > 0 {
		if err := tx.Model(&Transacao{}).Where("id IN ?", ids).
			Update("status", models.TransacaoCancelado).Error; err != nil {
			return nil, err
		}
	}
	if err := tx.Model(&Fechamento{}).
		Where("empresa_id = ? AND negociacao_id = ? AND status = ?", empresaID, negociacaoID, FechamentoAtivo).
		Update("status", FechamentoEstornado).Error; err != nil {
		return nil, err
	}
	return res, nil
}
