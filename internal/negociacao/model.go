package negociacao

import (
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
)

// Negociacao acompanha um cliente interessado num imóvel pelo funil
// PROSPECCAO -> VISITA -> PROPOSTA -> FECHADO/PERDIDO.
type Negociacao struct {
	models.Base
	EmpresaID          uint                    `gorm:"index;not null" json:"empresaId"`
	ClienteID          uint                    `gorm:"index;not null" json:"clienteId"`
	ImovelID           uint                    `gorm:"index;not null" json:"imovelId"`
	CorretorID         *uint                   `gorm:"index" json:"corretorId"`
	LeadID             *uint                   `gorm:"index" json:"leadId"`
	TipoNegocio        models.TipoNegocio      `gorm:"size:10;not null" json:"tipoNegocio"`
	Status             models.StatusNegociacao `gorm:"size:12;not null;index" json:"status"`
	ValorProposta      float64                 `gorm:"type:numeric(14,2);not null;default:0" json:"valorProposta"`
	Observacoes        string                  `gorm:"type:text" json:"observacoes"`
	NegociacaoOrigemID *uint                   `gorm:"index" json:"negociacaoOrigemId"`

	Cliente *cliente.Cliente `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Imovel  *imovel.Imovel   `gorm:"foreignKey:ImovelID" json:"imovel,omitempty"`
}

func (Negociacao) TableName() string { return "negociacoes" }

// copiaParaRefazer monta a negociação corrigida que substitui uma estornada.
func (n *Negociacao) copiaParaRefazer() *Negociacao {
	origem := n.ID
	return &Negociacao{
		EmpresaID:          n.EmpresaID,
		ClienteID:          n.ClienteID,
		ImovelID:           n.ImovelID,
		CorretorID:         n.CorretorID,
		LeadID:             n.LeadID,
		TipoNegocio:        n.TipoNegocio,
		Status:             models.StatusProposta,
		ValorProposta:      n.ValorProposta,
		Observacoes:        n.Observacoes,
		NegociacaoOrigemID: &origem,
	}
}
