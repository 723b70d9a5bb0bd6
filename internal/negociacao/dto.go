package negociacao

import (
	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/models"
)

type NegociacaoRequest struct {
	ClienteID     uint               `json:"clienteId" validate:"required"`
	ImovelID      uint               `json:"imovelId" validate:"required"`
	CorretorID    *uint              `json:"corretorId"`
	TipoNegocio   models.TipoNegocio `json:"tipoNegocio" validate:"required,oneof=VENDA ALUGUEL"`
	ValorProposta float64            `json:"valorProposta" validate:"gte=0"`
	Observacoes   string             `json:"observacoes"`
}

type StatusRequest struct {
	Status     models.StatusNegociacao `json:"status" validate:"required"`
	Observacao string                  `json:"observacao"`
}

type RefazerRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}

// EstornoResponse é a resposta de POST /negociacoes/{id}/refazer.
type EstornoResponse struct {
	Cancelada            *Negociacao            `json:"cancelada"`
	Nova                 *Negociacao            `json:"nova"`
	TransacoesCanceladas []financeiro.Transacao `json:"transacoesCanceladas"`
	TransacoesMantidas   []financeiro.Transacao `json:"transacoesMantidas"`
}

type Filtro struct {
	Visao      string
	Status     string
	Q          string
	ClienteID  uint
	ImovelID   uint
	CorretorID uint
}
