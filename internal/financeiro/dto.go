package financeiro

import (
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/shopspring/decimal"
)

type TransacaoRequest struct {
	Descricao      string                 `json:"descricao" validate:"required,max=255"`
	Tipo           models.TipoTransacao   `json:"tipo" validate:"required,oneof=RECEITA DESPESA"`
	Status         models.StatusTransacao `json:"status" validate:"omitempty,oneof=PENDENTE PAGO"`
	Valor          decimal.Decimal        `json:"valor"`
	DataVencimento string                 `json:"dataVencimento" validate:"required"`
	DataPagamento  string                 `json:"dataPagamento"`
	ClienteID      *uint                  `json:"clienteId"`
	ImovelID       *uint                  `json:"imovelId"`
	NegociacaoID   *uint                  `json:"negociacaoId"`
	Categoria      string                 `json:"categoria" validate:"max=60"`
	FormaPagamento string                 `json:"formaPagamento" validate:"max=30"`
}

type PagarRequest struct {
	DataPagamento  string `json:"dataPagamento"`
	FormaPagamento string `json:"formaPagamento" validate:"max=30"`
}

type Filtro struct {
	Tipo         string
	Status       string
	Q            string
	Inicio       *time.Time
	Fim          *time.Time // exclusivo: dia seguinte ao informado
	NegociacaoID uint
}

// Resumo alimenta os cards da tela financeira.
type Resumo struct {
	Inicio            time.Time       `json:"inicio"`
	Fim               time.Time       `json:"fim"`
	ReceitasRecebidas decimal.Decimal `json:"receitasRecebidas"`
	DespesasPagas     decimal.Decimal `json:"despesasPagas"`
	AReceber          decimal.Decimal `json:"aReceber"`
	APagar            decimal.Decimal `json:"aPagar"`
	Atrasado          decimal.Decimal `json:"atrasado"`
	Saldo             decimal.Decimal `json:"saldo"`
}

// ResultadoEstorno lista as linhas afetadas pelo estorno de uma negociação.
type ResultadoEstorno struct {
	Canceladas []Transacao
	Mantidas   []Transacao
}

type ValidacaoRecibo struct {
	Valido        bool            `json:"valido"`
	Codigo        string          `json:"codigo"`
	Empresa       string          `json:"empresa"`
	Descricao     string          `json:"descricao"`
	Valor         decimal.Decimal `json:"valor"`
	DataPagamento *time.Time      `json:"dataPagamento"`
}
