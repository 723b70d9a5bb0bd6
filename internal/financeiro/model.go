package financeiro

import (
	"time"

	"github.com/google/uuid"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transacao é uma linha do livro financeiro (receita ou despesa).
type Transacao struct {
	models.Base
	EmpresaID       uint                   `gorm:"index;not null" json:"empresaId"`
	Descricao       string                 `gorm:"size:255;not null" json:"descricao"`
	Tipo            models.TipoTransacao   `gorm:"size:10;not null;index" json:"tipo"`
	Status          models.StatusTransacao `gorm:"size:10;not null;index" json:"status"`
	Valor           decimal.Decimal        `gorm:"type:numeric(14,2);not null" json:"valor"`
	DataVencimento  time.Time              `gorm:"type:date;not null;index" json:"dataVencimento"`
	DataPagamento   *time.Time             `gorm:"type:date" json:"dataPagamento"`
	ClienteID       *uint                  `gorm:"index" json:"clienteId"`
	ImovelID        *uint                  `gorm:"index" json:"imovelId"`
	NegociacaoID    *uint                  `gorm:"index" json:"negociacaoId"`
	FechamentoID    *uint                  `gorm:"index" json:"fechamentoId"`
	ParcelaNumero   int                    `json:"parcelaNumero"`
	TotalParcelas   int                    `json:"totalParcelas"`
	Categoria       string                 `gorm:"size:60" json:"categoria"`
	FormaPagamento  string                 `gorm:"size:30" json:"formaPagamento"`
	CodigoValidacao string                 `gorm:"size:36;uniqueIndex" json:"codigoValidacao"`
	Busca           string                 `gorm:"type:text" json:"-"`
}

func (Transacao) TableName() string { return "transacoes" }

func (t *Transacao) BeforeCreate(*gorm.DB) error {
	if t.CodigoValidacao == "" {
		t.CodigoValidacao = uuid.NewString()
	}
	return nil
}

func (t *Transacao) BeforeSave(*gorm.DB) error {
	if t.Status == "" {
		t.Status = models.TransacaoPendente
	}
	t.Busca = utils.TextoBusca(t.Descricao, t.Categoria, t.FormaPagamento)
	return nil
}

// Status do fechamento.
const (
	FechamentoAtivo     = "ATIVO"
	FechamentoEstornado = "ESTORNADO"
)

// Fechamento guarda as entradas e os valores calculados no fechamento de
// uma negociação; as transações geradas apontam para ele.
type Fechamento struct {
	models.Base
	EmpresaID           uint               `gorm:"index;not null" json:"empresaId"`
	NegociacaoID        uint               `gorm:"index;not null" json:"negociacaoId"`
	UsuarioID           uint               `json:"usuarioId"`
	TipoNegocio         models.TipoNegocio `gorm:"size:10;not null" json:"tipoNegocio"`
	ValorTotal          decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"valorTotal"`
	ValorEntrada        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"valorEntrada"`
	QuantidadeParcelas  int                `gorm:"not null" json:"quantidadeParcelas"`
	DiaVencimento       int                `gorm:"not null" json:"diaVencimento"`
	TaxaAdministracao   decimal.Decimal    `gorm:"type:numeric(6,2);not null" json:"taxaAdministracao"`
	AcrescimoPercentual decimal.Decimal    `gorm:"type:numeric(6,2);not null" json:"acrescimoPercentual"`
	AcrescimoFixo       decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"acrescimoFixo"`
	ValorLiquido        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"valorLiquido"`
	ValorParcelaBase    decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"valorParcelaBase"`
	ValorParcela        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"valorParcela"`
	ValorTaxa           decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"valorTaxa"`
	ValorRepasse        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"valorRepasse"`
	Status              string             `gorm:"size:10;not null;index" json:"status"`
	Transacoes          []Transacao        `gorm:"foreignKey:FechamentoID" json:"transacoes,omitempty"`
}

func (Fechamento) TableName() string { return "fechamentos" }
