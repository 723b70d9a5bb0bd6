package configuracao

import "github.com/imobgestor/api-imobiliaria/internal/models"

const (
	// TaxaPadrao é a taxa de administração (%) de uma empresa nova.
	TaxaPadrao = 10.0
	// TaxaFallback é usada quando a configuração não pôde ser lida.
	TaxaFallback = 5.0

	DiaVencimentoPadrao = 10
)

// Configuracao guarda parâmetros por empresa (uma linha por empresa).
type Configuracao struct {
	models.Base
	EmpresaID           uint    `gorm:"uniqueIndex;not null" json:"empresaId"`
	TaxaAdministracao   float64 `gorm:"type:numeric(5,2);not null" json:"taxaAdministracao"`
	DiaVencimentoPadrao int     `gorm:"not null" json:"diaVencimentoPadrao"`
}

func (Configuracao) TableName() string { return "configuracoes" }

func Padrao(empresaID uint) Configuracao {
	return Configuracao{
		EmpresaID:           empresaID,
		TaxaAdministracao:   TaxaPadrao,
		DiaVencimentoPadrao: DiaVencimentoPadrao,
	}
}

type AtualizarRequest struct {
	TaxaAdministracao   *float64 `json:"taxaAdministracao,omitempty" validate:"omitempty,gte=0,lte=100"`
	DiaVencimentoPadrao *int     `json:"diaVencimentoPadrao,omitempty" validate:"omitempty,gte=1,lte=31"`
}
