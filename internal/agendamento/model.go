package agendamento

import (
	"strings"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPendente  Status = "PENDENTE"
	StatusConcluido Status = "CONCLUIDO"
	StatusCancelado Status = "CANCELADO"
)

// Agendamento é uma visita marcada a um imóvel.
type Agendamento struct {
	models.Base
	EmpresaID         uint           `gorm:"index;not null" json:"empresaId"`
	DataHora          time.Time      `gorm:"index;not null" json:"dataHora"`
	ImovelID          uint           `gorm:"index;not null" json:"imovelId"`
	ClienteID         *uint          `gorm:"index" json:"clienteId"`
	LeadID            *uint          `gorm:"index" json:"leadId"`
	CorretorID        *uint          `gorm:"index" json:"corretorId"`
	NomeVisitante     string         `gorm:"size:150" json:"nomeVisitante"`
	TelefoneVisitante string         `gorm:"size:20" json:"telefoneVisitante"`
	Status            Status         `gorm:"size:15;not null;index" json:"status"`
	Observacao        string         `gorm:"type:text" json:"observacao"`
	Motivo            string         `gorm:"type:text" json:"motivo"`
	Imovel            *imovel.Imovel `gorm:"foreignKey:ImovelID" json:"imovel,omitempty"`
}

func (a *Agendamento) BeforeSave(*gorm.DB) error {
	a.NomeVisitante = strings.TrimSpace(a.NomeVisitante)
	a.TelefoneVisitante = utils.SomenteDigitos(a.TelefoneVisitante)
	if a.Status == "" {
		a.Status = StatusPendente
	}
	return nil
}
