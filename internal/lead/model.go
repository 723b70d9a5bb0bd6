package lead

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

type Status string

const (
	StatusNovo        Status = "NOVO"
	StatusEmAndamento Status = "EM_ANDAMENTO"
	StatusConcluido   Status = "CONCLUIDO"
)

func (s Status) Valido() bool {
	return s == StatusNovo || s == StatusEmAndamento || s == StatusConcluido
}

// Lead é um contato interessado que ainda não virou negociação.
type Lead struct {
	models.Base
	EmpresaID    uint   `gorm:"index;not null" json:"empresaId"`
	Nome         string `gorm:"size:150;not null" json:"nome"`
	Email        string `gorm:"size:150" json:"email"`
	Telefone     string `gorm:"size:20" json:"telefone"`
	Mensagem     string `gorm:"type:text" json:"mensagem"`
	Origem       string `gorm:"size:40" json:"origem"`
	ImovelID     *uint  `gorm:"index" json:"imovelId"`
	ClienteID    *uint  `gorm:"index" json:"clienteId"`
	NegociacaoID *uint  `gorm:"index" json:"negociacaoId"`
	Status       Status `gorm:"size:15;not null;index" json:"status"`
	Busca        string `gorm:"type:text" json:"-"`
}

func (l *Lead) BeforeSave(*gorm.DB) error {
	l.Email = strings.ToLower(strings.TrimSpace(l.Email))
	l.Telefone = utils.SomenteDigitos(l.Telefone)
	if l.Status == "" {
		l.Status = StatusNovo
	}
	if l.Origem == "" {
		l.Origem = "SITE"
	}
	l.Busca = utils.TextoBusca(l.Nome, l.Email, l.Telefone, l.Origem)
	return nil
}
