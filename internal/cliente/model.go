package cliente

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

const (
	StatusAtivo   = "ATIVO"
	StatusInativo = "INATIVO"
)

type Cliente struct {
	models.Base
	EmpresaID   uint   `gorm:"index;not null" json:"empresaId"`
	Nome        string `gorm:"size:150;not null" json:"nome"`
	CPF         string `gorm:"size:14" json:"cpf"`
	Email       string `gorm:"size:150" json:"email"`
	Telefone    string `gorm:"size:20" json:"telefone"`
	Endereco    string `gorm:"size:300" json:"endereco"`
	Status      string `gorm:"size:10;not null;default:ATIVO" json:"status"`
	Observacoes string `gorm:"type:text" json:"observacoes"`
	Busca       string `gorm:"type:text" json:"-"`
}

func (c *Cliente) BeforeSave(*gorm.DB) error {
	c.CPF = utils.SomenteDigitos(c.CPF)
	c.Telefone = utils.SomenteDigitos(c.Telefone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Status == "" {
		c.Status = StatusAtivo
	}
	c.Busca = utils.TextoBusca(c.Nome, c.CPF, c.Email, c.Telefone)
	return nil
}
