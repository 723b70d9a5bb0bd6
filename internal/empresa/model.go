package empresa

import (
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

// Empresa é o tenant. Usuários ADM_GERAL de uma empresa IsAdmin administram todas as empresas.
type Empresa struct {
	models.Base
	Nome          string `gorm:"size:150;not null" json:"nome"`
	CNPJ          string `gorm:"size:14;index:idx_empresa_cnpj,unique,where:deleted_at IS NULL" json:"cnpj"`
	Email         string `gorm:"size:150" json:"email"`
	Telefone      string `gorm:"size:20" json:"telefone"`
	LogoURL       string `gorm:"size:500" json:"logoUrl"`
	AssinaturaURL string `gorm:"size:500" json:"assinaturaUrl"`
	IsAdmin       bool   `gorm:"not null;default:false" json:"isAdmin"`
	Ativo         bool   `gorm:"not null" json:"ativo"`
	Busca         string `gorm:"type:text" json:"-"`
}

func (e *Empresa) BeforeSave(*gorm.DB) error {
	e.CNPJ = utils.SomenteDigitos(e.CNPJ)
	e.Telefone = utils.SomenteDigitos(e.Telefone)
	e.Busca = utils.TextoBusca(e.Nome, e.CNPJ, e.Email)
	return nil
}
