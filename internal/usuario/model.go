package usuario

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

// Usuario é um operador do sistema, sempre ligado a uma empresa.
type Usuario struct {
	models.Base
	EmpresaID uint          `gorm:"not null;index:idx_usuario_empresa_email,unique,where:deleted_at IS NULL" json:"empresaId"`
	Nome      string        `gorm:"size:150;not null" json:"nome"`
	Email     string        `gorm:"size:150;not null;index:idx_usuario_empresa_email,unique,where:deleted_at IS NULL" json:"email"`
	Senha     string        `gorm:"size:255;not null" json:"-"`
	Telefone  string        `gorm:"size:20" json:"telefone"`
	CPF       string        `gorm:"size:11" json:"cpf"`
	Perfil    models.Perfil `gorm:"size:20;not null" json:"perfil"`
	Ativo     bool          `gorm:"not null" json:"ativo"`
	Busca     string        `gorm:"type:text" json:"-"`
}

func (u *Usuario) BeforeSave(*gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Telefone = utils.SomenteDigitos(u.Telefone)
	u.CPF = utils.SomenteDigitos(u.CPF)
	u.Busca = utils.TextoBusca(u.Nome, u.Email, u.CPF)
	return nil
}
