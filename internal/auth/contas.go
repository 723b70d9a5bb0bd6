package auth

import (
	"context"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"gorm.io/gorm"
)

// Conta é um usuário ativo de uma empresa ativa, com o hash da senha.
type Conta struct {
	UsuarioID    uint
	EmpresaID    uint
	Nome         string
	Email        string
	Perfil       models.Perfil
	SenhaHash    string
	EmpresaNome  string
	EmpresaLogo  string
	EmpresaAdmin bool
}

func (c Conta) Sessao() Sessao {
	return Sessao{
		UsuarioID:    c.UsuarioID,
		EmpresaID:    c.EmpresaID,
		Perfil:       c.Perfil,
		Nome:         c.Nome,
		Email:        c.Email,
		EmpresaAdmin: c.EmpresaAdmin,
	}
}

// Contas localiza as credenciais; implementado pelo pacote usuario.
type Contas interface {
	ContasPorEmail(ctx context.Context, db *gorm.DB, email string) ([]Conta, error)
	ContaPorID(ctx context.Context, db *gorm.DB, usuarioID uint) (*Conta, error)
}
