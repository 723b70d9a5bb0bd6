package usuario

import (
	"context"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"gorm.io/gorm"
)

// Contas implementa auth.Contas sobre as tabelas usuarios e empresas.
type Contas struct{}

const selectConta = `u.id AS usuario_id, u.empresa_id, u.nome, u.email, u.perfil,
	u.senha AS senha_hash, e.nome AS empresa_nome, e.logo_url AS empresa_logo,
	e.is_admin AS empresa_admin`

func (Contas) base(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).
		Table("usuarios u").
		Select(selectConta).
		Joins("JOIN empresas e ON e.id = u.empresa_id").
		Where("u.ativo AND e.ativo AND u.deleted_at IS NULL AND e.deleted_at IS NULL")
}

func (c Contas) ContasPorEmail(ctx context.Context, db *gorm.DB, email string) ([]auth.Conta, error) {
	var contas []auth.Conta
	err := c.base(ctx, db).
		Where("u.email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("e.nome ASC").
		Scan(&contas).Error
	return contas, err
}

func (c Contas) ContaPorID(ctx context.Context, db *gorm.DB, usuarioID uint) (*auth.Conta, error) {
	var contas []auth.Conta
	if err := c.base(ctx, db).Where("u.id = ?", usuarioID).Limit(1).Scan(&contas).Error; err != nil {
		return nil, err
	}
	if len(contas) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &contas[0], nil
}
