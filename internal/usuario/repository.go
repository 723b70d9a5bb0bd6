package usuario

import (
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

type Repository interface {
	Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Usuario, error)
	BuscarPorID(db *gorm.DB, empresaID, id uint) (*Usuario, error)
	EmailEmUso(db *gorm.DB, empresaID uint, email string, excetoID uint) (bool, error)
	Salvar(db *gorm.DB, u *Usuario) error
	Deletar(db *gorm.DB, empresaID uint, ids ...uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Usuario, error) {
	q := db.Scopes(models.DaEmpresa(empresaID))
	if like := utils.PadraoLike(f.Q); like != "" {
		q = q.Where("busca LIKE ?", like)
	}
	if f.Perfil != "" {
		q = q.Where("perfil = ?", f.Perfil)
	}
	if f.Ativo != nil {
		q = q.Where("ativo = ?", *f.Ativo)
	}
	var lista []Usuario
	err := q.Order("nome ASC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, empresaID, id uint) (*Usuario, error) {
	var u Usuario
	if err := db.Scopes(models.DaEmpresa(empresaID)).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) EmailEmUso(db *gorm.DB, empresaID uint, email string, excetoID uint) (bool, error) {
	var n int64
	err := db.Model(&Usuario{}).
		Scopes(models.DaEmpresa(empresaID)).
		Where("email = ? AND id <> ?", email, excetoID).
		Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) Salvar(db *gorm.DB, u *Usuario) error {
	return db.Save(u).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, empresaID uint, ids ...uint) (int64, error) {
	res := db.Scopes(models.DaEmpresa(empresaID)).Delete(&Usuario{}, ids)
	return res.RowsAffected, res.Error
}
