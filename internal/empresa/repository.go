package empresa

import (
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

type Repository interface {
	Listar(db *gorm.DB, somenteID uint, f Filtro) ([]Empresa, error)
	BuscarPorID(db *gorm.DB, id uint) (*Empresa, error)
	CNPJEmUso(db *gorm.DB, cnpj string, excetoID uint) (bool, error)
	Contar(db *gorm.DB) (int64, error)
	Salvar(db *gorm.DB, e *Empresa) error
	Deletar(db *gorm.DB, ids ...uint) (int64, error)
	ListarAtivasIDs(db *gorm.DB) ([]uint, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Listar devolve todas as empresas, ou só somenteID quando diferente de zero.
func (r *repositoryImpl) Listar(db *gorm.DB, somenteID uint, f Filtro) ([]Empresa, error) {
	q := db.Model(&Empresa{})
	if somenteID != 0 {
		q = q.Where("id = ?", somenteID)
	}
	if like := utils.PadraoLike(f.Q); like != "" {
		q = q.Where("busca LIKE ?", like)
	}
	if f.Ativo != nil {
		q = q.Where("ativo = ?", *f.Ativo)
	}
	var lista []Empresa
	err := q.Order("nome ASC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Empresa, error) {
	var e Empresa
	if err := db.First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repositoryImpl) CNPJEmUso(db *gorm.DB, cnpj string, excetoID uint) (bool, error) {
	if cnpj == "" {
		return false, nil
	}
	var n int64
	err := db.Model(&Empresa{}).Where("cnpj = ? AND id <> ?", cnpj, excetoID).Count(&n).Error
	return n > 0, err
}

func (r *repositoryImpl) Contar(db *gorm.DB) (int64, error) {
	var n int64
	err := db.Model(&Empresa{}).Count(&n).Error
	return n, err
}

func (r *repositoryImpl) Salvar(db *gorm.DB, e *Empresa) error {
	return db.Save(e).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, ids ...uint) (int64, error) {
	res := db.Delete(&Empresa{}, ids)
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) ListarAtivasIDs(db *gorm.DB) ([]uint, error) {
	var ids []uint
	err := db.Model(&Empresa{}).Where("ativo = ?", true).Pluck("id", &ids).Error
	return ids, err
}
