package lead

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Lead, error)
	BuscarPorID(db *gorm.DB, empresaID, id uint) (*Lead, error)
	BuscarParaAtualizar(tx *gorm.DB, empresaID, id uint) (*Lead, error)
	Salvar(db *gorm.DB, l *Lead) error
	Deletar(db *gorm.DB, empresaID, id uint) error
	ContarNovos(db *gorm.DB, empresaID uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Lead, error) {
	q := db.Where("empresa_id = ?", empresaID)
	if like := utils.PadraoLike(f.Q); like != "" {
		q = q.Where("busca LIKE ?", like)
	}
	if f.Status != "" && !strings.EqualFold(f.Status, "TODOS") {
		q = q.Where("status = ?", strings.ToUpper(f.Status))
	}
	var lista []Lead
	err := q.Order("created_at DESC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, empresaID, id uint) (*Lead, error) {
	var l Lead
	if err := db.Where("empresa_id = ?", empresaID).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repositoryImpl) BuscarParaAtualizar(tx *gorm.DB, empresaID, id uint) (*Lead, error) {
	var l Lead
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("empresa_id = ?", empresaID).First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, l *Lead) error {
	return db.Save(l).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, empresaID, id uint) error {
	res := db.Where("empresa_id = ?", empresaID).Delete(&Lead{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) ContarNovos(db *gorm.DB, empresaID uint) (int64, error) {
	var n int64
	err := db.Model(&Lead{}).Where("empresa_id = ? AND status = ?", empresaID, StatusNovo).Count(&n).Error
	return n, err
}
