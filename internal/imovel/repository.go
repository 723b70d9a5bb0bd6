package imovel

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

type Repository interface {
	Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Imovel, error)
	BuscarPorID(db *gorm.DB, empresaID, id uint) (*Imovel, error)
	Salvar(db *gorm.DB, i *Imovel) error
	Deletar(db *gorm.DB, empresaID, id uint) error
	AtualizarStatus(db *gorm.DB, empresaID, id uint, status models.StatusImovel) error
	NegociacoesAbertas(db *gorm.DB, empresaID, id uint) (int64, error)
	Contar(db *gorm.DB, empresaID uint, status models.StatusImovel) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Imovel, error) {
	q := db.Where("empresa_id = ?", empresaID)
	if like := utils.PadraoLike(f.Q); like != "" {
		q = q.Where("busca LIKE ?", like)
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", strings.ToUpper(f.Tipo))
	}
	if f.Status != "" {
		q = q.Where("status = ?", strings.ToUpper(f.Status))
	}
	switch strings.ToUpper(f.Finalidade) {
	case string(models.TipoVenda):
		q = q.Where("para_venda = ?", true)
	case string(models.TipoAluguel):
		q = q.Where("para_aluguel = ?", true)
	}
	if c := utils.NormalizarBusca(f.Cidade); c != "" {
		q = q.Where("LOWER(cidade) = ?", c)
	}
	var lista []Imovel
	err := q.Order("created_at DESC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, empresaID, id uint) (*Imovel, error) {
	var i Imovel
	if err := db.Where("empresa_id = ?", empresaID).First(&i, id).Error; err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, i *Imovel) error {
	return db.Save(i).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, empresaID, id uint) error {
	res := db.Where("empresa_id = ?", empresaID).Delete(&Imovel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AtualizarStatus é usado no fechamento (VENDIDO/ALUGADO).
func (r *repositoryImpl) AtualizarStatus(db *gorm.DB, empresaID, id uint, status models.StatusImovel) error {
	res := db.Model(&Imovel{}).
		Where("empresa_id = ? AND id = ?", empresaID, id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) NegociacoesAbertas(db *gorm.DB, empresaID, id uint) (int64, error) {
	var n int64
	err := db.Table("negociacoes").
		Where("empresa_id = ? AND imovel_id = ? AND status IN ? AND deleted_at IS NULL",
			empresaID, id, []string{"PROSPECCAO", "VISITA", "PROPOSTA"}).
		Count(&n).Error
	return n, err
}

func (r *repositoryImpl) Contar(db *gorm.DB, empresaID uint, status models.StatusImovel) (int64, error) {
	var n int64
	q := db.Model(&Imovel{}).Where("empresa_id = ?", empresaID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}
