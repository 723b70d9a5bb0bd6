package negociacao

import (
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Negociacao, error)
	BuscarPorID(db *gorm.DB, empresaID, id uint) (*Negociacao, error)
	BuscarParaAtualizar(tx *gorm.DB, empresaID, id uint) (*Negociacao, error)
	Detalhar(db *gorm.DB, empresaID, id uint) (*Negociacao, error)
	Salvar(db *gorm.DB, n *Negociacao) error
	Deletar(db *gorm.DB, empresaID, id uint) error
	ContarPorStatus(db *gorm.DB, empresaID uint) (map[string]int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Negociacao, error) {
	cond, args, err := condicaoVisao(f.Visao)
	if err != nil {
		return nil, err
	}
	q := db.Model(&Negociacao{}).Where("negociacoes.empresa_id = ?", empresaID)
	if cond != "" {
		q = q.Where(cond, args...)
	}
	if f.Status != "" {
		q = q.Where("negociacoes.status = ?", f.Status)
	}
	if f.ClienteID != 0 {
		q = q.Where("negociacoes.cliente_id = ?", f.ClienteID)
	}
	if f.ImovelID != 0 {
		q = q.Where("negociacoes.imovel_id = ?", f.ImovelID)
	}
	if f.CorretorID != 0 {
		q = q.Where("negociacoes.corretor_id = ?", f.CorretorID)
	}
	if like := utils.PadraoLike(f.Q); like != "" {
		q = q.Joins("LEFT JOIN clientes ON clientes.id = negociacoes.cliente_id").
			Joins("LEFT JOIN imoveis ON imoveis.id = negociacoes.imovel_id").
			Where("(clientes.busca LIKE ? OR imoveis.busca LIKE ?)", like, like)
	}
	var lista []Negociacao
	err = q.Preload("Cliente").Preload("Imovel").
		Order("negociacoes.updated_at DESC").
		Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, empresaID, id uint) (*Negociacao, error) {
	var n Negociacao
	if err := db.Where("empresa_id = ?", empresaID).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// BuscarParaAtualizar trava a linha até o fim da transação.
func (r *repositoryImpl) BuscarParaAtualizar(tx *gorm.DB, empresaID, id uint) (*Negociacao, error) {
	var n Negociacao
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("empresa_id = ?", empresaID).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repositoryImpl) Detalhar(db *gorm.DB, empresaID, id uint) (*Negociacao, error) {
	var n Negociacao
	if err := db.Preload("Cliente").Preload("Imovel").
		Where("empresa_id = ?", empresaID).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, n *Negociacao) error {
	return db.Omit(clause.Associations).Save(n).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, empresaID, id uint) error {
	res := db.Where("empresa_id = ?", empresaID).Delete(&Negociacao{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repositoryImpl) ContarPorStatus(db *gorm.DB, empresaID uint) (map[string]int64, error) {
	var linhas []struct {
		Status string
		Total  int64
	}
	err := db.Model(&Negociacao{}).
		Select("status, COUNT(*) AS total").
		Where("empresa_id = ?", empresaID).
		Group("status").
		Scan(&linhas).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(linhas))
	for _, l := range linhas {
		out[l.Status] = l.Total
	}
	return out, nil
}
