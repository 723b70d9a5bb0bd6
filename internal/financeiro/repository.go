package financeiro

import (
	"strings"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Transacao, error)
	BuscarPorID(db *gorm.DB, empresaID, id uint) (*Transacao, error)
	BuscarPorCodigo(db *gorm.DB, codigo string) (*Transacao, error)
	Salvar(db *gorm.DB, t *Transacao) error
	Deletar(db *gorm.DB, empresaID, id uint) error
	CriarFechamento(db *gorm.DB, f *Fechamento) error
	Somar(db *gorm.DB, empresaID uint, tipo models.TipoTransacao, status []models.StatusTransacao, campoData string, inicio, fim time.Time) (decimal.Decimal, error)
	MarcarAtrasadas(db *gorm.DB, hoje time.Time) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Transacao, error) {
	q := db.Where("empresa_id = ?", empresaID)
	if f.Tipo != "" {
		q = q.Where("tipo = ?", strings.ToUpper(f.Tipo))
	}
	if f.Status != "" {
		q = q.Where("status = ?", strings.ToUpper(f.Status))
	}
	if like := utils.PadraoLike(f.Q); like != "" {
		q = q.Where("busca LIKE ?", like)
	}
	if f.Inicio != nil {
		q = q.Where("data_vencimento >= ?", *f.Inicio)
	}
	if f.Fim != nil {
		q = q.Where("data_vencimento < ?", *f.Fim)
	}
	if f.NegociacaoID != 0 {
		q = q.Where("negociacao_id = ?", f.NegociacaoID)
	}
	var lista []Transacao
	err := q.Order("data_vencimento ASC, id ASC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, empresaID, id uint) (*Transacao, error) {
	var t Transacao
	if err := db.Where("empresa_id = ?", empresaID).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repositoryImpl) BuscarPorCodigo(db *gorm.DB, codigo string) (*Transacao, error) {
	var t Transacao
	if err := db.Where("codigo_validacao = ?", codigo).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, t *Transacao) error {
	return db.Save(t).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, empresaID, id uint) error {
	res := db.Where("empresa_id = ?", empresaID).Delete(&Transacao{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CriarFechamento grava o fechamento junto com as transações associadas.
func (r *repositoryImpl) CriarFechamento(db *gorm.DB, f *Fechamento) error {
	return db.Create(f).Error
}

// Somar totaliza valor das linhas do tipo/status com campoData em [inicio, fim).
func (r *repositoryImpl) Somar(db *gorm.DB, empresaID uint, tipo models.TipoTransacao, status []models.StatusTransacao, campoData string, inicio, fim time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := db.Model(&Transacao{}).
		Select("COALESCE(SUM(valor), 0)").
		Where("empresa_id = ? AND tipo = ? AND status IN ?", empresaID, tipo, status).
		Where(campoData+" >= ? AND "+campoData+" < ?", inicio, fim).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// MarcarAtrasadas passa para ATRASADO as linhas pendentes vencidas antes de hoje, em todas as empresas.
func (r *repositoryImpl) MarcarAtrasadas(db *gorm.DB, hoje time.Time) (int64, error) {
	res := db.Model(&Transacao{}).
		Where("status = ? AND data_vencimento < ?", models.TransacaoPendente, hoje).
		Update("status", models.TransacaoAtrasado)
	return res.RowsAffected, res.Error
}
