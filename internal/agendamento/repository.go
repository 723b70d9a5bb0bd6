package agendamento

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Listar(db *gorm.DB, empresaID uint, status string) ([]Agendamento, error)
	BuscarPorID(db *gorm.DB, empresaID, id uint) (*Agendamento, error)
	BuscarParaAtualizar(tx *gorm.DB, empresaID, id uint) (*Agendamento, error)
	Salvar(db *gorm.DB, a *Agendamento) error
	Deletar(db *gorm.DB, empresaID, id uint) error
	TravarImovel(tx *gorm.DB, empresaID, imovelID uint) error
	DatasOcupadas(db *gorm.DB, empresaID uint, imovelID *uint, ini, fim time.Time, excetoID uint) ([]time.Time, error)
	ContarPendentes(db *gorm.DB, empresaID uint, desde time.Time) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Listar(db *gorm.DB, empresaID uint, status string) ([]Agendamento, error) {
	q := db.Where("empresa_id = ?", empresaID)
	if status != "" && !strings.EqualFold(status, "TODOS") {
		q = q.Where("status = ?", strings.ToUpper(status))
	}
	var lista []Agendamento
	err := q.Preload("Imovel").Order("data_hora ASC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, empresaID, id uint) (*Agendamento, error) {
	var a Agendamento
	if err := db.Where("empresa_id = ?", empresaID).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repositoryImpl) BuscarParaAtualizar(tx *gorm.DB, empresaID, id uint) (*Agendamento, error) {
	var a Agendamento
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("empresa_id = ?", empresaID).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, a *Agendamento) error {
	return db.Omit(clause.Associations).Save(a).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, empresaID, id uint) error {
	res := db.Where("empresa_id = ?", empresaID).Delete(&Agendamento{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TravarImovel serializa agendamentos concorrentes do mesmo imóvel.
func (r *repositoryImpl) TravarImovel(tx *gorm.DB, empresaID, imovelID uint) error {
	var ids []uint
	err := tx.Table("imoveis").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND empresa_id = ? AND deleted_at IS NULL", imovelID, empresaID).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DatasOcupadas traz as visitas PENDENTE em [ini, fim).
func (r *repositoryImpl) DatasOcupadas(db *gorm.DB, empresaID uint, imovelID *uint, ini, fim time.Time, excetoID uint) ([]time.Time, error) {
	q := db.Model(&Agendamento{}).
		Where("empresa_id = ? AND status = ? AND data_hora >= ? AND data_hora < ?", empresaID, StatusPendente, ini, fim)
	if imovelID != nil {
		q = q.Where("imovel_id = ?", *imovelID)
	}
	if excetoID != 0 {
		q = q.Where("id <> ?", excetoID)
	}
	var datas []time.Time
	err := q.Order("data_hora ASC").Pluck("data_hora", &datas).Error
	return datas, err
}

func (r *repositoryImpl) ContarPendentes(db *gorm.DB, empresaID uint, desde time.Time) (int64, error) {
	var n int64
	err := db.Model(&Agendamento{}).
		Where("empresa_id = ? AND status = ? AND data_hora >= ?", empresaID, StatusPendente, desde).
		Count(&n).Error
	return n, err
}
