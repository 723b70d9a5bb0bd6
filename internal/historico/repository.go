package historico

import "gorm.io/gorm"

type Repository interface {
	Criar(db *gorm.DB, r *Registro) error
	ListarPorNegociacao(db *gorm.DB, empresaID, negociacaoID uint) ([]Registro, error)
	ListarPorLead(db *gorm.DB, empresaID, leadID uint) ([]Registro, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, reg *Registro) error {
	return db.Create(reg).Error
}

func (r *repositoryImpl) ListarPorNegociacao(db *gorm.DB, empresaID, negociacaoID uint) ([]Registro, error) {
	return r.listar(db, "historicos.empresa_id = ? AND historicos.negociacao_id = ?", empresaID, negociacaoID)
}

func (r *repositoryImpl) ListarPorLead(db *gorm.DB, empresaID, leadID uint) ([]Registro, error) {
	return r.listar(db, "historicos.empresa_id = ? AND historicos.lead_id = ?", empresaID, leadID)
}

// listar devolve em ordem cronológica, com o nome do autor.
func (r *repositoryImpl) listar(db *gorm.DB, where string, args ...any) ([]Registro, error) {
	var regs []Registro
	err := db.Model(&Registro{}).
		Select("historicos.*, usuarios.nome AS autor_nome").
		Joins("LEFT JOIN usuarios ON usuarios.id = historicos.usuario_id").
		Where(where, args...).
		Order("historicos.created_at ASC, historicos.id ASC").
		Find(&regs).Error
	return regs, err
}
