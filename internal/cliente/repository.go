package cliente

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

type Repository interface {
	Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Cliente, error)
	BuscarPorID(db *gorm.DB, empresaID, id uint) (*Cliente, error)
	Salvar(db *gorm.DB, c *Cliente) error
	Deletar(db *gorm.DB, empresaID, id uint) error
	NegociacoesAbertas(db *gorm.DB, empresaID, id uint) (int64, error)
	Contar(db *gorm.DB, empresaID uint, status string) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Listar(db *gorm.DB, empresaID uint, f Filtro) ([]Cliente, error) {
	q := db.Where("empresa_id = ?", empresaID)
	if like := utils.PadraoLike(f.Q); like != "" {
		q = q.Where("busca LIKE ?", like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", strings.ToUpper(f.Status))
	}
	var lista []Cliente
	err := q.Order("nome ASC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, empresaID, id uint) (*Cliente, error) {
	var c Cliente
	if err := db.Where("empresa_id = ?", empresaID).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Cliente) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, empresaID, id uint) error {
	res := db.Where("empresa_id = ?", empresaID).Delete(&Cliente{}, id)
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
		Where("empresa_id = ? AND cliente_id = ? AND status IN ? AND deleted_at IS NULL",
			empresaID, id, []string{"PROSPECCAO", "VISITA", "PROPOSTA"}).
		Count(&n).Error
	return n, err
}

func (r *repositoryImpl) Contar(db *gorm.DB, empresaID uint, status string) (int64, error) {
	var n int64
	q := db.Model(&Cliente{}).Where("empresa_id = ?", empresaID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

// ResolverPorContato devolve o cliente da empresa com o mesmo e-mail ou
// telefone, ou cria um novo com os dados de contato.
func ResolverPorContato(tx *gorm.DB, empresaID uint, nome, email, telefone string) (*Cliente, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	telefone = utils.SomenteDigitos(telefone)

	if email != "" || telefone != "" {
		q := tx.Where("empresa_id = ?", empresaID)
		switch {
		case email != "" && telefone != "":
			q = q.Where("email = ? OR telefone = ?", email, telefone)
		case email != "":
			q = q.Where("email = ?", email)
		default:
			q = q.Where("telefone = ?", telefone)
		}
		var existentes []Cliente
		if err := q.Order("id ASC").Limit(1).Find(&existentes).Error; err != nil {
			return nil, err
		}
		if len(existentes) > 0 {
			return &existentes[0], nil
		}
	}

	c := &Cliente{EmpresaID: empresaID, Nome: strings.TrimSpace(nome), Email: email, Telefone: telefone, Status: StatusAtivo}
	if err := tx.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}
