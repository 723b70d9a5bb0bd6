package negociacao

import (
	"errors"
	"fmt"

	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/usuario"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

// ValidarImovel confere se o imóvel aceita uma negociação do tipo informado.
// Vendido ou inativo não recebe novas negociações.
func ValidarImovel(im *imovel.Imovel, tipo models.TipoNegocio) error {
	if im.Status == models.ImovelInativo || im.Status == models.ImovelVendido {
		return &utils.ErrRegraNegocio{Mensagem: fmt.Sprintf("imóvel %s não aceita novas negociações", im.Status)}
	}
	if tipo == models.TipoVenda && !im.ParaVenda {
		return &utils.ErrRegraNegocio{Mensagem: "imóvel não está à venda"}
	}
	if tipo == models.TipoAluguel && !im.ParaAluguel {
		return &utils.ErrRegraNegocio{Mensagem: "imóvel não está para aluguel"}
	}
	return nil
}

// ValidarCorretor exige um usuário ativo da empresa. Sem corretor não há o que conferir.
func ValidarCorretor(db *gorm.DB, usuarios usuario.Repository, empresaID uint, corretorID *uint) error {
	if corretorID == nil {
		return nil
	}
	u, err := usuarios.BuscarPorID(db, empresaID, *corretorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NovoErrValidacao("corretor não encontrado")
		}
		return err
	}
	if !u.Ativo {
		return utils.NovoErrValidacao("corretor inativo")
	}
	return nil
}
