package imovel

import (
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"gorm.io/gorm"
)

// Tipos de imóvel aceitos.
const (
	TipoCasa        = "CASA"
	TipoApartamento = "APARTAMENTO"
	TipoTerreno     = "TERRENO"
	TipoComercial   = "COMERCIAL"
	TipoRural       = "RURAL"
)

type Imovel struct {
	models.Base
	EmpresaID      uint                `gorm:"index;not null" json:"empresaId"`
	Titulo         string              `gorm:"size:200;not null" json:"titulo"`
	Descricao      string              `gorm:"type:text" json:"descricao"`
	Tipo           string              `gorm:"size:20;not null" json:"tipo"`
	ParaVenda      bool                `gorm:"not null" json:"paraVenda"`
	ParaAluguel    bool                `gorm:"not null" json:"paraAluguel"`
	PrecoVenda     float64             `gorm:"type:numeric(14,2);not null;default:0" json:"precoVenda"`
	PrecoAluguel   float64             `gorm:"type:numeric(14,2);not null;default:0" json:"precoAluguel"`
	Cep            string              `gorm:"size:8" json:"cep"`
	Logradouro     string              `gorm:"size:200" json:"logradouro"`
	Numero         string              `gorm:"size:20" json:"numero"`
	Complemento    string              `gorm:"size:100" json:"complemento"`
	Bairro         string              `gorm:"size:100" json:"bairro"`
	Cidade         string              `gorm:"size:100;index" json:"cidade"`
	UF             string              `gorm:"size:2" json:"uf"`
	Quartos        int                 `json:"quartos"`
	Banheiros      int                 `json:"banheiros"`
	Vagas          int                 `json:"vagas"`
	AreaM2         float64             `gorm:"type:numeric(10,2)" json:"areaM2"`
	Fotos          []string            `gorm:"serializer:json;type:jsonb" json:"fotos"`
	ProprietarioID *uint               `gorm:"index" json:"proprietarioId"`
	Status         models.StatusImovel `gorm:"size:12;not null;default:DISPONIVEL;index" json:"status"`
	Busca          string              `gorm:"type:text" json:"-"`
}

func (Imovel) TableName() string { return "imoveis" }

func (i *Imovel) BeforeSave(*gorm.DB) error {
	i.Cep = utils.SomenteDigitos(i.Cep)
	i.UF = strings.ToUpper(strings.TrimSpace(i.UF))
	if i.Status == "" {
		i.Status = models.ImovelDisponivel
	}
	if i.Fotos == nil {
		i.Fotos = []string{}
	}
	i.Busca = utils.TextoBusca(i.Titulo, i.Tipo, i.Logradouro, i.Bairro, i.Cidade, i.UF)
	return nil
}

// validarFinalidade exige venda e/ou aluguel, cada um com preço positivo.
func (i *Imovel) validarFinalidade() error {
	var msgs []string
	if !i.ParaVenda && !i.ParaAluguel {
		msgs = append(msgs, "informe se o imóvel é para venda e/ou aluguel")
	}
	if i.ParaVenda && i.PrecoVenda <= 0 {
		msgs = append(msgs, "precoVenda deve ser maior que zero")
	}
	if i.ParaAluguel && i.PrecoAluguel <= 0 {
		msgs = append(msgs, "precoAluguel deve ser maior que zero")
	}
	if len(msgs) > 0 {
		return &utils.ErrValidacao{Mensagens: msgs}
	}
	return nil
}

func (i *Imovel) removerFoto(url string) bool {
	for idx, f := range i.Fotos {
		if f == url {
			i.Fotos = append(i.Fotos[:idx:idx], i.Fotos[idx+1:]...)
			return true
		}
	}
	return false
}
