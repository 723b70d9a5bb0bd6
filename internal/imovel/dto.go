package imovel

import "github.com/imobgestor/api-imobiliaria/internal/models"

type ImovelRequest struct {
	Titulo         string              `json:"titulo" validate:"required,max=200"`
	Descricao      string              `json:"descricao"`
	Tipo           string              `json:"tipo" validate:"required,oneof=CASA APARTAMENTO TERRENO COMERCIAL RURAL"`
	ParaVenda      bool                `json:"paraVenda"`
	ParaAluguel    bool                `json:"paraAluguel"`
	PrecoVenda     float64             `json:"precoVenda" validate:"gte=0"`
	PrecoAluguel   float64             `json:"precoAluguel" validate:"gte=0"`
	Cep            string              `json:"cep"`
	Logradouro     string              `json:"logradouro" validate:"max=200"`
	Numero         string              `json:"numero" validate:"max=20"`
	Complemento    string              `json:"complemento" validate:"max=100"`
	Bairro         string              `json:"bairro" validate:"max=100"`
	Cidade         string              `json:"cidade" validate:"max=100"`
	UF             string              `json:"uf" validate:"omitempty,len=2"`
	Quartos        int                 `json:"quartos" validate:"gte=0"`
	Banheiros      int                 `json:"banheiros" validate:"gte=0"`
	Vagas          int                 `json:"vagas" validate:"gte=0"`
	AreaM2         float64             `json:"areaM2" validate:"gte=0"`
	ProprietarioID *uint               `json:"proprietarioId"`
	Status         models.StatusImovel `json:"status" validate:"omitempty,oneof=DISPONIVEL RESERVADO VENDIDO ALUGADO INATIVO"`
}

func (req ImovelRequest) aplicar(i *Imovel) {
	i.Titulo = req.Titulo
	i.Descricao = req.Descricao
	i.Tipo = req.Tipo
	i.ParaVenda = req.ParaVenda
	i.ParaAluguel = req.ParaAluguel
	i.PrecoVenda = req.PrecoVenda
	i.PrecoAluguel = req.PrecoAluguel
	i.Cep = req.Cep
	i.Logradouro = req.Logradouro
	i.Numero = req.Numero
	i.Complemento = req.Complemento
	i.Bairro = req.Bairro
	i.Cidade = req.Cidade
	i.UF = req.UF
	i.Quartos = req.Quartos
	i.Banheiros = req.Banheiros
	i.Vagas = req.Vagas
	i.AreaM2 = req.AreaM2
	i.ProprietarioID = req.ProprietarioID
	if req.Status != "" {
		i.Status = req.Status
	}
}

// Filtro da listagem; Finalidade é VENDA ou ALUGUEL.
type Filtro struct {
	Q          string
	Tipo       string
	Status     string
	Finalidade string
	Cidade     string
}

// FalhaUpload descreve um arquivo que não foi gravado.
type FalhaUpload struct {
	Arquivo string `json:"arquivo"`
	Erro    string `json:"erro"`
}

type UploadResponse struct {
	Imovel         *Imovel       `json:"imovel"`
	Enviados       []string      `json:"enviados"`
	Falhas         []FalhaUpload `json:"falhas"`
	NaoProcessados []string      `json:"naoProcessados"`
}
