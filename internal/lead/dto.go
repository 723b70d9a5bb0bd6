package lead

import "github.com/imobgestor/api-imobiliaria/internal/models"

type LeadRequest struct {
	Nome      string `json:"nome" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Telefone  string `json:"telefone" validate:"omitempty,telefone"`
	Mensagem  string `json:"mensagem"`
	Origem    string `json:"origem" validate:"max=40"`
	ImovelID  *uint  `json:"imovelId"`
	ClienteID *uint  `json:"clienteId"`
}

// LeadPublicoRequest vem do site da imobiliária, sem login.
type LeadPublicoRequest struct {
	EmpresaID uint   `json:"empresaId" validate:"required"`
	Nome      string `json:"nome" validate:"required,max=150"`
	Email     string `json:"email" validate:"required_without=Telefone,omitempty,email"`
	Telefone  string `json:"telefone" validate:"required_without=Email,omitempty,telefone"`
	Mensagem  string `json:"mensagem" validate:"max=2000"`
	Origem    string `json:"origem" validate:"max=40"`
	ImovelID  *uint  `json:"imovelId"`
}

type StatusRequest struct {
	Status     Status `json:"status" validate:"required"`
	Observacao string `json:"observacao"`
}

type PromoverRequest struct {
	ClienteID   *uint              `json:"clienteId"`
	ImovelID    *uint              `json:"imovelId"`
	CorretorID  *uint              `json:"corretorId"`
	TipoNegocio models.TipoNegocio `json:"tipoNegocio" validate:"omitempty,oneof=VENDA ALUGUEL"`
}

type Filtro struct {
	Q      string
	Status string
}
