package usuario

import "github.com/imobgestor/api-imobiliaria/internal/models"

type CriarUsuarioRequest struct {
	Nome     string        `json:"nome" validate:"required,max=150"`
	Email    string        `json:"email" validate:"required,email"`
	Senha    string        `json:"senha" validate:"omitempty,min=6"`
	Telefone string        `json:"telefone" validate:"omitempty,telefone"`
	CPF      string        `json:"cpf" validate:"omitempty,cpf"`
	Perfil   models.Perfil `json:"perfil" validate:"required,oneof=ADM_GERAL GERENTE CORRETOR SUPORTE"`
}

// AtualizarUsuarioRequest é usado em PUT /usuarios/{id}; campos nil não mudam.
type AtualizarUsuarioRequest struct {
	Nome     *string        `json:"nome,omitempty" validate:"omitempty,max=150"`
	Email    *string        `json:"email,omitempty" validate:"omitempty,email"`
	Senha    *string        `json:"senha,omitempty" validate:"omitempty,min=6"`
	Telefone *string        `json:"telefone,omitempty" validate:"omitempty,telefone"`
	CPF      *string        `json:"cpf,omitempty" validate:"omitempty,cpf"`
	Perfil   *models.Perfil `json:"perfil,omitempty" validate:"omitempty,oneof=ADM_GERAL GERENTE CORRETOR SUPORTE"`
	Ativo    *bool          `json:"ativo,omitempty"`
}

type DeleteBatchRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

// UsuarioCriadoResponse devolve a senha gerada uma única vez.
type UsuarioCriadoResponse struct {
	Usuario
	SenhaTemporaria string `json:"senhaTemporaria,omitempty"`
}

type Filtro struct {
	Q      string
	Perfil models.Perfil
	Ativo  *bool
}
