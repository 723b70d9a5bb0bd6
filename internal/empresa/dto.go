package empresa

type EmpresaRequest struct {
	Nome     string `json:"nome" validate:"required,max=150"`
	CNPJ     string `json:"cnpj" validate:"omitempty,cnpj"`
	Email    string `json:"email" validate:"omitempty,email"`
	Telefone string `json:"telefone" validate:"omitempty,telefone"`
	IsAdmin  *bool  `json:"isAdmin,omitempty"`
	Ativo    *bool  `json:"ativo,omitempty"`
}

type MasterUsuarioRequest struct {
	Nome     string `json:"nome" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Senha    string `json:"senha" validate:"required,min=6"`
	Telefone string `json:"telefone" validate:"omitempty,telefone"`
	CPF      string `json:"cpf" validate:"omitempty,cpf"`
}

// RegisterMasterRequest é o corpo de POST /auth/register-master.
type RegisterMasterRequest struct {
	Empresa EmpresaRequest       `json:"empresa" validate:"required"`
	Usuario MasterUsuarioRequest `json:"usuario" validate:"required"`
}

type RegisterMasterResponse struct {
	Empresa   Empresa `json:"empresa"`
	UsuarioID uint    `json:"usuarioId"`
	Email     string  `json:"email"`
}

type DeleteBatchRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1"`
}

type Filtro struct {
	Q     string
	Ativo *bool
}
