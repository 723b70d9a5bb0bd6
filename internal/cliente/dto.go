package cliente

type ClienteRequest struct {
	Nome        string `json:"nome" validate:"required,max=150"`
	CPF         string `json:"cpf" validate:"omitempty,cpf"`
	Email       string `json:"email" validate:"omitempty,email"`
	Telefone    string `json:"telefone" validate:"omitempty,telefone"`
	Endereco    string `json:"endereco" validate:"max=300"`
	Status      string `json:"status" validate:"omitempty,oneof=ATIVO INATIVO"`
	Observacoes string `json:"observacoes"`
}

func (req ClienteRequest) aplicar(c *Cliente) {
	c.Nome = req.Nome
	c.CPF = req.CPF
	c.Email = req.Email
	c.Telefone = req.Telefone
	c.Endereco = req.Endereco
	c.Observacoes = req.Observacoes
	if req.Status != "" {
		c.Status = req.Status
	}
}

type Filtro struct {
	Q      string
	Status string
}
