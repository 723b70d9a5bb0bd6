package historico

import "time"

type AutorDTO struct {
	Tipo string `json:"tipo"` // "usuario" | "sistema"
	ID   *uint  `json:"id,omitempty"`
	Nome string `json:"nome"`
}

type RegistroDTO struct {
	ID           uint      `json:"id"`
	NegociacaoID *uint     `json:"negociacaoId,omitempty"`
	LeadID       *uint     `json:"leadId,omitempty"`
	Texto        string    `json:"texto"`
	Sistema      bool      `json:"sistema"`
	CreatedAt    time.Time `json:"createdAt"`
	Autor        AutorDTO  `json:"autor"`
}

func toDTO(r Registro) RegistroDTO {
	out := RegistroDTO{
		ID:           r.ID,
		NegociacaoID: r.NegociacaoID,
		LeadID:       r.LeadID,
		Texto:        r.Texto,
		Sistema:      r.Sistema,
		CreatedAt:    r.CreatedAt,
	}
	switch {
	case r.Sistema || r.UsuarioID == nil:
		out.Autor = AutorDTO{Tipo: "sistema", Nome: "Sistema"}
	default:
		nome := r.AutorNome
		if nome == "" {
			nome = "Usuário"
		}
		out.Autor = AutorDTO{Tipo: "usuario", ID: r.UsuarioID, Nome: nome}
	}
	return out
}

func ToDTOs(list []Registro) []RegistroDTO {
	out := make([]RegistroDTO, 0, len(list))
	for _, r := range list {
		out = append(out, toDTO(r))
	}
	return out
}
