package historico

import "time"

// Registro é uma anotação do histórico de uma negociação ou de um lead.
// Só é criado; nunca alterado nem removido pela API.
type Registro struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	EmpresaID    uint      `gorm:"index;not null" json:"-"`
	NegociacaoID *uint     `gorm:"index" json:"negociacaoId,omitempty"`
	LeadID       *uint     `gorm:"index" json:"leadId,omitempty"`
	Texto        string    `gorm:"type:text;not null" json:"texto"`
	UsuarioID    *uint     `json:"usuarioId,omitempty"`
	Sistema      bool      `gorm:"default:false" json:"sistema"`

	AutorNome string `gorm:"->;-:migration" json:"-"`
}

func (Registro) TableName() string { return "historicos" }

// ParaNegociacao monta um registro escrito pelo usuário (usuarioID 0 = sistema).
func ParaNegociacao(empresaID, negociacaoID, usuarioID uint, texto string) *Registro {
	r := &Registro{EmpresaID: empresaID, NegociacaoID: &negociacaoID, Texto: texto}
	r.autor(usuarioID)
	return r
}

func ParaLead(empresaID, leadID, usuarioID uint, texto string) *Registro {
	r := &Registro{EmpresaID: empresaID, LeadID: &leadID, Texto: texto}
	r.autor(usuarioID)
	return r
}

func (r *Registro) autor(usuarioID uint) {
	if usuarioID == 0 {
		r.Sistema = true
		return
	}
	r.UsuarioID = &usuarioID
}
