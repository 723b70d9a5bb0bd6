package agendamento

type AgendamentoRequest struct {
	DataHora          string `json:"dataHora" validate:"required"`
	ImovelID          uint   `json:"imovelId" validate:"required"`
	ClienteID         *uint  `json:"clienteId"`
	LeadID            *uint  `json:"leadId"`
	CorretorID        *uint  `json:"corretorId"`
	NomeVisitante     string `json:"nomeVisitante" validate:"max=150"`
	TelefoneVisitante string `json:"telefoneVisitante" validate:"omitempty,telefone"`
	Observacao        string `json:"observacao"`
}

// AgendamentoPublicoRequest é o pedido de visita feito pelo site.
type AgendamentoPublicoRequest struct {
	EmpresaID         uint   `json:"empresaId" validate:"required"`
	ImovelID          uint   `json:"imovelId" validate:"required"`
	DataHora          string `json:"dataHora" validate:"required"`
	NomeVisitante     string `json:"nomeVisitante" validate:"required,max=150"`
	TelefoneVisitante string `json:"telefoneVisitante" validate:"required,telefone"`
	Observacao        string `json:"observacao" validate:"max=2000"`
}

type StatusRequest struct {
	Status Status `json:"status" validate:"required"`
	Motivo string `json:"motivo"`
}

type HorariosResponse struct {
	Data     string   `json:"data"`
	Horarios []string `json:"horarios"`
}
