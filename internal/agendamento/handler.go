package agendamento

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/empresa"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Empresas   empresa.Repository
	Eventos    eventos.Publicador
	Local      *time.Location
	Logger     *zap.Logger

	agora func() time.Time
}

func NewHandler(db *gorm.DB, pub eventos.Publicador, loc *time.Location, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = eventos.Nop{}
	}
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Empresas:   empresa.NewRepository(),
		Eventos:    pub,
		Local:      loc,
		Logger:     logger,
		agora:      time.Now,
	}
}

func (h *Handler) publicar(ctx context.Context, tipo eventos.Tipo, a *Agendamento) {
	h.Eventos.Publicar(ctx, eventos.Evento{Tipo: tipo, EmpresaID: a.EmpresaID, Payload: a})
}

// empresaDaRequisicao: a da sessão ou, nas rotas públicas, ?empresaId=.
func empresaDaRequisicao(r *http.Request) (uint, error) {
	if s, ok := auth.SessaoDe(r.Context()); ok {
		return s.EmpresaID, nil
	}
	id := utils.UintDaQuery(r, "empresaId")
	if id == 0 {
		return 0, utils.NovoErrValidacao("empresaId é obrigatório")
	}
	return id, nil
}

// ocupados devolve os horários já tomados no dia de `dia`.
func (h *Handler) ocupados(db *gorm.DB, empresaID uint, imovelID *uint, dia time.Time, excetoID uint) ([]string, error) {
	ini := utils.InicioDoDia(dia, h.Local)
	datas, err := h.Repository.DatasOcupadas(db, empresaID, imovelID, ini, ini.AddDate(0, 0, 1), excetoID)
	if err != nil {
		return nil, err
	}
	return Ocupados(datas, h.Local), nil
}

func (h *Handler) dataDaQuery(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("data")
	if s == "" {
		return utils.InicioDoDia(h.agora(), h.Local), nil
	}
	return utils.ParseData(s, h.Local)
}

// GET /agendamentos/horarios-ocupados?data=AAAA-MM-DD&imovelId=
func (h *Handler) HorariosOcupados(w http.ResponseWriter, r *http.Request) {
	h.horarios(w, r, func(dia time.Time, ocupados []string) []string { return ocupados })
}

// GET /agendamentos/horarios-disponiveis?data=AAAA-MM-DD&imovelId=
func (h *Handler) HorariosDisponiveis(w http.ResponseWriter, r *http.Request) {
	h.horarios(w, r, func(dia time.Time, ocupados []string) []string {
		return Disponiveis(dia, ocupados, h.agora(), h.Local)
	})
}

func (h *Handler) horarios(w http.ResponseWriter, r *http.Request, montar func(time.Time, []string) []string) {
	empresaID, err := empresaDaRequisicao(r)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	dia, err := h.dataDaQuery(r)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var imovelID *uint
	if v := utils.UintDaQuery(r, "imovelId"); v != 0 {
		imovelID = &v
	}
	ocupados, err := h.ocupados(h.DB.WithContext(r.Context()), empresaID, imovelID, dia, 0)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, HorariosResponse{Data: dia.Format(utils.LayoutData), Horarios: montar(dia, ocupados)})
}

// GET /agendamentos?status=PENDENTE|CONCLUIDO|CANCELADO|TODOS
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), sessao.EmpresaID, r.URL.Query().Get("status"))
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /agendamentos/count
func (h *Handler) Contar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	desde := utils.InicioDoDia(h.agora(), h.Local)
	n, err := h.Repository.ContarPendentes(h.DB.WithContext(r.Context()), sessao.EmpresaID, desde)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// GET /agendamentos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	a, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Agendamento"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}

// reservar trava o imóvel e confere se o horário ainda está livre.
func (h *Handler) reservar(tx *gorm.DB, a *Agendamento) error {
	if err := h.Repository.TravarImovel(tx, a.EmpresaID, a.ImovelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NovoErrValidacao("imóvel não encontrado")
		}
		return err
	}
	ocupados, err := h.ocupados(tx, a.EmpresaID, &a.ImovelID, a.DataHora, a.ID)
	if err != nil {
		return err
	}
	livres := Disponiveis(a.DataHora, ocupados, h.agora(), h.Local)
	if !contem(livres, a.DataHora.In(h.Local).Format(LayoutHorario)) {
		return &utils.ErrConflito{Mensagem: "horário indisponível para visita"}
	}
	return h.Repository.Salvar(tx, a)
}

// POST /agendamentos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req AgendamentoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	quando, err := ParseDataHora(req.DataHora, h.Local)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	a := Agendamento{
		EmpresaID:         sessao.EmpresaID,
		DataHora:          quando,
		ImovelID:          req.ImovelID,
		ClienteID:         req.ClienteID,
		LeadID:            req.LeadID,
		CorretorID:        req.CorretorID,
		NomeVisitante:     req.NomeVisitante,
		TelefoneVisitante: req.TelefoneVisitante,
		Observacao:        req.Observacao,
		Status:            StatusPendente,
	}
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		return h.reservar(tx, &a)
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.publicar(r.Context(), eventos.AgendamentoCriado, &a)
	utils.WriteJSON(w, http.StatusCreated, a)
}

// POST /agendamentos/publico
func (h *Handler) CriarPublico(w http.ResponseWriter, r *http.Request) {
	var req AgendamentoPublicoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	quando, err := ParseDataHora(req.DataHora, h.Local)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	a := Agendamento{
		EmpresaID:         req.EmpresaID,
		DataHora:          quando,
		ImovelID:          req.ImovelID,
		NomeVisitante:     req.NomeVisitante,
		TelefoneVisitante: req.TelefoneVisitante,
		Observacao:        req.Observacao,
		Status:            StatusPendente,
	}
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		emp, err := h.Empresas.BuscarPorID(tx, req.EmpresaID)
		if err != nil || !emp.Ativo {
			if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NovoErrValidacao("empresa não encontrada")
			}
			return err
		}
		return h.reservar(tx, &a)
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.publicar(r.Context(), eventos.AgendamentoCriado, &a)
	h.Logger.Info("visita agendada pelo site",
		zap.Uint("empresaId", a.EmpresaID), zap.Uint("imovelId", a.ImovelID), zap.Time("dataHora", a.DataHora))
	utils.WriteJSON(w, http.StatusCreated, map[string]any{"id": a.ID, "dataHora": a.DataHora})
}

// PUT /agendamentos/{id}
// Só visitas pendentes podem ser remarcadas.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req AgendamentoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	quando, err := ParseDataHora(req.DataHora, h.Local)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var a *Agendamento
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		a, err = h.Repository.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Agendamento")
		}
		if a.Status != StatusPendente {
			return &utils.ErrConflito{Mensagem: "só agendamentos pendentes podem ser alterados"}
		}
		a.DataHora = quando
		a.ImovelID = req.ImovelID
		a.ClienteID = req.ClienteID
		a.LeadID = req.LeadID
		a.CorretorID = req.CorretorID
		a.NomeVisitante = req.NomeVisitante
		a.TelefoneVisitante = req.TelefoneVisitante
		a.Observacao = req.Observacao
		return h.reservar(tx, a)
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.publicar(r.Context(), eventos.AgendamentoAtualizado, a)
	utils.WriteJSON(w, http.StatusOK, a)
}

// DELETE /agendamentos/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Repository.Deletar(h.DB.WithContext(r.Context()), sessao.EmpresaID, id); err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Agendamento"), h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /agendamentos/{id}/status
func (h *Handler) AlterarStatus(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req StatusRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	novo := Status(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	var a *Agendamento
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		a, err = h.Repository.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Agendamento")
		}
		if err := ValidarTransicao(a.Status, novo, req.Motivo); err != nil {
			return err
		}
		a.Status = novo
		a.Motivo = strings.TrimSpace(req.Motivo)
		return h.Repository.Salvar(tx, a)
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.publicar(r.Context(), eventos.AgendamentoAtualizado, a)
	utils.WriteJSON(w, http.StatusOK, a)
}
