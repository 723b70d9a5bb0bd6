package negociacao

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/historico"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/usuario"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Clientes   cliente.Repository
	Imoveis    imovel.Repository
	Usuarios   usuario.Repository
	Historico  historico.Repository
	Service    *Service
	Logger     *zap.Logger
}

func NewHandler(db *gorm.DB, pub eventos.Publicador, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	svc := NewService(db, pub, metrics, logger)
	return &Handler{
		DB:         db,
		Repository: svc.Repository,
		Clientes:   cliente.NewRepository(),
		Imoveis:    svc.Imoveis,
		Usuarios:   usuario.NewRepository(),
		Historico:  svc.Historico,
		Service:    svc,
		Logger:     logger,
	}
}

// GET /negociacoes?filtro=TODOS|CANCELADOS|TODOS_COM_CANCELADOS&status=&q=&clienteId=&imovelId=&corretorId=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	q := r.URL.Query()
	f := Filtro{
		Visao:      q.Get("filtro"),
		Status:     strings.ToUpper(q.Get("status")),
		Q:          q.Get("q"),
		ClienteID:  utils.UintDaQuery(r, "clienteId"),
		ImovelID:   utils.UintDaQuery(r, "imovelId"),
		CorretorID: utils.UintDaQuery(r, "corretorId"),
	}
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), sessao.EmpresaID, f)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /negociacoes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	n, err := h.Repository.Detalhar(h.DB.WithContext(r.Context()), sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Negociação"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, n)
}

// validarVinculos confere cliente, imóvel e corretor na empresa da sessão.
func (h *Handler) validarVinculos(db *gorm.DB, empresaID uint, req NegociacaoRequest) error {
	if _, err := h.Clientes.BuscarPorID(db, empresaID, req.ClienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NovoErrValidacao("cliente não encontrado")
		}
		return err
	}
	im, err := h.Imoveis.BuscarPorID(db, empresaID, req.ImovelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NovoErrValidacao("imóvel não encontrado")
		}
		return err
	}
	if err := ValidarImovel(im, req.TipoNegocio); err != nil {
		return err
	}
	return ValidarCorretor(db, h.Usuarios, empresaID, req.CorretorID)
}

// POST /negociacoes
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req NegociacaoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	n := Negociacao{
		EmpresaID:     sessao.EmpresaID,
		ClienteID:     req.ClienteID,
		ImovelID:      req.ImovelID,
		CorretorID:    req.CorretorID,
		TipoNegocio:   req.TipoNegocio,
		Status:        models.StatusProspeccao,
		ValorProposta: req.ValorProposta,
		Observacoes:   req.Observacoes,
	}
	if n.CorretorID == nil && sessao.Perfil == models.PerfilCorretor {
		uid := sessao.UsuarioID
		n.CorretorID = &uid
	}
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := h.validarVinculos(tx, sessao.EmpresaID, req); err != nil {
			return err
		}
		if err := h.Repository.Salvar(tx, &n); err != nil {
			return err
		}
		return h.Historico.Criar(tx, historico.ParaNegociacao(sessao.EmpresaID, n.ID, sessao.UsuarioID, "Negociação criada"))
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, n)
}

// PUT /negociacoes/{id}
// Só negociações em andamento aceitam edição; status muda pelo PATCH.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req NegociacaoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var n *Negociacao
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = h.Repository.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Negociação")
		}
		if !n.Status.Aberto() {
			return &utils.ErrConflito{Mensagem: fmt.Sprintf("negociação %s não pode ser editada", n.Status)}
		}
		if err := h.validarVinculos(tx, sessao.EmpresaID, req); err != nil {
			return err
		}
		n.ClienteID = req.ClienteID
		n.ImovelID = req.ImovelID
		if req.CorretorID != nil {
			n.CorretorID = req.CorretorID
		}
		n.TipoNegocio = req.TipoNegocio
		n.ValorProposta = req.ValorProposta
		n.Observacoes = req.Observacoes
		return h.Repository.Salvar(tx, n)
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, n)
}

// DELETE /negociacoes/{id}
// Negociação fechada tem lançamentos financeiros: só sai pelo estorno.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	n, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Negociação"), h.Logger)
		return
	}
	if n.Status == models.StatusFechado {
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: fmt.Sprintf(
			"negociação fechada não pode ser excluída; use o estorno em POST /negociacoes/%d/refazer", id)}, h.Logger)
		return
	}
	if err := h.Repository.Deletar(db, sessao.EmpresaID, id); err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Negociação"), h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /negociacoes/{id}/status
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
	n, err := h.Service.AlterarStatus(r.Context(), sessao, id, req)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, n)
}

// POST /negociacoes/{id}/refazer
func (h *Handler) Refazer(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req RefazerRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	resp, err := h.Service.Estornar(r.Context(), sessao, id, req.Motivo)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
