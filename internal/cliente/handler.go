package cliente

import (
	"net/http"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Logger     *zap.Logger
}

func NewHandler(db *gorm.DB, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Logger: logger}
}

// GET /clientes?q=&status=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	f := Filtro{Q: r.URL.Query().Get("q"), Status: r.URL.Query().Get("status")}
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), sessao.EmpresaID, f)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /clientes/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	c, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Cliente"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// POST /clientes
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req ClienteRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	c := Cliente{EmpresaID: sessao.EmpresaID}
	req.aplicar(&c)
	if err := h.Repository.Salvar(h.DB.WithContext(r.Context()), &c); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, c)
}

// PUT /clientes/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req ClienteRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	c, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Cliente"), h.Logger)
		return
	}
	req.aplicar(c)
	if err := h.Repository.Salvar(db, c); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

// DELETE /clientes/{id}
// Cliente com negociação em andamento não pode ser excluído.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	abertas, err := h.Repository.NegociacoesAbertas(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if abertas > 0 {
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "cliente possui negociações em andamento"}, h.Logger)
		return
	}
	if err := h.Repository.Deletar(db, sessao.EmpresaID, id); err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Cliente"), h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
