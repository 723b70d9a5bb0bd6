package historico

import (
	"net/http"
	"strings"

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

type CriarRegistroRequest struct {
	Texto string `json:"texto" validate:"required"`
}

// ListarNegociacao trata GET /negociacoes/{id}/historico
func (h *Handler) ListarNegociacao(w http.ResponseWriter, r *http.Request) {
	h.listar(w, r, "negociacoes", h.Repository.ListarPorNegociacao)
}

// ListarLead trata GET /leads/{id}/historico
func (h *Handler) ListarLead(w http.ResponseWriter, r *http.Request) {
	h.listar(w, r, "leads", h.Repository.ListarPorLead)
}

// CriarNegociacao trata POST /negociacoes/{id}/historico
func (h *Handler) CriarNegociacao(w http.ResponseWriter, r *http.Request) {
	h.criar(w, r, "negociacoes", ParaNegociacao)
}

// CriarLead trata POST /leads/{id}/historico
func (h *Handler) CriarLead(w http.ResponseWriter, r *http.Request) {
	h.criar(w, r, "leads", ParaLead)
}

func (h *Handler) listar(w http.ResponseWriter, r *http.Request, tabela string,
	fn func(*gorm.DB, uint, uint) ([]Registro, error)) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	if err := existe(db, tabela, id, sessao.EmpresaID); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	regs, err := fn(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ToDTOs(regs))
}

func (h *Handler) criar(w http.ResponseWriter, r *http.Request, tabela string,
	novo func(empresaID, alvoID, usuarioID uint, texto string) *Registro) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req CriarRegistroRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	req.Texto = strings.TrimSpace(req.Texto)
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	db := h.DB.WithContext(r.Context())
	if err := existe(db, tabela, id, sessao.EmpresaID); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	reg := novo(sessao.EmpresaID, id, sessao.UsuarioID, req.Texto)
	if err := h.Repository.Criar(db, reg); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	reg.AutorNome = sessao.Nome
	utils.WriteJSON(w, http.StatusCreated, toDTO(*reg))
}

// existe confere que o registro alvo pertence à empresa da sessão.
func existe(db *gorm.DB, tabela string, id, empresaID uint) error {
	var n int64
	err := db.Table(tabela).
		Where("id = ? AND empresa_id = ? AND deleted_at IS NULL", id, empresaID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		recurso := "Negociação"
		if tabela == "leads" {
			recurso = "Lead"
		}
		return &utils.ErrNaoEncontrado{Recurso: recurso}
	}
	return nil
}
