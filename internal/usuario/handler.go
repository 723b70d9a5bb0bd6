package usuario

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/models"
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

// GET /usuarios?q=&perfil=&ativo=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	qs := r.URL.Query()
	f := Filtro{Q: qs.Get("q"), Perfil: models.Perfil(strings.ToUpper(qs.Get("perfil")))}
	if v, err := strconv.ParseBool(qs.Get("ativo")); err == nil {
		f.Ativo = &v
	}
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), sessao.EmpresaID, f)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /usuarios/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	u, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Usuário"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

// POST /usuarios
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req CriarUsuarioRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := podeAtribuirPerfil(sessao.Perfil, req.Perfil); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	db := h.DB.WithContext(r.Context())
	emUso, err := h.Repository.EmailEmUso(db, sessao.EmpresaID, req.Email, 0)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if emUso {
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "e-mail já cadastrado nesta empresa"}, h.Logger)
		return
	}

	senha, temporaria := req.Senha, ""
	if senha == "" {
		if senha, err = utils.GerarSenhaTemporaria(); err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
		temporaria = senha
	}
	hash, err := utils.HashSenha(senha)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	u := Usuario{
		EmpresaID: sessao.EmpresaID,
		Nome:      strings.TrimSpace(req.Nome),
		Email:     req.Email,
		Senha:     hash,
		Telefone:  req.Telefone,
		CPF:       req.CPF,
		Perfil:    req.Perfil,
		Ativo:     true,
	}
	if err := h.Repository.Salvar(db, &u); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.Logger.Info("usuário criado", zap.Uint("id", u.ID), zap.String("perfil", string(u.Perfil)), zap.Uint("por", sessao.UsuarioID))
	utils.WriteJSON(w, http.StatusCreated, UsuarioCriadoResponse{Usuario: u, SenhaTemporaria: temporaria})
}

// PUT /usuarios/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req AtualizarUsuarioRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	db := h.DB.WithContext(r.Context())
	u, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Usuário"), h.Logger)
		return
	}
	if err := aplicarAtualizacao(sessao, u, req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if req.Email != nil {
		emUso, err := h.Repository.EmailEmUso(db, sessao.EmpresaID, strings.ToLower(strings.TrimSpace(*req.Email)), u.ID)
		if err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
		if emUso {
			utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "e-mail já cadastrado nesta empresa"}, h.Logger)
			return
		}
	}
	if err := h.Repository.Salvar(db, u); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, u)
}

// DELETE /usuarios/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if id == sessao.UsuarioID {
		utils.ResponderErro(w, &utils.ErrRegraNegocio{Mensagem: "não é possível excluir o próprio usuário"}, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	u, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Usuário"), h.Logger)
		return
	}
	if err := podeGerenciar(sessao, u); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if _, err := h.Repository.Deletar(db, sessao.EmpresaID, id); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /usuarios/delete-batch {ids}
// O usuário logado nunca entra no lote.
func (h *Handler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req DeleteBatchRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	for _, id := range req.IDs {
		if id == sessao.UsuarioID {
			utils.ResponderErro(w, &utils.ErrRegraNegocio{Mensagem: "o usuário logado não pode ser excluído"}, h.Logger)
			return
		}
	}

	db := h.DB.WithContext(r.Context())
	if sessao.Perfil != models.PerfilAdmGeral {
		var admins int64
		if err := db.Model(&Usuario{}).Scopes(models.DaEmpresa(sessao.EmpresaID)).
			Where("id IN ? AND perfil = ?", req.IDs, models.PerfilAdmGeral).
			Count(&admins).Error; err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
		if admins > 0 {
			utils.ResponderErro(w, &utils.ErrProibido{Mensagem: "gerente não pode excluir ADM_GERAL"}, h.Logger)
			return
		}
	}

	n, err := h.Repository.Deletar(db, sessao.EmpresaID, req.IDs...)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"removidos": n})
}
