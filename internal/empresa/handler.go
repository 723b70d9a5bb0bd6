package empresa

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/configuracao"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/storage"
	"github.com/imobgestor/api-imobiliaria/internal/usuario"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Storage    storage.Storage
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

func NewHandler(db *gorm.DB, st storage.Storage, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Storage: st, Metrics: metrics, Logger: logger}
}

// visivel: sessão de empresa admin vê todas; as demais só a própria.
func visivel(s auth.Sessao, empresaID uint) error {
	if s.EmpresaAdmin || s.EmpresaID == empresaID {
		return nil
	}
	return &utils.ErrNaoEncontrado{Recurso: "Empresa"}
}

func exigirAdmin(s auth.Sessao) error {
	if !s.EmpresaAdmin || s.Perfil != models.PerfilAdmGeral {
		return &utils.ErrProibido{Mensagem: "apenas administradores gerais da empresa principal"}
	}
	return nil
}

// GET /empresas?q=&ativo=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	f := Filtro{Q: r.URL.Query().Get("q")}
	if v, err := strconv.ParseBool(r.URL.Query().Get("ativo")); err == nil {
		f.Ativo = &v
	}
	somente := sessao.EmpresaID
	if sessao.EmpresaAdmin {
		somente = 0
	}
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), somente, f)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /empresas/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := visivel(sessao, id); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	e, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Empresa"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

// POST /empresas
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	if err := exigirAdmin(sessao); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req EmpresaRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	e := novaEmpresa(req)
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := h.verificarCNPJ(tx, e.CNPJ, 0); err != nil {
			return err
		}
		if err := h.Repository.Salvar(tx, &e); err != nil {
			return err
		}
		return configuracao.CriarPadrao(tx, e.ID)
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.Logger.Info("empresa criada", zap.Uint("id", e.ID), zap.Uint("por", sessao.UsuarioID))
	utils.WriteJSON(w, http.StatusCreated, e)
}

// PUT /empresas/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := visivel(sessao, id); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if sessao.Perfil != models.PerfilAdmGeral {
		utils.ResponderErro(w, &utils.ErrProibido{Mensagem: "apenas ADM_GERAL altera a empresa"}, h.Logger)
		return
	}
	var req EmpresaRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	db := h.DB.WithContext(r.Context())
	e, err := h.Repository.BuscarPorID(db, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Empresa"), h.Logger)
		return
	}
	e.Nome = strings.TrimSpace(req.Nome)
	e.CNPJ = utils.SomenteDigitos(req.CNPJ)
	e.Email = strings.TrimSpace(req.Email)
	e.Telefone = req.Telefone
	if req.Ativo != nil {
		if !*req.Ativo && id == sessao.EmpresaID {
			utils.ResponderErro(w, &utils.ErrRegraNegocio{Mensagem: "não é possível desativar a própria empresa"}, h.Logger)
			return
		}
		e.Ativo = *req.Ativo
	}
	if req.IsAdmin != nil && *req.IsAdmin != e.IsAdmin {
		if err := exigirAdmin(sessao); err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
		e.IsAdmin = *req.IsAdmin
	}
	if err := h.verificarCNPJ(db, e.CNPJ, e.ID); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Repository.Salvar(db, e); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

// DELETE /empresas/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.deletar(w, r, sessao, []uint{id})
}

// POST /empresas/delete-batch {ids}
// A empresa da sessão nunca entra no lote.
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
	h.deletar(w, r, sessao, req.IDs)
}

func (h *Handler) deletar(w http.ResponseWriter, r *http.Request, sessao auth.Sessao, ids []uint) {
	if err := exigirAdmin(sessao); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	for _, id := range ids {
		if id == sessao.EmpresaID {
			utils.ResponderErro(w, &utils.ErrRegraNegocio{Mensagem: "a empresa da sessão não pode ser excluída"}, h.Logger)
			return
		}
	}
	n, err := h.Repository.Deletar(h.DB.WithContext(r.Context()), ids...)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.Logger.Info("empresas excluídas", zap.Uints("ids", ids), zap.Int64("removidas", n), zap.Uint("por", sessao.UsuarioID))
	if len(ids) == 1 {
		if n == 0 {
			utils.ResponderErro(w, &utils.ErrNaoEncontrado{Recurso: "Empresa"}, h.Logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"removidos": n})
}

// POST /empresas/{id}/logo
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "logo", func(e *Empresa, url string) string {
		antiga := e.LogoURL
		e.LogoURL = url
		return antiga
	})
}

// POST /empresas/{id}/assinatura
func (h *Handler) UploadAssinatura(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "assinatura", func(e *Empresa, url string) string {
		antiga := e.AssinaturaURL
		e.AssinaturaURL = url
		return antiga
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, tipo string, aplicar func(*Empresa, string) string) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := visivel(sessao, id); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	e, err := h.Repository.BuscarPorID(db, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Empresa"), h.Logger)
		return
	}

	arquivos, err := storage.ArquivosDoForm(w, r, "arquivo")
	if err != nil {
		utils.ResponderErro(w, &utils.ErrValidacao{Mensagens: []string{err.Error()}}, h.Logger)
		return
	}
	fh := arquivos[0]
	f, err := fh.Open()
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	defer f.Close()

	url, err := h.Storage.Salvar(r.Context(), "empresas/"+strconv.FormatUint(uint64(id), 10), fh.Filename, f)
	if err != nil {
		h.Metrics.IncUpload(tipo, "erro")
		if errors.Is(err, storage.ErrExtensao) {
			utils.ResponderErro(w, &utils.ErrValidacao{Mensagens: []string{err.Error()}}, h.Logger)
			return
		}
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.Metrics.IncUpload(tipo, "ok")

	antiga := aplicar(e, url)
	if err := h.Repository.Salvar(db, e); err != nil {
		_ = h.Storage.Remover(r.Context(), url)
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if antiga != "" {
		if err := h.Storage.Remover(r.Context(), antiga); err != nil {
			h.Logger.Warn("remover arquivo antigo", zap.String("url", antiga), zap.Error(err))
		}
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

// RegisterMaster cria empresa, configuração e o primeiro ADM_GERAL numa transação
// (POST /auth/register-master). A primeira empresa do sistema vira a empresa admin.
func (h *Handler) RegisterMaster(w http.ResponseWriter, r *http.Request) {
	var req RegisterMasterRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	req.Usuario.Email = strings.ToLower(strings.TrimSpace(req.Usuario.Email))
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	hash, err := utils.HashSenha(req.Usuario.Senha)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	e := novaEmpresa(req.Empresa)
	u := usuario.Usuario{
		Nome:     strings.TrimSpace(req.Usuario.Nome),
		Email:    req.Usuario.Email,
		Senha:    hash,
		Telefone: req.Usuario.Telefone,
		CPF:      req.Usuario.CPF,
		Perfil:   models.PerfilAdmGeral,
		Ativo:    true,
	}

	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := h.verificarCNPJ(tx, e.CNPJ, 0); err != nil {
			return err
		}
		total, err := h.Repository.Contar(tx)
		if err != nil {
			return err
		}
		e.IsAdmin = total == 0
		if err := h.Repository.Salvar(tx, &e); err != nil {
			return err
		}
		if err := configuracao.CriarPadrao(tx, e.ID); err != nil {
			return err
		}
		u.EmpresaID = e.ID
		return tx.Create(&u).Error
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	h.Logger.Info("empresa registrada", zap.Uint("empresaId", e.ID), zap.Uint("usuarioId", u.ID), zap.Bool("admin", e.IsAdmin))
	utils.WriteJSON(w, http.StatusCreated, RegisterMasterResponse{Empresa: e, UsuarioID: u.ID, Email: u.Email})
}

func (h *Handler) verificarCNPJ(db *gorm.DB, cnpj string, excetoID uint) error {
	emUso, err := h.Repository.CNPJEmUso(db, cnpj, excetoID)
	if err != nil {
		return err
	}
	if emUso {
		return &utils.ErrConflito{Mensagem: "CNPJ já cadastrado"}
	}
	return nil
}

func novaEmpresa(req EmpresaRequest) Empresa {
	e := Empresa{
		Nome:     strings.TrimSpace(req.Nome),
		CNPJ:     utils.SomenteDigitos(req.CNPJ),
		Email:    strings.TrimSpace(req.Email),
		Telefone: req.Telefone,
		Ativo:    true,
	}
	if req.Ativo != nil {
		e.Ativo = *req.Ativo
	}
	if req.IsAdmin != nil {
		e.IsAdmin = *req.IsAdmin
	}
	return e
}
