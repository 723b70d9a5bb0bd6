package imovel

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/storage"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Clientes   cliente.Repository
	Storage    storage.Storage
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

func NewHandler(db *gorm.DB, st storage.Storage, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Clientes:   cliente.NewRepository(),
		Storage:    st,
		Metrics:    metrics,
		Logger:     logger,
	}
}

func filtroDaQuery(r *http.Request) Filtro {
	q := r.URL.Query()
	return Filtro{
		Q:          q.Get("q"),
		Tipo:       q.Get("tipo"),
		Status:     q.Get("status"),
		Finalidade: q.Get("finalidade"),
		Cidade:     q.Get("cidade"),
	}
}

// GET /imoveis?q=&tipo=&status=&finalidade=&cidade=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), sessao.EmpresaID, filtroDaQuery(r))
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /imoveis/publico?empresaId=
// Vitrine sem autenticação: só imóveis disponíveis.
func (h *Handler) ListarPublico(w http.ResponseWriter, r *http.Request) {
	empresaID := utils.UintDaQuery(r, "empresaId")
	if empresaID == 0 {
		utils.ResponderErro(w, utils.NovoErrValidacao("empresaId é obrigatório"), h.Logger)
		return
	}
	f := filtroDaQuery(r)
	f.Status = string(models.ImovelDisponivel)
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), empresaID, f)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /imoveis/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	i, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Imóvel"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, i)
}

// POST /imoveis
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req ImovelRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	i := Imovel{EmpresaID: sessao.EmpresaID, Status: models.ImovelDisponivel}
	db := h.DB.WithContext(r.Context())
	if err := h.preparar(db, sessao.EmpresaID, req, &i); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Repository.Salvar(db, &i); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, i)
}

// PUT /imoveis/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req ImovelRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	i, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Imóvel"), h.Logger)
		return
	}
	if err := h.preparar(db, sessao.EmpresaID, req, i); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Repository.Salvar(db, i); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) preparar(db *gorm.DB, empresaID uint, req ImovelRequest, i *Imovel) error {
	if err := utils.Validar(req); err != nil {
		return err
	}
	req.aplicar(i)
	if err := i.validarFinalidade(); err != nil {
		return err
	}
	if i.ProprietarioID != nil {
		if _, err := h.Clientes.BuscarPorID(db, empresaID, *i.ProprietarioID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NovoErrValidacao("proprietário não encontrado")
			}
			return err
		}
	}
	return nil
}

// DELETE /imoveis/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	i, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Imóvel"), h.Logger)
		return
	}
	abertas, err := h.Repository.NegociacoesAbertas(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if abertas > 0 {
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "imóvel possui negociações em andamento"}, h.Logger)
		return
	}
	if err := h.Repository.Deletar(db, sessao.EmpresaID, id); err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Imóvel"), h.Logger)
		return
	}
	for _, f := range i.Fotos {
		if err := h.Storage.Remover(r.Context(), f); err != nil {
			h.Logger.Warn("remover foto de imóvel excluído", zap.String("url", f), zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadFotos grava os arquivos do campo "fotos" um de cada vez
// (POST /imoveis/{id}/upload-foto). A primeira falha interrompe o envio;
// o que já foi gravado fica no imóvel.
func (h *Handler) UploadFotos(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	i, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Imóvel"), h.Logger)
		return
	}
	arquivos, err := storage.ArquivosDoForm(w, r, "fotos")
	if err != nil {
		utils.ResponderErro(w, &utils.ErrValidacao{Mensagens: []string{err.Error()}}, h.Logger)
		return
	}

	pasta := fmt.Sprintf("imoveis/%d/%d", sessao.EmpresaID, id)
	resp := UploadResponse{Enviados: []string{}, Falhas: []FalhaUpload{}, NaoProcessados: []string{}}
	for idx, fh := range arquivos {
		url, err := h.salvarArquivo(r, pasta, fh.Filename, fh.Open)
		if err != nil {
			h.Metrics.IncUpload("foto", "erro")
			h.Logger.Warn("upload de foto interrompido", zap.Uint("imovelId", id), zap.String("arquivo", fh.Filename), zap.Error(err))
			resp.Falhas = append(resp.Falhas, FalhaUpload{Arquivo: fh.Filename, Erro: err.Error()})
			for _, resto := range arquivos[idx+1:] {
				resp.NaoProcessados = append(resp.NaoProcessados, resto.Filename)
			}
			break
		}
		h.Metrics.IncUpload("foto", "ok")
		resp.Enviados = append(resp.Enviados, url)
	}

	if len(resp.Enviados) == 0 {
		utils.ResponderErro(w, utils.NovoErrValidacao("nenhuma foto enviada: %s", resp.Falhas[0].Erro), h.Logger)
		return
	}
	i.Fotos = append(i.Fotos, resp.Enviados...)
	if err := h.Repository.Salvar(db, i); err != nil {
		for _, u := range resp.Enviados {
			_ = h.Storage.Remover(r.Context(), u)
		}
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	resp.Imovel = i
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) salvarArquivo(r *http.Request, pasta, nome string, abrir func() (multipart.File, error)) (string, error) {
	f, err := abrir()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Storage.Salvar(r.Context(), pasta, nome, f)
}

// DELETE /imoveis/{id}/foto/{url}
// A URL vem escapada num único segmento do caminho.
func (h *Handler) RemoverFoto(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	foto, err := url.PathUnescape(mux.Vars(r)["url"])
	if err != nil || foto == "" {
		utils.ResponderErro(w, utils.NovoErrValidacao("url da foto inválida"), h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	i, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Imóvel"), h.Logger)
		return
	}
	if !i.removerFoto(foto) {
		utils.ResponderErro(w, &utils.ErrNaoEncontrado{Recurso: "Foto"}, h.Logger)
		return
	}
	if err := h.Repository.Salvar(db, i); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Storage.Remover(r.Context(), foto); err != nil {
		h.Logger.Warn("remover arquivo de foto", zap.String("url", foto), zap.Error(err))
	}
	utils.WriteJSON(w, http.StatusOK, i)
}

// PATCH /imoveis/{id}/status
func (h *Handler) AtualizarStatus(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var body struct {
		Status models.StatusImovel `json:"status"`
	}
	if err := utils.DecodificarJSON(r, &body); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if !body.Status.Valido() {
		utils.ResponderErro(w, utils.NovoErrValidacao("status inválido: %s", strconv.Quote(string(body.Status))), h.Logger)
		return
	}
	if err := h.Repository.AtualizarStatus(h.DB.WithContext(r.Context()), sessao.EmpresaID, id, body.Status); err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Imóvel"), h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
