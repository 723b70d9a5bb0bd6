package financeiro

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/empresa"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB            *gorm.DB
	Repository    Repository
	Empresas      empresa.Repository
	Local         *time.Location
	PublicBaseURL string
	Logger        *zap.Logger

	agora func() time.Time
}

func NewHandler(db *gorm.DB, loc *time.Location, publicBaseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Repository:    NewRepository(),
		Empresas:      empresa.NewRepository(),
		Local:         loc,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		Logger:        logger,
		agora:         time.Now,
	}
}

func (h *Handler) filtro(r *http.Request) (Filtro, error) {
	q := r.URL.Query()
	f := Filtro{
		Tipo:         q.Get("tipo"),
		Status:       q.Get("status"),
		Q:            q.Get("q"),
		NegociacaoID: utils.UintDaQuery(r, "negociacaoId"),
	}
	if v := q.Get("inicio"); v != "" {
		d, err := utils.ParseData(v, h.Local)
		if err != nil {
			return f, err
		}
		f.Inicio = &d
	}
	if v := q.Get("fim"); v != "" {
		d, err := utils.ParseData(v, h.Local)
		if err != nil {
			return f, err
		}
		fim := utils.InicioDoDia(d, h.Local).AddDate(0, 0, 1)
		f.Fim = &fim
	}
	return f, nil
}

// GET /financeiro?tipo=&status=&q=&inicio=&fim=&negociacaoId=
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	f, err := h.filtro(r)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	lista, err := h.Repository.Listar(h.DB.WithContext(r.Context()), sessao.EmpresaID, f)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, lista)
}

// GET /financeiro/resumo?inicio=&fim=
// Sem período, usa o mês corrente. fim é inclusivo.
func (h *Handler) Resumo(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	inicio, fim := utils.PeriodoDoMes(h.agora(), h.Local)
	if v := r.URL.Query().Get("inicio"); v != "" {
		d, err := utils.ParseData(v, h.Local)
		if err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
		inicio = d
	}
	if v := r.URL.Query().Get("fim"); v != "" {
		d, err := utils.ParseData(v, h.Local)
		if err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
		fim = utils.InicioDoDia(d, h.Local).AddDate(0, 0, 1)
	}
	if !fim.After(inicio) {
		utils.ResponderErro(w, utils.NovoErrValidacao("fim deve ser posterior ao início"), h.Logger)
		return
	}
	res, err := CalcularResumo(r.Context(), h.DB, h.Repository, sessao.EmpresaID, inicio, fim)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// GET /financeiro/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	t, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Transação"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) aplicar(req TransacaoRequest, t *Transacao) error {
	if err := utils.Validar(req); err != nil {
		return err
	}
	if !req.Valor.IsPositive() {
		return utils.NovoErrValidacao("valor deve ser maior que zero")
	}
	venc, err := utils.ParseData(req.DataVencimento, h.Local)
	if err != nil {
		return err
	}
	t.Descricao = strings.TrimSpace(req.Descricao)
	t.Tipo = req.Tipo
	t.Valor = req.Valor.Round(2)
	t.DataVencimento = venc
	t.ClienteID = req.ClienteID
	t.ImovelID = req.ImovelID
	t.NegociacaoID = req.NegociacaoID
	t.Categoria = req.Categoria
	t.FormaPagamento = req.FormaPagamento

	switch req.Status {
	case models.TransacaoPago:
		pag := h.agora().In(h.Local)
		if req.DataPagamento != "" {
			if pag, err = utils.ParseData(req.DataPagamento, h.Local); err != nil {
				return err
			}
		}
		t.Status = models.TransacaoPago
		t.DataPagamento = &pag
	case models.TransacaoPendente:
		t.Status = models.TransacaoPendente
		t.DataPagamento = nil
	}
	if t.Status == "" {
		t.Status = models.TransacaoPendente
	}
	if t.Status == models.TransacaoPendente && venc.Before(utils.InicioDoDia(h.agora(), h.Local)) {
		t.Status = models.TransacaoAtrasado
	}
	return nil
}

// POST /financeiro
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req TransacaoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	t := Transacao{EmpresaID: sessao.EmpresaID}
	if err := h.aplicar(req, &t); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Repository.Salvar(h.DB.WithContext(r.Context()), &t); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, t)
}

// PUT /financeiro/{id}
// Linhas geradas por fechamento só mudam pelo pagamento ou pelo estorno.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req TransacaoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	t, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Transação"), h.Logger)
		return
	}
	if t.Status == models.TransacaoCancelado {
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "transação cancelada não pode ser alterada"}, h.Logger)
		return
	}
	if t.FechamentoID != nil {
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "transação gerada por fechamento: use o estorno da negociação"}, h.Logger)
		return
	}
	if err := h.aplicar(req, t); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Repository.Salvar(db, t); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, t)
}

// DELETE /financeiro/{id}
// Linhas geradas por fechamento só saem pelo estorno da negociação.
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	t, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Transação"), h.Logger)
		return
	}
	if t.FechamentoID != nil {
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "transação gerada por fechamento: use o estorno da negociação"}, h.Logger)
		return
	}
	if err := h.Repository.Deletar(db, sessao.EmpresaID, id); err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Transação"), h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /financeiro/{id}/pagar
func (h *Handler) Pagar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req PagarRequest
	if r.ContentLength != 0 {
		if err := utils.DecodificarJSON(r, &req); err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	pag := h.agora().In(h.Local)
	if req.DataPagamento != "" {
		if pag, err = utils.ParseData(req.DataPagamento, h.Local); err != nil {
			utils.ResponderErro(w, err, h.Logger)
			return
		}
	}

	db := h.DB.WithContext(r.Context())
	t, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Transação"), h.Logger)
		return
	}
	switch t.Status {
	case models.TransacaoPago:
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "transação já está paga"}, h.Logger)
		return
	case models.TransacaoCancelado:
		utils.ResponderErro(w, &utils.ErrConflito{Mensagem: "transação cancelada não pode ser paga"}, h.Logger)
		return
	}
	t.Status = models.TransacaoPago
	t.DataPagamento = &pag
	if req.FormaPagamento != "" {
		t.FormaPagamento = req.FormaPagamento
	}
	if err := h.Repository.Salvar(db, t); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) urlValidacao(codigo string) string {
	return h.PublicBaseURL + "/financeiro/validar/" + codigo
}

// GET /financeiro/{id}/recibo
func (h *Handler) Recibo(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	t, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Transação"), h.Logger)
		return
	}
	if t.Status != models.TransacaoPago {
		utils.ResponderErro(w, &utils.ErrRegraNegocio{Mensagem: "recibo disponível apenas para transações pagas"}, h.Logger)
		return
	}
	emp, err := h.Empresas.BuscarPorID(db, sessao.EmpresaID)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Empresa"), h.Logger)
		return
	}
	pdf, err := GerarRecibo(DadosRecibo{
		Transacao:    t,
		EmpresaNome:  emp.Nome,
		EmpresaCNPJ:  utils.FormatarCNPJ(emp.CNPJ),
		URLValidacao: h.urlValidacao(t.CodigoValidacao),
		Local:        h.Local,
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="recibo-`+strconv.FormatUint(uint64(t.ID), 10)+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// GET /financeiro/validar/{codigo}
// Público: confirma a autenticidade de um recibo.
func (h *Handler) Validar(w http.ResponseWriter, r *http.Request) {
	codigo := strings.TrimSpace(mux.Vars(r)["codigo"])
	if codigo == "" {
		utils.ResponderErro(w, utils.NovoErrValidacao("código inválido"), h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	t, err := h.Repository.BuscarPorCodigo(db, codigo)
	if err != nil || t.Status != models.TransacaoPago {
		if err == nil {
			err = gorm.ErrRecordNotFound
		}
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Recibo"), h.Logger)
		return
	}
	var nome string
	if emp, err := h.Empresas.BuscarPorID(db, t.EmpresaID); err == nil {
		nome = emp.Nome
	}
	utils.WriteJSON(w, http.StatusOK, ValidacaoRecibo{
		Valido:        true,
		Codigo:        t.CodigoValidacao,
		Empresa:       nome,
		Descricao:     t.Descricao,
		Valor:         t.Valor,
		DataPagamento: t.DataPagamento,
	})
}
