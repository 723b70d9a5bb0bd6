package lead

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/empresa"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/historico"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/negociacao"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/usuario"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	DB          *gorm.DB
	Repository  Repository
	Clientes    cliente.Repository
	Imoveis     imovel.Repository
	Empresas    empresa.Repository
	Negociacoes negociacao.Repository
	Usuarios    usuario.Repository
	Historico   historico.Repository
	Eventos     eventos.Publicador
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

func NewHandler(db *gorm.DB, pub eventos.Publicador, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = eventos.Nop{}
	}
	return &Handler{
		DB:          db,
		Repository:  NewRepository(),
		Clientes:    cliente.NewRepository(),
		Imoveis:     imovel.NewRepository(),
		Empresas:    empresa.NewRepository(),
		Negociacoes: negociacao.NewRepository(),
		Usuarios:    usuario.NewRepository(),
		Historico:   historico.NewRepository(),
		Eventos:     pub,
		Metrics:     metrics,
		Logger:      logger,
	}
}

func (h *Handler) publicar(ctx context.Context, tipo eventos.Tipo, l *Lead) {
	h.Eventos.Publicar(ctx, eventos.Evento{Tipo: tipo, EmpresaID: l.EmpresaID, Payload: l})
}

// GET /leads?q=&status=
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

// GET /leads/count
func (h *Handler) Contar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	n, err := h.Repository.ContarNovos(h.DB.WithContext(r.Context()), sessao.EmpresaID)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// GET /leads/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	l, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Lead"), h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) validarVinculos(db *gorm.DB, empresaID uint, imovelID, clienteID *uint) error {
	if imovelID != nil {
		if _, err := h.Imoveis.BuscarPorID(db, empresaID, *imovelID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NovoErrValidacao("imóvel não encontrado")
			}
			return err
		}
	}
	if clienteID != nil {
		if _, err := h.Clientes.BuscarPorID(db, empresaID, *clienteID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NovoErrValidacao("cliente não encontrado")
			}
			return err
		}
	}
	return nil
}

// POST /leads
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var req LeadRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	if err := h.validarVinculos(db, sessao.EmpresaID, req.ImovelID, req.ClienteID); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	l := Lead{
		EmpresaID: sessao.EmpresaID,
		Nome:      strings.TrimSpace(req.Nome),
		Email:     req.Email,
		Telefone:  req.Telefone,
		Mensagem:  req.Mensagem,
		Origem:    req.Origem,
		ImovelID:  req.ImovelID,
		ClienteID: req.ClienteID,
	}
	if err := h.Repository.Salvar(db, &l); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.publicar(r.Context(), eventos.LeadCriado, &l)
	utils.WriteJSON(w, http.StatusCreated, l)
}

// POST /leads/publico
// Formulário do site: sem sessão, a empresa vem no corpo.
func (h *Handler) CriarPublico(w http.ResponseWriter, r *http.Request) {
	var req LeadPublicoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	l := Lead{
		EmpresaID: req.EmpresaID,
		Nome:      strings.TrimSpace(req.Nome),
		Email:     req.Email,
		Telefone:  req.Telefone,
		Mensagem:  req.Mensagem,
		Origem:    req.Origem,
		ImovelID:  req.ImovelID,
	}
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		emp, err := h.Empresas.BuscarPorID(tx, req.EmpresaID)
		if err != nil || !emp.Ativo {
			if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NovoErrValidacao("empresa não encontrada")
			}
			return err
		}
		if err := h.validarVinculos(tx, req.EmpresaID, req.ImovelID, nil); err != nil {
			return err
		}
		if err := h.Repository.Salvar(tx, &l); err != nil {
			return err
		}
		return h.Historico.Criar(tx, historico.ParaLead(l.EmpresaID, l.ID, 0, "Lead recebido pelo site"))
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.publicar(r.Context(), eventos.LeadCriado, &l)
	h.Logger.Info("lead recebido", zap.Uint("empresaId", l.EmpresaID), zap.Uint("leadId", l.ID))
	utils.WriteJSON(w, http.StatusCreated, map[string]uint{"id": l.ID})
}

// PUT /leads/{id}
// Status e vínculos com negociação não mudam aqui.
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req LeadRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	db := h.DB.WithContext(r.Context())
	l, err := h.Repository.BuscarPorID(db, sessao.EmpresaID, id)
	if err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Lead"), h.Logger)
		return
	}
	if err := h.validarVinculos(db, sessao.EmpresaID, req.ImovelID, req.ClienteID); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	l.Nome = strings.TrimSpace(req.Nome)
	l.Email = req.Email
	l.Telefone = req.Telefone
	l.Mensagem = req.Mensagem
	if req.Origem != "" {
		l.Origem = req.Origem
	}
	l.ImovelID = req.ImovelID
	l.ClienteID = req.ClienteID
	if err := h.Repository.Salvar(db, l); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, l)
}

// DELETE /leads/{id}
func (h *Handler) Deletar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := h.Repository.Deletar(h.DB.WithContext(r.Context()), sessao.EmpresaID, id); err != nil {
		utils.ResponderErro(w, utils.NaoEncontrado(err, "Lead"), h.Logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /leads/{id}/status
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
	var l *Lead
	err = h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		l, err = h.Repository.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Lead")
		}
		if err := ValidarTransicao(l.Status, novo, req.Observacao); err != nil {
			return err
		}
		de := l.Status
		l.Status = novo
		if err := h.Repository.Salvar(tx, l); err != nil {
			return err
		}
		return h.Historico.Criar(tx, historico.ParaLead(sessao.EmpresaID, l.ID, sessao.UsuarioID, textoTransicao(de, novo, req.Observacao)))
	})
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.publicar(r.Context(), eventos.LeadAtualizado, l)
	utils.WriteJSON(w, http.StatusOK, l)
}

// PromocaoResponse devolve o lead concluído e a negociação aberta a partir dele.
type PromocaoResponse struct {
	Lead       *Lead                  `json:"lead"`
	Negociacao *negociacao.Negociacao `json:"negociacao"`
}

// POST /leads/{id}/negociacao
func (h *Handler) Promover(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var req PromoverRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	if err := utils.Validar(req); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	resp, err := h.promover(r.Context(), sessao, id, req)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	h.Metrics.IncOperacao("promocao_lead")
	h.publicar(r.Context(), eventos.LeadAtualizado, resp.Lead)
	h.Logger.Info("lead promovido",
		zap.Uint("leadId", resp.Lead.ID),
		zap.Uint("negociacaoId", resp.Negociacao.ID))
	utils.WriteJSON(w, http.StatusCreated, resp)
}

// promover cria a negociação e conclui o lead na mesma transação.
func (h *Handler) promover(ctx context.Context, sessao auth.Sessao, id uint, req PromoverRequest) (*PromocaoResponse, error) {
	var resp PromocaoResponse
	err := h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := h.Repository.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Lead")
		}
		if l.Status == StatusConcluido {
			return &utils.ErrConflito{Mensagem: "lead já foi concluído"}
		}

		imovelID := req.ImovelID
		if imovelID == nil {
			imovelID = l.ImovelID
		}
		if imovelID == nil {
			return utils.NovoErrValidacao("informe o imóvel da negociação")
		}
		im, err := h.Imoveis.BuscarPorID(tx, sessao.EmpresaID, *imovelID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NovoErrValidacao("imóvel não encontrado")
			}
			return err
		}

		tipo, err := tipoDaNegociacao(req.TipoNegocio, im)
		if err != nil {
			return err
		}
		if err := negociacao.ValidarImovel(im, tipo); err != nil {
			return err
		}
		if err := negociacao.ValidarCorretor(tx, h.Usuarios, sessao.EmpresaID, req.CorretorID); err != nil {
			return err
		}

		cli, err := h.resolverCliente(tx, sessao.EmpresaID, l, req.ClienteID)
		if err != nil {
			return err
		}

		n := negociacao.Negociacao{
			EmpresaID:     sessao.EmpresaID,
			ClienteID:     cli.ID,
			ImovelID:      im.ID,
			CorretorID:    req.CorretorID,
			LeadID:        &l.ID,
			TipoNegocio:   tipo,
			Status:        models.StatusProspeccao,
			ValorProposta: valorDoImovel(im, tipo),
			Observacoes:   l.Mensagem,
		}
		if n.CorretorID == nil && sessao.Perfil == models.PerfilCorretor {
			uid := sessao.UsuarioID
			n.CorretorID = &uid
		}
		if err := h.Negociacoes.Salvar(tx, &n); err != nil {
			return err
		}
		if err := h.Historico.Criar(tx, historico.ParaNegociacao(sessao.EmpresaID, n.ID, sessao.UsuarioID,
			fmt.Sprintf("Negociação criada a partir do lead #%d", l.ID))); err != nil {
			return err
		}
		if err := h.Historico.Criar(tx, historico.ParaLead(sessao.EmpresaID, l.ID, sessao.UsuarioID,
			fmt.Sprintf("Iniciado Negociação #%d", n.ID))); err != nil {
			return err
		}

		l.Status = StatusConcluido
		l.ClienteID = &cli.ID
		l.NegociacaoID = &n.ID
		if l.ImovelID == nil {
			l.ImovelID = &im.ID
		}
		if err := h.Repository.Salvar(tx, l); err != nil {
			return err
		}
		resp = PromocaoResponse{Lead: l, Negociacao: &n}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// resolverCliente: o informado na requisição, o já vinculado ao lead ou um
// criado com o contato do lead.
func (h *Handler) resolverCliente(tx *gorm.DB, empresaID uint, l *Lead, clienteID *uint) (*cliente.Cliente, error) {
	if clienteID == nil {
		clienteID = l.ClienteID
	}
	if clienteID != nil {
		c, err := h.Clientes.BuscarPorID(tx, empresaID, *clienteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NovoErrValidacao("cliente não encontrado")
			}
			return nil, err
		}
		return c, nil
	}
	return cliente.ResolverPorContato(tx, empresaID, l.Nome, l.Email, l.Telefone)
}

// tipoDaNegociacao usa o tipo pedido ou deduz pela finalidade do imóvel.
func tipoDaNegociacao(pedido models.TipoNegocio, im *imovel.Imovel) (models.TipoNegocio, error) {
	switch {
	case pedido == models.TipoVenda && !im.ParaVenda:
		return "", &utils.ErrRegraNegocio{Mensagem: "imóvel não está à venda"}
	case pedido == models.TipoAluguel && !im.ParaAluguel:
		return "", &utils.ErrRegraNegocio{Mensagem: "imóvel não está para aluguel"}
	case pedido != "":
		return pedido, nil
	case im.ParaVenda:
		return models.TipoVenda, nil
	case im.ParaAluguel:
		return models.TipoAluguel, nil
	}
	return "", &utils.ErrRegraNegocio{Mensagem: "imóvel sem finalidade de venda ou aluguel"}
}

func valorDoImovel(im *imovel.Imovel, tipo models.TipoNegocio) float64 {
	if tipo == models.TipoAluguel {
		return im.PrecoAluguel
	}
	return im.PrecoVenda
}
