package fechamento

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/configuracao"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/historico"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/negociacao"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/imobgestor/api-imobiliaria/internal/fechamento")

// Configuracoes é o que o fechamento lê da configuração da empresa.
type Configuracoes interface {
	Obter(ctx context.Context, empresaID uint) (configuracao.Configuracao, error)
	TaxaAdministracao(ctx context.Context, empresaID uint) float64
}

type Handler struct {
	DB          *gorm.DB
	Negociacoes negociacao.Repository
	Historico   historico.Repository
	Imoveis     imovel.Repository
	Financeiro  financeiro.Repository
	Config      Configuracoes
	Eventos     eventos.Publicador
	Metrics     *observability.Metrics
	Local       *time.Location
	Logger      *zap.Logger

	agora func() time.Time
}

func NewHandler(db *gorm.DB, cfg Configuracoes, pub eventos.Publicador, metrics *observability.Metrics, loc *time.Location, logger *zap.Logger) *Handler {
	if pub == nil {
		pub = eventos.Nop{}
	}
	return &Handler{
		DB:          db,
		Negociacoes: negociacao.NewRepository(),
		Historico:   historico.NewRepository(),
		Imoveis:     imovel.NewRepository(),
		Financeiro:  financeiro.NewRepository(),
		Config:      cfg,
		Eventos:     pub,
		Metrics:     metrics,
		Local:       loc,
		Logger:      logger,
		agora:       time.Now,
	}
}

type SimulacaoResponse struct {
	Resultado  Resultado         `json:"resultado"`
	Cronograma []ParcelaPrevista `json:"cronograma"`
}

type FechamentoResponse struct {
	Fechamento *financeiro.Fechamento `json:"fechamento"`
	Negociacao *negociacao.Negociacao `json:"negociacao"`
}

// calcular resolve taxa e dia padrão da empresa quando não vierem na entrada.
func (h *Handler) calcular(ctx context.Context, empresaID uint, e Entrada) (Resultado, error) {
	var taxa decimal.Decimal
	if e.TaxaAdministracao != nil {
		taxa = *e.TaxaAdministracao
	} else {
		taxa = decimal.NewFromFloat(h.Config.TaxaAdministracao(ctx, empresaID))
	}
	dia := configuracao.DiaVencimentoPadrao
	if e.DiaVencimento == 0 {
		if c, err := h.Config.Obter(ctx, empresaID); err == nil && c.DiaVencimentoPadrao > 0 {
			dia = c.DiaVencimentoPadrao
		}
	}
	return Calcular(e, taxa, dia)
}

// POST /fechamento/simular
func (h *Handler) Simular(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	var e Entrada
	if err := utils.DecodificarJSON(r, &e); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	res, err := h.calcular(r.Context(), sessao.EmpresaID, e)
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	utils.WriteJSON(w, http.StatusOK, SimulacaoResponse{
		Resultado:  res,
		Cronograma: Cronograma(res, h.agora(), h.Local),
	})
}

// Fechar trata POST /negociacoes/{id}/fechamento: grava o fechamento com seus
// lançamentos, fecha a negociação e marca o imóvel como vendido ou alugado,
// tudo na mesma transação.
func (h *Handler) Fechar(w http.ResponseWriter, r *http.Request) {
	sessao, _ := auth.SessaoDe(r.Context())
	id, err := utils.IDDaRota(r, "id")
	if err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}
	var e Entrada
	if err := utils.DecodificarJSON(r, &e); err != nil {
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	ctx, span := tracer.Start(r.Context(), "fechamento.Fechar")
	defer span.End()
	span.SetAttributes(attribute.Int("negociacao.id", int(id)), attribute.Int("empresa.id", int(sessao.EmpresaID)))

	var resp FechamentoResponse
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := h.Negociacoes.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Negociação")
		}
		if n.Status == models.StatusFechado {
			return &utils.ErrConflito{Mensagem: fmt.Sprintf(
				"negociação já está fechada; para corrigir use o estorno em POST /negociacoes/%d/refazer", id)}
		}
		if !n.Status.Aberto() {
			return &utils.ErrConflito{Mensagem: fmt.Sprintf("negociação %s não pode ser fechada", n.Status)}
		}
		if e.TipoNegocio == "" {
			e.TipoNegocio = n.TipoNegocio
		}
		if e.ValorTotal.IsZero() && n.ValorProposta > 0 {
			e.ValorTotal = decimal.NewFromFloat(n.ValorProposta)
		}
		im, err := h.Imoveis.BuscarPorID(tx, sessao.EmpresaID, n.ImovelID)
		if err != nil {
			return utils.NaoEncontrado(err, "Imóvel")
		}

		res, err := h.calcular(ctx, sessao.EmpresaID, e)
		if err != nil {
			return err
		}
		f := &financeiro.Fechamento{
			EmpresaID:           sessao.EmpresaID,
			NegociacaoID:        n.ID,
			UsuarioID:           sessao.UsuarioID,
			TipoNegocio:         res.TipoNegocio,
			ValorTotal:          res.ValorTotal,
			ValorEntrada:        res.ValorEntrada,
			QuantidadeParcelas:  res.QuantidadeParcelas,
			DiaVencimento:       res.DiaVencimento,
			TaxaAdministracao:   res.TaxaAdministracao,
			AcrescimoPercentual: res.AcrescimoPercentual,
			AcrescimoFixo:       res.AcrescimoFixo,
			ValorLiquido:        res.ValorLiquido,
			ValorParcelaBase:    res.ValorParcelaBase,
			ValorParcela:        res.ValorParcela,
			ValorTaxa:           res.ValorTaxa,
			ValorRepasse:        res.ValorRepasse,
			Status:              financeiro.FechamentoAtivo,
			Transacoes: GerarTransacoes(res, Origem{
				EmpresaID:      sessao.EmpresaID,
				NegociacaoID:   n.ID,
				ClienteID:      n.ClienteID,
				ImovelID:       n.ImovelID,
				ProprietarioID: im.ProprietarioID,
				Hoje:           h.agora(),
				Local:          h.Local,
			}),
		}
		if err := h.Financeiro.CriarFechamento(tx, f); err != nil {
			return fmt.Errorf("gravar fechamento: %w", err)
		}

		obs := fmt.Sprintf("Fechamento #%d: %s em %dx de %s", f.ID,
			financeiro.FormatarMoeda(res.ValorTotal), res.QuantidadeParcelas, financeiro.FormatarMoeda(res.ValorParcela))
		if e.Observacao != "" {
			obs += ". " + e.Observacao
		}
		if err := negociacao.MarcarFechada(tx, h.Negociacoes, h.Historico, n, sessao.UsuarioID, obs); err != nil {
			return err
		}

		status := models.ImovelVendido
		if res.TipoNegocio == models.TipoAluguel {
			status = models.ImovelAlugado
		}
		if err := h.Imoveis.AtualizarStatus(tx, sessao.EmpresaID, n.ImovelID, status); err != nil {
			return utils.NaoEncontrado(err, "Imóvel")
		}

		resp = FechamentoResponse{Fechamento: f, Negociacao: n}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		utils.ResponderErro(w, err, h.Logger)
		return
	}

	h.Metrics.IncOperacao("fechamento")
	h.Eventos.Publicar(ctx, eventos.Evento{
		Tipo:      eventos.NegociacaoFechada,
		EmpresaID: sessao.EmpresaID,
		Payload:   map[string]uint{"negociacaoId": resp.Negociacao.ID, "fechamentoId": resp.Fechamento.ID},
	})
	h.Logger.Info("negociação fechada",
		zap.Uint("negociacaoId", resp.Negociacao.ID),
		zap.Uint("fechamentoId", resp.Fechamento.ID),
		zap.Int("transacoes", len(resp.Fechamento.Transacoes)))
	utils.WriteJSON(w, http.StatusCreated, resp)
}
