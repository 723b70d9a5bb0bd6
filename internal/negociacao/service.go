package negociacao

import (
	"context"
	"fmt"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/historico"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/imobgestor/api-imobiliaria/internal/negociacao")

// Service concentra as mudanças de estado que precisam de transação.
type Service struct {
	DB         *gorm.DB
	Repository Repository
	Historico  historico.Repository
	Imoveis    imovel.Repository
	Eventos    eventos.Publicador
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

func NewService(db *gorm.DB, pub eventos.Publicador, metrics *observability.Metrics, logger *zap.Logger) *Service {
	if pub == nil {
		pub = eventos.Nop{}
	}
	return &Service{
		DB:         db,
		Repository: NewRepository(),
		Historico:  historico.NewRepository(),
		Imoveis:    imovel.NewRepository(),
		Eventos:    pub,
		Metrics:    metrics,
		Logger:     logger,
	}
}

// AlterarStatus valida a transição, grava e registra no histórico.
func (s *Service) AlterarStatus(ctx context.Context, sessao auth.Sessao, id uint, req StatusRequest) (*Negociacao, error) {
	req.Status = models.StatusNegociacao(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	var n *Negociacao
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.Repository.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Negociação")
		}
		if err := ValidarTransicao(n.ID, n.Status, req.Status); err != nil {
			return err
		}
		de := n.Status
		n.Status = req.Status
		if err := s.Repository.Salvar(tx, n); err != nil {
			return err
		}
		return s.Historico.Criar(tx, historico.ParaNegociacao(sessao.EmpresaID, n.ID, sessao.UsuarioID, textoTransicao(de, n.Status, req.Observacao)))
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Estornar desfaz o fechamento: cancela o que não foi pago, cancela a
// negociação, libera o imóvel e abre uma cópia em PROPOSTA. Tudo ou nada.
func (s *Service) Estornar(ctx context.Context, sessao auth.Sessao, id uint, motivo string) (*EstornoResponse, error) {
	ctx, span := tracer.Start(ctx, "negociacao.Estornar")
	defer span.End()
	span.SetAttributes(attribute.Int("negociacao.id", int(id)), attribute.Int("empresa.id", int(sessao.EmpresaID)))

	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, utils.NovoErrValidacao("motivo é obrigatório")
	}

	var resp EstornoResponse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orig, err := s.Repository.BuscarParaAtualizar(tx, sessao.EmpresaID, id)
		if err != nil {
			return utils.NaoEncontrado(err, "Negociação")
		}
		if orig.Status != models.StatusFechado {
			return &utils.ErrConflito{Mensagem: fmt.Sprintf("só negociações fechadas podem ser estornadas (atual: %s)", orig.Status)}
		}

		fin, err := financeiro.EstornarNegociacao(tx, sessao.EmpresaID, orig.ID)
		if err != nil {
			return fmt.Errorf("estornar financeiro: %w", err)
		}

		nova := orig.copiaParaRefazer()
		if err := s.Repository.Salvar(tx, nova); err != nil {
			return fmt.Errorf("criar negociação corrigida: %w", err)
		}

		orig.Status = models.StatusCancelado
		if err := s.Repository.Salvar(tx, orig); err != nil {
			return err
		}
		if err := s.Imoveis.AtualizarStatus(tx, sessao.EmpresaID, orig.ImovelID, models.ImovelDisponivel); err != nil {
			return utils.NaoEncontrado(err, "Imóvel")
		}

		textoOrig := fmt.Sprintf("Negociação estornada. Motivo: %s. %d transação(ões) cancelada(s), %d mantida(s) por já estarem pagas. Nova negociação #%d",
			motivo, len(fin.Canceladas), len(fin.Mantidas), nova.ID)
		if err := s.Historico.Criar(tx, historico.ParaNegociacao(sessao.EmpresaID, orig.ID, sessao.UsuarioID, textoOrig)); err != nil {
			return err
		}
		textoNova := fmt.Sprintf("Negociação criada a partir do estorno da negociação #%d. Motivo: %s", orig.ID, motivo)
		if err := s.Historico.Criar(tx, historico.ParaNegociacao(sessao.EmpresaID, nova.ID, sessao.UsuarioID, textoNova)); err != nil {
			return err
		}

		resp = EstornoResponse{
			Cancelada:            orig,
			Nova:                 nova,
			TransacoesCanceladas: fin.Canceladas,
			TransacoesMantidas:   fin.Mantidas,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.Metrics.IncOperacao("estorno")
	s.Eventos.Publicar(ctx, eventos.Evento{
		Tipo:      eventos.NegociacaoEstornada,
		EmpresaID: sessao.EmpresaID,
		Payload:   map[string]uint{"negociacaoId": resp.Cancelada.ID, "novaNegociacaoId": resp.Nova.ID},
	})
	s.Logger.Info("negociação estornada",
		zap.Uint("negociacaoId", resp.Cancelada.ID),
		zap.Uint("novaNegociacaoId", resp.Nova.ID),
		zap.Int("canceladas", len(resp.TransacoesCanceladas)),
		zap.Int("mantidas", len(resp.TransacoesMantidas)))
	return &resp, nil
}
