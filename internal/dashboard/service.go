// Package dashboard agrega os números da tela inicial e os contadores dos badges.
package dashboard

import (
	"context"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/agendamento"
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/empresa"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/lead"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/negociacao"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Resumo struct {
	ClientesAtivos        int64              `json:"clientesAtivos"`
	ImoveisDisponiveis    int64              `json:"imoveisDisponiveis"`
	NegociacoesPorStatus  map[string]int64   `json:"negociacoesPorStatus"`
	LeadsNovos            int64              `json:"leadsNovos"`
	AgendamentosPendentes int64              `json:"agendamentosPendentes"`
	Financeiro            *financeiro.Resumo `json:"financeiro"`
}

type Service struct {
	DB           *gorm.DB
	Clientes     cliente.Repository
	Imoveis      imovel.Repository
	Negociacoes  negociacao.Repository
	Leads        lead.Repository
	Agendamentos agendamento.Repository
	Financeiro   financeiro.Repository
	Empresas     empresa.Repository
	Local        *time.Location

	agora func() time.Time
}

func NewService(db *gorm.DB, loc *time.Location) *Service {
	return &Service{
		DB:           db,
		Clientes:     cliente.NewRepository(),
		Imoveis:      imovel.NewRepository(),
		Negociacoes:  negociacao.NewRepository(),
		Leads:        lead.NewRepository(),
		Agendamentos: agendamento.NewRepository(),
		Financeiro:   financeiro.NewRepository(),
		Empresas:     empresa.NewRepository(),
		Local:        loc,
		agora:        time.Now,
	}
}

// Resumo busca todos os contadores em paralelo; o primeiro erro cancela o resto.
func (s *Service) Resumo(ctx context.Context, empresaID uint) (*Resumo, error) {
	var res Resumo
	g, gctx := errgroup.WithContext(ctx)
	db := func() *gorm.DB { return s.DB.WithContext(gctx) }

	g.Go(func() (err error) {
		res.ClientesAtivos, err = s.Clientes.Contar(db(), empresaID, cliente.StatusAtivo)
		return
	})
	g.Go(func() (err error) {
		res.ImoveisDisponiveis, err = s.Imoveis.Contar(db(), empresaID, models.ImovelDisponivel)
		return
	})
	g.Go(func() (err error) {
		res.NegociacoesPorStatus, err = s.Negociacoes.ContarPorStatus(db(), empresaID)
		return
	})
	g.Go(func() (err error) {
		res.LeadsNovos, res.AgendamentosPendentes, err = s.badges(db(), empresaID)
		return
	})
	g.Go(func() (err error) {
		ini, fim := utils.PeriodoDoMes(s.agora(), s.Local)
		res.Financeiro, err = financeiro.CalcularResumo(gctx, s.DB, s.Financeiro, empresaID, ini, fim)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) badges(db *gorm.DB, empresaID uint) (int64, int64, error) {
	leads, err := s.Leads.ContarNovos(db, empresaID)
	if err != nil {
		return 0, 0, err
	}
	pendentes, err := s.Agendamentos.ContarPendentes(db, empresaID, utils.InicioDoDia(s.agora(), s.Local))
	if err != nil {
		return 0, 0, err
	}
	return leads, pendentes, nil
}

// Contadores monta os badges de cada empresa ativa; usado pelo poller de eventos.
func (s *Service) Contadores(ctx context.Context) ([]eventos.Contadores, error) {
	db := s.DB.WithContext(ctx)
	ids, err := s.Empresas.ListarAtivasIDs(db)
	if err != nil {
		return nil, err
	}
	lista := make([]eventos.Contadores, 0, len(ids))
	for _, id := range ids {
		leads, pendentes, err := s.badges(db, id)
		if err != nil {
			return nil, err
		}
		lista = append(lista, eventos.Contadores{EmpresaID: id, LeadsNovos: leads, AgendamentosPendentes: pendentes})
	}
	return lista, nil
}
