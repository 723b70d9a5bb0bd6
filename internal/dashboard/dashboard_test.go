package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/imobgestor/api-imobiliaria/internal/agendamento"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/empresa"
	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/lead"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/negociacao"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type clientesFake struct {
	cliente.Repository
	ativos int64
}

func (f clientesFake) Contar(_ *gorm.DB, _ uint, status string) (int64, error) {
	if status != cliente.StatusAtivo {
		return 0, nil
	}
	return f.ativos, nil
}

type imoveisFake struct {
	imovel.Repository
	disponiveis int64
}

func (f imoveisFake) Contar(_ *gorm.DB, _ uint, status models.StatusImovel) (int64, error) {
	if status != models.ImovelDisponivel {
		return 0, nil
	}
	return f.disponiveis, nil
}

type negociacoesFake struct {
	negociacao.Repository
	err error
}

func (f negociacoesFake) ContarPorStatus(*gorm.DB, uint) (map[string]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]int64{"PROSPECCAO": 3, "FECHADO": 1}, nil
}

type leadsFake struct {
	lead.Repository
	porEmpresa map[uint]int64
}

func (f leadsFake) ContarNovos(_ *gorm.DB, empresaID uint) (int64, error) {
	return f.porEmpresa[empresaID], nil
}

type agendamentosFake struct {
	agendamento.Repository
	desde time.Time
}

func (f *agendamentosFake) ContarPendentes(_ *gorm.DB, empresaID uint, desde time.Time) (int64, error) {
	f.desde = desde
	return int64(empresaID) * 10, nil
}

type financeiroFake struct {
	financeiro.Repository
}

func (financeiroFake) Somar(_ *gorm.DB, _ uint, tipo models.TipoTransacao, status []models.StatusTransacao, _ string, _, _ time.Time) (decimal.Decimal, error) {
	if tipo == models.TipoReceita && len(status) == 1 && status[0] == models.TransacaoPago {
		return decimal.NewFromInt(1500), nil
	}
	return decimal.Zero, nil
}

type empresasFake struct {
	empresa.Repository
}

func (empresasFake) ListarAtivasIDs(*gorm.DB) ([]uint, error) {
	return []uint{1, 2}, nil
}

func novoService(t *testing.T) (*Service, *agendamentosFake) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	ag := &agendamentosFake{}
	s := NewService(db, time.UTC)
	s.Clientes = clientesFake{ativos: 12}
	s.Imoveis = imoveisFake{disponiveis: 7}
	s.Negociacoes = negociacoesFake{}
	s.Leads = leadsFake{porEmpresa: map[uint]int64{1: 4, 2: 5}}
	s.Agendamentos = ag
	s.Financeiro = financeiroFake{}
	s.Empresas = empresasFake{}
	s.agora = func() time.Time { return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC) }
	return s, ag
}

func TestResumo(t *testing.T) {
	s, ag := novoService(t)
	res, err := s.Resumo(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, int64(12), res.ClientesAtivos)
	assert.Equal(t, int64(7), res.ImoveisDisponiveis)
	assert.Equal(t, int64(3), res.NegociacoesPorStatus["PROSPECCAO"])
	assert.Equal(t, int64(5), res.LeadsNovos)
	assert.Equal(t, int64(20), res.AgendamentosPendentes)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), ag.desde)

	require.NotNil(t, res.Financeiro)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), res.Financeiro.Inicio)
	assert.True(t, res.Financeiro.ReceitasRecebidas.Equal(decimal.NewFromInt(1500)))
	assert.True(t, res.Financeiro.Saldo.Equal(decimal.NewFromInt(1500)))
}

func TestResumoPropagaErro(t *testing.T) {
	s, _ := novoService(t)
	s.Negociacoes = negociacoesFake{err: errors.New("conexão perdida")}
	_, err := s.Resumo(context.Background(), 2)
	assert.EqualError(t, err, "conexão perdida")
}

func TestContadoresPorEmpresaAtiva(t *testing.T) {
	s, _ := novoService(t)
	lista, err := s.Contadores(context.Background())
	require.NoError(t, err)
	require.Len(t, lista, 2)
	assert.Equal(t, uint(1), lista[0].EmpresaID)
	assert.Equal(t, int64(4), lista[0].LeadsNovos)
	assert.Equal(t, int64(10), lista[0].AgendamentosPendentes)
	assert.Equal(t, int64(5), lista[1].LeadsNovos)
}

func TestHandlerResumo(t *testing.T) {
	s, _ := novoService(t)
	h := &Handler{Service: s, Logger: zap.NewNop()}
	r := httptest.NewRequest(http.MethodGet, "/dashboard/resumo", nil)
	r = r.WithContext(auth.ComSessao(r.Context(), auth.Sessao{UsuarioID: 1, EmpresaID: 1}))
	w := httptest.NewRecorder()
	h.Resumo(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 12, body["clientesAtivos"])
	assert.EqualValues(t, 4, body["leadsNovos"])
	assert.Contains(t, body, "financeiro")
}
