package fechamento

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/configuracao"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func igual(t *testing.T, esperado string, obtido decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(esperado).Equal(obtido), "esperado %s, obtido %s", esperado, obtido)
}

func TestCalcularSemAcrescimos(t *testing.T) {
	r, err := Calcular(Entrada{ValorTotal: dec("1000"), ValorEntrada: dec("200"), QuantidadeParcelas: 4}, dec("10"), 10)
	require.NoError(t, err)
	igual(t, "800", r.ValorLiquido)
	igual(t, "200", r.ValorParcelaBase)
	igual(t, "200", r.ValorParcela)
	igual(t, "80", r.ValorTaxa)
	igual(t, "720", r.ValorRepasse)
	assert.Equal(t, 10, r.DiaVencimento)
	assert.False(t, r.ParcelaManual)
}

func TestCalcularComAcrescimos(t *testing.T) {
	r, err := Calcular(Entrada{
		ValorTotal: dec("1000"), ValorEntrada: dec("200"), QuantidadeParcelas: 4,
		AcrescimoPercentual: dec("10"), AcrescimoFixo: dec("50"),
	}, dec("10"), 10)
	require.NoError(t, err)
	igual(t, "220", r.ValorParcelaComAcrescimo)
	igual(t, "270", r.ValorParcela)
	igual(t, "720", r.ValorRepasse)
}

func TestCalcularParcelaManual(t *testing.T) {
	r, err := Calcular(Entrada{ValorTotal: dec("1000"), QuantidadeParcelas: 3, ValorParcelaFinal: ptr(dec("350"))}, dec("10"), 10)
	require.NoError(t, err)
	igual(t, "333.33", r.ValorParcelaBase)
	igual(t, "350", r.ValorParcela)
	assert.True(t, r.ParcelaManual)

	r, err = Calcular(Entrada{ValorTotal: dec("1000"), QuantidadeParcelas: 3, ValorParcelaFinal: ptr(decimal.Zero)}, dec("10"), 10)
	require.NoError(t, err)
	igual(t, "333.33", r.ValorParcela)
	assert.False(t, r.ParcelaManual)
}

func TestCalcularLimites(t *testing.T) {
	for _, n := range []int{0, -3} {
		r, err := Calcular(Entrada{ValorTotal: dec("500"), QuantidadeParcelas: n}, dec("10"), 10)
		require.NoError(t, err)
		assert.Equal(t, 1, r.QuantidadeParcelas)
		igual(t, "500", r.ValorParcela)
	}
	for dia, esperado := range map[int]int{0: 7, 40: 31, -2: 1, 15: 15} {
		r, err := Calcular(Entrada{ValorTotal: dec("500"), QuantidadeParcelas: 1, DiaVencimento: dia}, dec("10"), 7)
		require.NoError(t, err)
		assert.Equal(t, esperado, r.DiaVencimento, "dia %d", dia)
	}
}

func TestCalcularRejeita(t *testing.T) {
	casos := map[string]Entrada{
		"total zero":         {ValorTotal: decimal.Zero},
		"entrada > total":    {ValorTotal: dec("100"), ValorEntrada: dec("101")},
		"entrada negativa":   {ValorTotal: dec("100"), ValorEntrada: dec("-1")},
		"acrescimo negativo": {ValorTotal: dec("100"), AcrescimoPercentual: dec("-5")},
		"fixo negativo":      {ValorTotal: dec("100"), AcrescimoFixo: dec("-5")},
		"tipo invalido":      {ValorTotal: dec("100"), TipoNegocio: "PERMUTA"},
	}
	for nome, e := range casos {
		t.Run(nome, func(t *testing.T) {
			_, err := Calcular(e, dec("10"), 10)
			var ev *utils.ErrValidacao
			assert.ErrorAs(t, err, &ev)
		})
	}
	_, err := Calcular(Entrada{ValorTotal: dec("100")}, dec("-1"), 10)
	assert.Error(t, err)
}

func TestVencimentoMesCurto(t *testing.T) {
	loc := time.UTC
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), Vencimento(base, 1, 31, loc))
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, loc), Vencimento(base, 2, 31, loc))
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, loc), Vencimento(base, 12, 10, loc))
	assert.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, loc), Vencimento(time.Date(2023, 1, 31, 0, 0, 0, 0, loc), 1, 30, loc))
}

func TestDividirFechaCentavos(t *testing.T) {
	partes := dividir(dec("100"), 3)
	igual(t, "33.33", partes[0])
	igual(t, "33.33", partes[1])
	igual(t, "33.34", partes[2])
}

func TestGerarTransacoes(t *testing.T) {
	r, err := Calcular(Entrada{ValorTotal: dec("1000"), ValorEntrada: dec("200"), QuantidadeParcelas: 4, DiaVencimento: 5, TipoNegocio: models.TipoVenda}, dec("10"), 10)
	require.NoError(t, err)
	prop := uint(30)
	hoje := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	lista := GerarTransacoes(r, Origem{EmpresaID: 2, NegociacaoID: 7, ClienteID: 3, ImovelID: 4, ProprietarioID: &prop, Hoje: hoje, Local: time.UTC})

	require.Len(t, lista, 9)
	entrada := lista[0]
	assert.Equal(t, models.TipoReceita, entrada.Tipo)
	igual(t, "200", entrada.Valor)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), entrada.DataVencimento)

	receitas, repasse := 0, decimal.Zero
	for _, tr := range lista[1:] {
		assert.Equal(t, models.TransacaoPendente, tr.Status)
		require.NotNil(t, tr.NegociacaoID)
		assert.Equal(t, uint(7), *tr.NegociacaoID)
		switch tr.Tipo {
		case models.TipoReceita:
			receitas++
			igual(t, "200", tr.Valor)
		case models.TipoDespesa:
			repasse = repasse.Add(tr.Valor)
			require.NotNil(t, tr.ClienteID)
			assert.Equal(t, prop, *tr.ClienteID)
		}
	}
	assert.Equal(t, 4, receitas)
	igual(t, "720", repasse)
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), lista[1].DataVencimento)
	assert.Equal(t, time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC), lista[7].DataVencimento)
	assert.Equal(t, "Parcela 4/4 da negociação #7", lista[7].Descricao)
}

func TestGerarTransacoesSemLinhasZeradas(t *testing.T) {
	casos := []struct {
		nome             string
		entrada          Entrada
		taxa             string
		linhas, receitas int
		despesas         int
	}{
		{"à vista", Entrada{ValorTotal: dec("1000"), ValorEntrada: dec("1000"), QuantidadeParcelas: 3}, "10", 1, 1, 0},
		{"à vista com acréscimo fixo", Entrada{ValorTotal: dec("1000"), ValorEntrada: dec("1000"), QuantidadeParcelas: 2, AcrescimoFixo: dec("50")}, "10", 3, 3, 0},
		{"taxa integral", Entrada{ValorTotal: dec("900"), QuantidadeParcelas: 3}, "100", 3, 3, 0},
		{"parcelado", Entrada{ValorTotal: dec("900"), QuantidadeParcelas: 3}, "10", 6, 3, 3},
	}
	hoje := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)
	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			c.entrada.TipoNegocio = models.TipoVenda
			r, err := Calcular(c.entrada, dec(c.taxa), 10)
			require.NoError(t, err)
			lista := GerarTransacoes(r, Origem{EmpresaID: 2, NegociacaoID: 7, ClienteID: 3, ImovelID: 4, Hoje: hoje, Local: time.UTC})

			require.Len(t, lista, c.linhas)
			receitas, despesas := 0, 0
			for _, tr := range lista {
				assert.True(t, tr.Valor.IsPositive(), tr.Descricao)
				if tr.Tipo == models.TipoReceita {
					receitas++
				} else {
					despesas++
				}
			}
			assert.Equal(t, c.receitas, receitas)
			assert.Equal(t, c.despesas, despesas)
		})
	}
}

type configFake struct {
	taxa float64
	err  error
}

func (c configFake) Obter(context.Context, uint) (configuracao.Configuracao, error) {
	if c.err != nil {
		return configuracao.Configuracao{}, c.err
	}
	return configuracao.Padrao(2), nil
}

func (c configFake) TaxaAdministracao(context.Context, uint) float64 { return c.taxa }

type publicadorFake struct{ eventos []eventos.Evento }

func (p *publicadorFake) Publicar(_ context.Context, ev eventos.Evento) {
	p.eventos = append(p.eventos, ev)
}

func novoHandler(t *testing.T, cfg Configuracoes) (*Handler, sqlmock.Sqlmock, *publicadorFake) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	pub := &publicadorFake{}
	h := NewHandler(db, cfg, pub, nil, time.UTC, zap.NewNop())
	h.agora = func() time.Time { return time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC) }
	return h, mock, pub
}

func req(method, path, body string, vars map[string]string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r = mux.SetURLVars(r, vars)
	return r.WithContext(auth.ComSessao(r.Context(), auth.Sessao{UsuarioID: 1, EmpresaID: 2}))
}

func TestSimularUsaTaxaDaEmpresa(t *testing.T) {
	h, _, _ := novoHandler(t, configFake{taxa: configuracao.TaxaFallback, err: errors.New("sem banco")})
	rec := httptest.NewRecorder()
	h.Simular(rec, req(http.MethodPost, "/fechamento/simular", `{"valorTotal":1000,"valorEntrada":200,"quantidadeParcelas":4}`, nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SimulacaoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	igual(t, "5", resp.Resultado.TaxaAdministracao)
	igual(t, "40", resp.Resultado.ValorTaxa)
	assert.Equal(t, configuracao.DiaVencimentoPadrao, resp.Resultado.DiaVencimento)
	assert.Len(t, resp.Cronograma, 4)
}

func TestSimularTaxaInformadaVence(t *testing.T) {
	h, _, _ := novoHandler(t, configFake{taxa: 10})
	rec := httptest.NewRecorder()
	h.Simular(rec, req(http.MethodPost, "/fechamento/simular", `{"valorTotal":"1000","quantidadeParcelas":2,"taxaAdministracao":"0"}`, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SimulacaoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	igual(t, "0", resp.Resultado.ValorTaxa)
	igual(t, "1000", resp.Resultado.ValorRepasse)
}

func linhaNegociacao(status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "empresa_id", "cliente_id", "imovel_id", "tipo_negocio", "status", "valor_proposta"}).
		AddRow(7, 2, 3, 4, "ALUGUEL", status, 2400)
}

func TestFecharGeraLancamentos(t *testing.T) {
	h, mock, pub := novoHandler(t, configFake{taxa: 10})
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes" WHERE .*FOR UPDATE`).WillReturnRows(linhaNegociacao("PROPOSTA"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "imoveis"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "empresa_id", "proprietario_id", "para_aluguel", "preco_aluguel"}).AddRow(4, 2, 30, true, 2400))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "fechamentos"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "transacoes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3).AddRow(4).AddRow(5).AddRow(6))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "negociacoes" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "historicos"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "imoveis" SET "status"=$1`)).
		WithArgs("ALUGADO", sqlmock.AnyArg(), 2, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	h.Fechar(rec, req(http.MethodPost, "/negociacoes/7/fechamento", `{"quantidadeParcelas":3,"diaVencimento":10}`, map[string]string{"id": "7"}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp FechamentoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusFechado, resp.Negociacao.Status)
	igual(t, "2400", resp.Fechamento.ValorTotal)
	igual(t, "800", resp.Fechamento.ValorParcela)
	assert.Equal(t, models.TipoAluguel, resp.Fechamento.TipoNegocio)
	assert.Len(t, resp.Fechamento.Transacoes, 6)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, pub.eventos, 1)
	assert.Equal(t, eventos.NegociacaoFechada, pub.eventos[0].Tipo)
}

func TestFecharJaFechada(t *testing.T) {
	h, mock, pub := novoHandler(t, configFake{taxa: 10})
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes"`).WillReturnRows(linhaNegociacao("FECHADO"))
	mock.ExpectRollback()

	rec := httptest.NewRecorder()
	h.Fechar(rec, req(http.MethodPost, "/negociacoes/7/fechamento", `{"valorTotal":1000}`, map[string]string{"id": "7"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "/negociacoes/7/refazer")
	assert.Empty(t, pub.eventos)
}

func TestFecharValorInvalidoDesfaz(t *testing.T) {
	h, mock, _ := novoHandler(t, configFake{taxa: 10})
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes"`).WillReturnRows(linhaNegociacao("VISITA"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "imoveis"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "empresa_id"}).AddRow(4, 2))
	mock.ExpectRollback()

	rec := httptest.NewRecorder()
	h.Fechar(rec, req(http.MethodPost, "/negociacoes/7/fechamento", `{"valorTotal":1000,"valorEntrada":1500}`, map[string]string{"id": "7"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
