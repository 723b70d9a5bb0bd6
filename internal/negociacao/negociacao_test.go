package negociacao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type publicadorFake struct {
	mu      sync.Mutex
	eventos []eventos.Evento
}

func (p *publicadorFake) Publicar(_ context.Context, ev eventos.Evento) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventos = append(p.eventos, ev)
}

var sessao = auth.Sessao{UsuarioID: 1, EmpresaID: 2, Perfil: models.PerfilGerente}

func novoHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *publicadorFake) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	pub := &publicadorFake{}
	return NewHandler(db, pub, nil, zap.NewNop()), mock, pub
}

func req(method, body string, id string) *http.Request {
	r := httptest.NewRequest(method, "/negociacoes/"+id, strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"id": id})
	return r.WithContext(auth.ComSessao(r.Context(), sessao))
}

func linhaNegociacao(id int, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "empresa_id", "cliente_id", "imovel_id", "corretor_id", "tipo_negocio", "status", "valor_proposta", "observacoes"}).
		AddRow(id, time.Now(), time.Now(), 2, 3, 4, 1, "VENDA", status, 350000, "cliente quer financiar")
}

func TestValidarTransicao(t *testing.T) {
	casos := []struct {
		de, para models.StatusNegociacao
		ok       bool
		contem   string
	}{
		{models.StatusProspeccao, models.StatusVisita, true, ""},
		{models.StatusVisita, models.StatusProspeccao, true, ""},
		{models.StatusProposta, models.StatusPerdido, true, ""},
		{models.StatusProspeccao, models.StatusProspeccao, false, "já está"},
		{models.StatusProposta, models.StatusFechado, false, "/negociacoes/7/fechamento"},
		{models.StatusFechado, models.StatusFechado, false, "/negociacoes/7/refazer"},
		{models.StatusFechado, models.StatusProposta, false, "/negociacoes/7/refazer"},
		{models.StatusProposta, models.StatusCancelado, false, "estorno"},
		{models.StatusPerdido, models.StatusVisita, false, "PERDIDO"},
		{models.StatusCancelado, models.StatusVisita, false, "CANCELADO"},
	}
	for _, c := range casos {
		t.Run(string(c.de)+"->"+string(c.para), func(t *testing.T) {
			err := ValidarTransicao(7, c.de, c.para)
			if c.ok {
				assert.NoError(t, err)
				return
			}
			var conflito *utils.ErrConflito
			require.ErrorAs(t, err, &conflito)
			assert.Contains(t, err.Error(), c.contem)
		})
	}

	var ev *utils.ErrValidacao
	assert.ErrorAs(t, ValidarTransicao(7, models.StatusVisita, "GANHO"), &ev)
}

func TestCondicaoVisao(t *testing.T) {
	cond, args, err := condicaoVisao("")
	require.NoError(t, err)
	assert.Equal(t, "negociacoes.status <> ?", cond)
	assert.Equal(t, []any{models.StatusCancelado}, args)

	cond, _, err = condicaoVisao("cancelados")
	require.NoError(t, err)
	assert.Equal(t, "negociacoes.status = ?", cond)

	cond, args, err = condicaoVisao(VisaoTodosComCancelados)
	require.NoError(t, err)
	assert.Empty(t, cond)
	assert.Nil(t, args)

	_, _, err = condicaoVisao("ABERTOS")
	assert.Error(t, err)
}

func TestTextoTransicao(t *testing.T) {
	assert.Equal(t, "Status alterado de VISITA para PROPOSTA", textoTransicao(models.StatusVisita, models.StatusProposta, " "))
	assert.Equal(t, "Status alterado de VISITA para PERDIDO. Observação: desistiu",
		textoTransicao(models.StatusVisita, models.StatusPerdido, "desistiu"))
}

func TestCopiaParaRefazer(t *testing.T) {
	corretor := uint(1)
	n := Negociacao{EmpresaID: 2, ClienteID: 3, ImovelID: 4, CorretorID: &corretor, TipoNegocio: models.TipoAluguel,
		Status: models.StatusFechado, ValorProposta: 2500, Observacoes: "obs"}
	n.ID = 9
	c := n.copiaParaRefazer()
	assert.Zero(t, c.ID)
	assert.Equal(t, models.StatusProposta, c.Status)
	require.NotNil(t, c.NegociacaoOrigemID)
	assert.Equal(t, uint(9), *c.NegociacaoOrigemID)
	assert.Equal(t, n.ClienteID, c.ClienteID)
	assert.Equal(t, n.ValorProposta, c.ValorProposta)
	assert.Equal(t, n.Observacoes, c.Observacoes)
}

func TestAlterarStatusRegistraHistorico(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes" WHERE .*FOR UPDATE`).WillReturnRows(linhaNegociacao(7, "VISITA"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "negociacoes" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "historicos"`)).
		WithArgs(sqlmock.AnyArg(), 2, 7, nil, "Status alterado de VISITA para PROPOSTA. Observação: proposta enviada", 1, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	h.AlterarStatus(rec, req(http.MethodPatch, `{"status":"proposta","observacao":"proposta enviada"}`, "7"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var n Negociacao
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, models.StatusProposta, n.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlterarStatusParaFechadoOrientaFechamento(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes"`).WillReturnRows(linhaNegociacao(7, "PROPOSTA"))
	mock.ExpectRollback()

	rec := httptest.NewRecorder()
	h.AlterarStatus(rec, req(http.MethodPatch, `{"status":"FECHADO"}`, "7"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "/negociacoes/7/fechamento")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlterarStatusDeOutraEmpresa404(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	rec := httptest.NewRecorder()
	h.AlterarStatus(rec, req(http.MethodPatch, `{"status":"VISITA"}`, "7"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefazerExigeMotivo(t *testing.T) {
	h, _, _ := novoHandler(t)
	rec := httptest.NewRecorder()
	h.Refazer(rec, req(http.MethodPost, `{}`, "7"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefazerSoDeFechada(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes"`).WillReturnRows(linhaNegociacao(7, "PROPOSTA"))
	mock.ExpectRollback()

	rec := httptest.NewRecorder()
	h.Refazer(rec, req(http.MethodPost, `{"motivo":"valor errado"}`, "7"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefazerEstornaETrazCopia(t *testing.T) {
	h, mock, pub := novoHandler(t)
	venc := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes" WHERE .*FOR UPDATE`).WillReturnRows(linhaNegociacao(7, "FECHADO"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "transacoes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "empresa_id", "tipo", "status", "valor", "data_vencimento", "negociacao_id"}).
			AddRow(1, 2, "RECEITA", "PAGO", 100, venc, 7).
			AddRow(2, 2, "RECEITA", "PENDENTE", 300, venc, 7).
			AddRow(3, 2, "DESPESA", "PENDENTE", 270, venc, 7))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "transacoes" SET "status"=$1`)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "fechamentos" SET "status"=$1`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "negociacoes"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "negociacoes" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "imoveis" SET "status"=$1`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "historicos"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "historicos"`)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	h.Refazer(rec, req(http.MethodPost, `{"motivo":"valor de entrada errado"}`, "7"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp EstornoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusCancelado, resp.Cancelada.Status)
	assert.Equal(t, uint(20), resp.Nova.ID)
	assert.Equal(t, models.StatusProposta, resp.Nova.Status)
	require.NotNil(t, resp.Nova.NegociacaoOrigemID)
	assert.Equal(t, uint(7), *resp.Nova.NegociacaoOrigemID)
	assert.Len(t, resp.TransacoesCanceladas, 2)
	assert.Len(t, resp.TransacoesMantidas, 1)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, pub.eventos, 1)
	assert.Equal(t, eventos.NegociacaoEstornada, pub.eventos[0].Tipo)
}

func TestDeletarFechada409(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectQuery(`SELECT \* FROM "negociacoes"`).WillReturnRows(linhaNegociacao(7, "FECHADO"))
	rec := httptest.NewRecorder()
	h.Deletar(rec, req(http.MethodDelete, "", "7"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListarFiltroPadraoEscondeCanceladas(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "negociacoes" WHERE negociacoes.empresa_id = $1 AND negociacoes.status <> $2`)).
		WithArgs(2, "CANCELADO").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/negociacoes", nil)
	h.Listar(rec, r.WithContext(auth.ComSessao(r.Context(), sessao)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListarFiltroInvalido(t *testing.T) {
	h, _, _ := novoHandler(t)
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/negociacoes?filtro=XYZ", nil)
	h.Listar(rec, r.WithContext(auth.ComSessao(r.Context(), sessao)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidarImovel(t *testing.T) {
	casos := []struct {
		status      models.StatusImovel
		venda, alug bool
		tipo        models.TipoNegocio
		ok          bool
	}{
		{models.ImovelDisponivel, true, false, models.TipoVenda, true},
		{models.ImovelReservado, true, true, models.TipoAluguel, true},
		{models.ImovelAlugado, true, true, models.TipoVenda, true},
		{models.ImovelVendido, true, true, models.TipoVenda, false},
		{models.ImovelInativo, true, true, models.TipoAluguel, false},
		{models.ImovelDisponivel, false, true, models.TipoVenda, false},
		{models.ImovelDisponivel, true, false, models.TipoAluguel, false},
	}
	for _, c := range casos {
		t.Run(string(c.status)+"/"+string(c.tipo), func(t *testing.T) {
			im := &imovel.Imovel{Status: c.status, ParaVenda: c.venda, ParaAluguel: c.alug}
			err := ValidarImovel(im, c.tipo)
			if c.ok {
				assert.NoError(t, err)
				return
			}
			var regra *utils.ErrRegraNegocio
			assert.ErrorAs(t, err, &regra)
		})
	}
}

func linhasVinculos(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT \* FROM "clientes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "empresa_id", "nome"}).AddRow(3, 2, "Marina"))
	mock.ExpectQuery(`SELECT \* FROM "imoveis"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "empresa_id", "para_venda", "para_aluguel", "status"}).
			AddRow(4, 2, true, false, "DISPONIVEL"))
}

func TestAtualizarSemCorretorMantemAtual(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "negociacoes" WHERE .*FOR UPDATE`).WillReturnRows(linhaNegociacao(7, "VISITA"))
	linhasVinculos(mock)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "negociacoes" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	h.Atualizar(rec, req(http.MethodPut, `{"clienteId":3,"imovelId":4,"tipoNegocio":"VENDA","valorProposta":360000}`, "7"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var n Negociacao
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	require.NotNil(t, n.CorretorID)
	assert.Equal(t, uint(1), *n.CorretorID)
	assert.Equal(t, 360000.0, n.ValorProposta)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarCorretorInvalido(t *testing.T) {
	casos := map[string]*sqlmock.Rows{
		"outra empresa": sqlmock.NewRows([]string{"id"}),
		"inativo":       sqlmock.NewRows([]string{"id", "empresa_id", "ativo"}).AddRow(8, 2, false),
	}
	for nome, linhas := range casos {
		t.Run(nome, func(t *testing.T) {
			h, mock, _ := novoHandler(t)
			mock.ExpectBegin()
			linhasVinculos(mock)
			mock.ExpectQuery(`SELECT \* FROM "usuarios" WHERE empresa_id = \$1 AND "usuarios"."id" = \$2`).WillReturnRows(linhas)
			mock.ExpectRollback()

			rec := httptest.NewRecorder()
			h.Criar(rec, req(http.MethodPost, `{"clienteId":3,"imovelId":4,"corretorId":8,"tipoNegocio":"VENDA","valorProposta":350000}`, ""))

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), "corretor")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
