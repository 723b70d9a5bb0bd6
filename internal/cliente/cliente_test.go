package cliente

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func novoDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func req(method, path, body string, id string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if id != "" {
		r = mux.SetURLVars(r, map[string]string{"id": id})
	}
	return r.WithContext(auth.ComSessao(r.Context(), auth.Sessao{UsuarioID: 1, EmpresaID: 2}))
}

var colunas = []string{"id", "created_at", "updated_at", "deleted_at", "empresa_id", "nome", "cpf", "email", "telefone", "endereco", "status", "observacoes", "busca"}

func TestBeforeSaveNormaliza(t *testing.T) {
	c := Cliente{Nome: "João Árvore", CPF: "529.982.247-25", Telefone: "(11) 3456-7890", Email: " J@X.COM "}
	require.NoError(t, c.BeforeSave(nil))
	assert.Equal(t, "52998224725", c.CPF)
	assert.Equal(t, "1134567890", c.Telefone)
	assert.Equal(t, "j@x.com", c.Email)
	assert.Equal(t, StatusAtivo, c.Status)
	assert.Equal(t, "joao arvore 52998224725 j@x.com 1134567890", c.Busca)
}

func TestListarBuscaSemAcento(t *testing.T) {
	db, mock := novoDB(t)
	h := &Handler{DB: db, Repository: NewRepository(), Logger: zap.NewNop()}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "clientes" WHERE empresa_id = $1 AND busca LIKE $2 AND status = $3`)).
		WithArgs(2, "%joao%", "ATIVO").
		WillReturnRows(sqlmock.NewRows(colunas).
			AddRow(1, time.Now(), time.Now(), nil, 2, "João", "", "", "", "", "ATIVO", "", "joao"))

	rec := httptest.NewRecorder()
	h.Listar(rec, req(http.MethodGet, "/clientes?q=JOÃO&status=ativo", "", ""))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lista []Cliente
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lista))
	assert.Len(t, lista, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuscarDeOutraEmpresa404(t *testing.T) {
	db, mock := novoDB(t)
	h := &Handler{DB: db, Repository: NewRepository(), Logger: zap.NewNop()}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "clientes" WHERE empresa_id = $1 AND "clientes"."id" = $2`)).
		WillReturnRows(sqlmock.NewRows(colunas))

	rec := httptest.NewRecorder()
	h.BuscarPorID(rec, req(http.MethodGet, "/clientes/9", "", "9"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCriarValidaCPF(t *testing.T) {
	db, _ := novoDB(t)
	h := &Handler{DB: db, Repository: NewRepository(), Logger: zap.NewNop()}
	rec := httptest.NewRecorder()
	h.Criar(rec, req(http.MethodPost, "/clientes", `{"nome":"Ana","cpf":"111.111.111-11"}`, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletarComNegociacaoAberta(t *testing.T) {
	db, mock := novoDB(t)
	h := &Handler{DB: db, Repository: NewRepository(), Logger: zap.NewNop()}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "negociacoes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rec := httptest.NewRecorder()
	h.Deletar(rec, req(http.MethodDelete, "/clientes/3", "", "3"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResolverPorContatoReaproveita(t *testing.T) {
	db, mock := novoDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "clientes" WHERE empresa_id = $1 AND (email = $2 OR telefone = $3)`)).
		WithArgs(2, "ana@x.com", "11999998888", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(colunas).
			AddRow(7, time.Now(), time.Now(), nil, 2, "Ana", "", "ana@x.com", "", "", "ATIVO", "", ""))

	c, err := ResolverPorContato(db, 2, "Ana", "Ana@x.com", "(11) 99999-8888")
	require.NoError(t, err)
	assert.Equal(t, uint(7), c.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolverPorContatoCria(t *testing.T) {
	db, mock := novoDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "clientes"`)).
		WillReturnRows(sqlmock.NewRows(colunas))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "clientes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectCommit()

	c, err := ResolverPorContato(db, 2, " Bia ", "bia@x.com", "")
	require.NoError(t, err)
	assert.Equal(t, uint(8), c.ID)
	assert.Equal(t, "Bia", c.Nome)
}
