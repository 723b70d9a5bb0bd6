package historico

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

func novoHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return NewHandler(db, zap.NewNop()), mock
}

func requisicao(method, path, body string, vars map[string]string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r = mux.SetURLVars(r, vars)
	return r.WithContext(auth.ComSessao(r.Context(), auth.Sessao{UsuarioID: 3, EmpresaID: 1, Nome: "Carla"}))
}

func TestToDTOAutor(t *testing.T) {
	uid := uint(3)
	assert.Equal(t, "sistema", toDTO(Registro{Sistema: true}).Autor.Tipo)
	d := toDTO(Registro{UsuarioID: &uid, AutorNome: "Carla"})
	assert.Equal(t, "usuario", d.Autor.Tipo)
	assert.Equal(t, "Carla", d.Autor.Nome)
	assert.Equal(t, "Usuário", toDTO(Registro{UsuarioID: &uid}).Autor.Nome)
}

func TestParaNegociacaoSistema(t *testing.T) {
	r := ParaNegociacao(1, 9, 0, "Status alterado")
	assert.True(t, r.Sistema)
	assert.Nil(t, r.UsuarioID)
	assert.Equal(t, uint(9), *r.NegociacaoID)
}

func TestCriarNegociacao(t *testing.T) {
	h, mock := novoHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "negociacoes" WHERE id = $1 AND empresa_id = $2 AND deleted_at IS NULL`)).
		WithArgs(9, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "historicos"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(44))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	h.CriarNegociacao(rec, requisicao(http.MethodPost, "/negociacoes/9/historico", `{"texto":"  cliente pediu desconto "}`, map[string]string{"id": "9"}))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var dto RegistroDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "cliente pediu desconto", dto.Texto)
	assert.Equal(t, "Carla", dto.Autor.Nome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarNegociacaoDeOutraEmpresa(t *testing.T) {
	h, mock := novoHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "negociacoes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	rec := httptest.NewRecorder()
	h.CriarNegociacao(rec, requisicao(http.MethodPost, "/negociacoes/9/historico", `{"texto":"x"}`, map[string]string{"id": "9"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCriarTextoVazio(t *testing.T) {
	h, _ := novoHandler(t)
	rec := httptest.NewRecorder()
	h.CriarLead(rec, requisicao(http.MethodPost, "/leads/2/historico", `{"texto":"   "}`, map[string]string{"id": "2"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListarLead(t *testing.T) {
	h, mock := novoHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "leads"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT historicos.*, usuarios.nome AS autor_nome FROM "historicos" LEFT JOIN usuarios ON usuarios.id = historicos.usuario_id WHERE historicos.empresa_id = $1 AND historicos.lead_id = $2`)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "empresa_id", "lead_id", "texto", "usuario_id", "sistema", "autor_nome"}).
			AddRow(1, time.Now(), 1, 2, "Lead recebido", nil, true, nil).
			AddRow(2, time.Now(), 1, 2, "Liguei", 3, false, "Carla"))

	rec := httptest.NewRecorder()
	h.ListarLead(rec, requisicao(http.MethodGet, "/leads/2/historico", "", map[string]string{"id": "2"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dtos []RegistroDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "sistema", dtos[0].Autor.Tipo)
	assert.Equal(t, "Carla", dtos[1].Autor.Nome)
}
