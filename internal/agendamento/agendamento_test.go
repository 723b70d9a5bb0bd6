package agendamento

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
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var saoPaulo = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}()

var sessao = auth.Sessao{UsuarioID: 1, EmpresaID: 2, Perfil: models.PerfilCorretor}

type publicadorFake struct {
	mu      sync.Mutex
	eventos []eventos.Evento
}

func (p *publicadorFake) Publicar(_ context.Context, ev eventos.Evento) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventos = append(p.eventos, ev)
}

// 10/03/2026 14:05 em São Paulo.
func agoraFixo() time.Time {
	return time.Date(2026, 3, 10, 14, 5, 0, 0, saoPaulo)
}

func novoHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *publicadorFake) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	pub := &publicadorFake{}
	h := NewHandler(db, pub, saoPaulo, zap.NewNop())
	h.agora = agoraFixo
	return h, mock, pub
}

func req(method, path, body, id string) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if id != "" {
		r = mux.SetURLVars(r, map[string]string{"id": id})
	}
	return r.WithContext(auth.ComSessao(r.Context(), sessao))
}

func TestHorarios(t *testing.T) {
	h := Horarios()
	assert.Len(t, h, 33)
	assert.Equal(t, "06:00", h[0])
	assert.Equal(t, "06:30", h[1])
	assert.Equal(t, "22:00", h[len(h)-1])
}

func TestDisponiveisHojeDescartaHorariosPassados(t *testing.T) {
	livres := Disponiveis(agoraFixo(), nil, agoraFixo(), saoPaulo)
	assert.NotContains(t, livres, "14:00")
	assert.NotContains(t, livres, "06:00")
	assert.Contains(t, livres, "14:30")
	assert.Equal(t, "14:30", livres[0])
	assert.Equal(t, "22:00", livres[len(livres)-1])
}

func TestDisponiveisHorarioCorrenteNaoEntra(t *testing.T) {
	agora := time.Date(2026, 3, 10, 14, 0, 0, 0, saoPaulo)
	livres := Disponiveis(agora, nil, agora, saoPaulo)
	assert.NotContains(t, livres, "14:00")
	assert.Equal(t, "14:30", livres[0])
}

func TestDisponiveisOcupadoSempreSai(t *testing.T) {
	amanha := agoraFixo().AddDate(0, 0, 1)
	livres := Disponiveis(amanha, []string{"09:00", " 15:30"}, agoraFixo(), saoPaulo)
	assert.Len(t, livres, 31)
	assert.NotContains(t, livres, "09:00")
	assert.NotContains(t, livres, "15:30")
	assert.Contains(t, livres, "06:00")
}

func TestDisponiveisDiaPassadoVazio(t *testing.T) {
	ontem := agoraFixo().AddDate(0, 0, -1)
	assert.Empty(t, Disponiveis(ontem, nil, agoraFixo(), saoPaulo))
}

func TestOcupadosFormataNoFusoLocal(t *testing.T) {
	utc := time.Date(2026, 3, 11, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, []string{"09:30"}, Ocupados([]time.Time{utc, utc}, saoPaulo))
}

func TestParseDataHora(t *testing.T) {
	d, err := ParseDataHora("2026-03-11T09:30", saoPaulo)
	require.NoError(t, err)
	assert.Equal(t, "09:30", d.Format(LayoutHorario))

	d, err = ParseDataHora("2026-03-11T12:30:00Z", saoPaulo)
	require.NoError(t, err)
	assert.Equal(t, "09:30", d.Format(LayoutHorario))

	_, err = ParseDataHora("amanhã cedo", saoPaulo)
	var v *utils.ErrValidacao
	assert.ErrorAs(t, err, &v)
}

func TestValidarTransicao(t *testing.T) {
	assert.NoError(t, ValidarTransicao(StatusPendente, StatusConcluido, "cliente gostou"))
	assert.NoError(t, ValidarTransicao(StatusPendente, StatusCancelado, "chuva"))

	var v *utils.ErrValidacao
	assert.ErrorAs(t, ValidarTransicao(StatusPendente, StatusCancelado, " "), &v)
	assert.ErrorAs(t, ValidarTransicao(StatusPendente, StatusPendente, "x"), &v)

	var c *utils.ErrConflito
	assert.ErrorAs(t, ValidarTransicao(StatusCancelado, StatusConcluido, "x"), &c)
}

func TestHorariosDisponiveisHandler(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "data_hora" FROM "agendamentos"`)).
		WillReturnRows(sqlmock.NewRows([]string{"data_hora"}).
			AddRow(time.Date(2026, 3, 10, 15, 0, 0, 0, saoPaulo)))

	w := httptest.NewRecorder()
	h.HorariosDisponiveis(w, req(http.MethodGet, "/agendamentos/horarios-disponiveis?data=2026-03-10&imovelId=4", "", ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp HorariosResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-10", resp.Data)
	assert.Equal(t, "14:30", resp.Horarios[0])
	assert.NotContains(t, resp.Horarios, "15:00")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHorariosPublicoExigeEmpresa(t *testing.T) {
	h, _, _ := novoHandler(t)
	w := httptest.NewRecorder()
	h.HorariosDisponiveis(w, httptest.NewRequest(http.MethodGet, "/agendamentos/publico/horarios-disponiveis?data=2026-03-10", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCriarHorarioOcupado409(t *testing.T) {
	h, mock, pub := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "imoveis" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "data_hora" FROM "agendamentos"`)).
		WillReturnRows(sqlmock.NewRows([]string{"data_hora"}).
			AddRow(time.Date(2026, 3, 11, 10, 0, 0, 0, saoPaulo)))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	h.Criar(w, req(http.MethodPost, "/agendamentos", `{"dataHora":"2026-03-11T10:00","imovelId":4}`, ""))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, pub.eventos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarHorarioForaDaGrade409(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "imoveis" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "data_hora" FROM "agendamentos"`)).
		WillReturnRows(sqlmock.NewRows([]string{"data_hora"}))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	h.Criar(w, req(http.MethodPost, "/agendamentos", `{"dataHora":"2026-03-11T10:15","imovelId":4}`, ""))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarImovelDeOutraEmpresa400(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "imoveis" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	h.Criar(w, req(http.MethodPost, "/agendamentos", `{"dataHora":"2026-03-11T10:00","imovelId":99}`, ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarPublicaEvento(t *testing.T) {
	h, mock, pub := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "imoveis" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "data_hora" FROM "agendamentos"`)).
		WillReturnRows(sqlmock.NewRows([]string{"data_hora"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "agendamentos"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(30))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	h.Criar(w, req(http.MethodPost, "/agendamentos", `{"dataHora":"2026-03-11T10:00","imovelId":4,"nomeVisitante":"Paulo","telefoneVisitante":"(11) 98765-4321"}`, ""))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var a Agendamento
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, uint(30), a.ID)
	assert.Equal(t, StatusPendente, a.Status)
	assert.Equal(t, "11987654321", a.TelefoneVisitante)
	require.Len(t, pub.eventos, 1)
	assert.Equal(t, eventos.AgendamentoCriado, pub.eventos[0].Tipo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCriarPublicoSemTelefone400(t *testing.T) {
	h, _, _ := novoHandler(t)
	w := httptest.NewRecorder()
	body := `{"empresaId":2,"imovelId":4,"dataHora":"2026-03-11T10:00","nomeVisitante":"Paulo"}`
	h.CriarPublico(w, httptest.NewRequest(http.MethodPost, "/agendamentos/publico", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlterarStatusExigeMotivo(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "agendamentos" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "empresa_id", "imovel_id", "status"}).AddRow(30, 2, 4, "PENDENTE"))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	h.AlterarStatus(w, req(http.MethodPatch, "/agendamentos/30/status", `{"status":"CANCELADO"}`, "30"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlterarStatusGravaMotivo(t *testing.T) {
	h, mock, pub := novoHandler(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "agendamentos" WHERE .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "empresa_id", "imovel_id", "status"}).AddRow(30, 2, 4, "PENDENTE"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "agendamentos" SET`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	h.AlterarStatus(w, req(http.MethodPatch, "/agendamentos/30/status", `{"status":"concluido","motivo":"Visita realizada"}`, "30"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var a Agendamento
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &a))
	assert.Equal(t, StatusConcluido, a.Status)
	assert.Equal(t, "Visita realizada", a.Motivo)
	require.Len(t, pub.eventos, 1)
	assert.Equal(t, eventos.AgendamentoAtualizado, pub.eventos[0].Tipo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContarPendentesDesdeHoje(t *testing.T) {
	h, mock, _ := novoHandler(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "agendamentos"`)).
		WithArgs(2, "PENDENTE", time.Date(2026, 3, 10, 0, 0, 0, 0, saoPaulo)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	w := httptest.NewRecorder()
	h.Contar(w, req(http.MethodGet, "/agendamentos/count", "", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
