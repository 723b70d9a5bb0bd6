package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const origem = "http://localhost:5173"

func novoRouter(t *testing.T) (http.Handler, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("segredo-de-teste", time.Hour)
	h := New(Handlers{}, Options{
		Tokens:      tokens,
		Metrics:     observability.NewMetrics(),
		CORSOrigins: []string{origem},
		Logger:      zap.NewNop(),
	})
	return h, tokens
}

func TestHealthzSemCache(t *testing.T) {
	h, _ := novoRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsExposto(t *testing.T) {
	h, _ := novoRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/healthz")
}

func TestRotaProtegidaSemToken(t *testing.T) {
	h, _ := novoRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clientes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPerfilCorretorNaoCriaUsuario(t *testing.T) {
	h, tokens := novoRouter(t)
	tok, err := tokens.Gerar(auth.Sessao{UsuarioID: 3, EmpresaID: 1, Perfil: models.PerfilCorretor})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/usuarios", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRotaInexistente(t *testing.T) {
	h, _ := novoRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nao-existe", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "rota não encontrada")
}

func TestMetodoNaoPermitido(t *testing.T) {
	h, _ := novoRouter(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := novoRouter(t)
	r := httptest.NewRequest(http.MethodOptions, "/clientes", nil)
	r.Header.Set("Origin", origem)
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, origem, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSOrigemDesconhecida(t *testing.T) {
	h, _ := novoRouter(t)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set("Origin", "http://malicioso.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterPorIP(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := rl.Handler(ok)

	chamar := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/leads/publico", nil)
		r.RemoteAddr = ip + ":5123"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, chamar("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, chamar("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, chamar("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, chamar("10.0.0.2"))
}
