package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
)

type ctxKey string

const ctxSessao ctxKey = "sessao"

// ComSessao coloca a sessão no contexto.
func ComSessao(ctx context.Context, s Sessao) context.Context {
	return context.WithValue(ctx, ctxSessao, s)
}

// SessaoDe lê a sessão gravada pelo middleware.
func SessaoDe(ctx context.Context) (Sessao, bool) {
	s, ok := ctx.Value(ctxSessao).(Sessao)
	return s, ok
}

// MiddlewareAutenticacao exige Bearer válido. EventSource não envia
// cabeçalhos, então streams SSE podem mandar o token em ?access_token=.
func (m *TokenManager) MiddlewareAutenticacao(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		raw := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimPrefix(h, "Bearer ")
		} else if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
			raw = r.URL.Query().Get("access_token")
		}
		if raw == "" {
			utils.WriteError(w, http.StatusUnauthorized, "Token ausente")
			return
		}
		claims, err := m.Validar(raw)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		next.ServeHTTP(w, r.WithContext(ComSessao(r.Context(), claims.Sessao)))
	})
}

// RequirePerfil libera a rota apenas para os perfis informados.
func RequirePerfil(perfis ...models.Perfil) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SessaoDe(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "não autenticado")
				return
			}
			for _, p := range perfis {
				if s.Perfil == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteError(w, http.StatusForbidden, "acesso negado para o perfil "+string(s.Perfil))
		})
	}
}
