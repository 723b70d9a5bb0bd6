// Package router monta a tabela de rotas e a cadeia de middlewares da API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/imobgestor/api-imobiliaria/internal/agendamento"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/configuracao"
	"github.com/imobgestor/api-imobiliaria/internal/dashboard"
	"github.com/imobgestor/api-imobiliaria/internal/empresa"
	"github.com/imobgestor/api-imobiliaria/internal/fechamento"
	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/historico"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/lead"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/negociacao"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/usuario"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth         *auth.Handler
	Usuarios     *usuario.Handler
	Empresas     *empresa.Handler
	Clientes     *cliente.Handler
	Imoveis      *imovel.Handler
	Negociacoes  *negociacao.Handler
	Fechamento   *fechamento.Handler
	Historico    *historico.Handler
	Financeiro   *financeiro.Handler
	Leads        *lead.Handler
	Agendamentos *agendamento.Handler
	Configuracao *configuracao.Handler
	Dashboard    *dashboard.Handler
	Eventos      http.Handler
}

type Options struct {
	Tokens      *auth.TokenManager
	Metrics     *observability.Metrics
	Limiter     *RateLimiter
	CORSOrigins []string
	UploadDir   string
	Logger      *zap.Logger
}

const id = "{id:[0-9]+}"

// New registra as rotas. Rotas fixas (/count, /publico...) vêm antes das com {id}.
func New(h Handlers, o Options) http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "rota não encontrada")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "método não permitido")
	})
	r.Use(semCache)
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if o.Metrics != nil {
		r.Handle("/metrics", o.Metrics.Handler()).Methods(http.MethodGet)
	}
	if o.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(o.UploadDir))))
	}

	// Públicas
	pub := r.NewRoute().Subrouter()
	if o.Limiter != nil {
		pub.Use(o.Limiter.Handler)
	}
	pub.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	pub.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods(http.MethodPost)
	pub.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)
	pub.HandleFunc("/auth/register-master", h.Empresas.RegisterMaster).Methods(http.MethodPost)
	pub.HandleFunc("/leads/publico", h.Leads.CriarPublico).Methods(http.MethodPost)
	pub.HandleFunc("/agendamentos/publico", h.Agendamentos.CriarPublico).Methods(http.MethodPost)
	pub.HandleFunc("/agendamentos/publico/horarios-disponiveis", h.Agendamentos.HorariosDisponiveis).Methods(http.MethodGet)
	pub.HandleFunc("/imoveis/publico", h.Imoveis.ListarPublico).Methods(http.MethodGet)
	pub.HandleFunc("/financeiro/validar/{codigo}", h.Financeiro.Validar).Methods(http.MethodGet)

	// Autenticadas
	api := r.NewRoute().Subrouter()
	api.Use(o.Tokens.MiddlewareAutenticacao)

	api.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet)
	api.Handle("/eventos", h.Eventos).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/resumo", h.Dashboard.Resumo).Methods(http.MethodGet)

	gestores := auth.RequirePerfil(models.PerfilAdmGeral, models.PerfilGerente)
	admin := auth.RequirePerfil(models.PerfilAdmGeral)

	api.HandleFunc("/usuarios", h.Usuarios.Listar).Methods(http.MethodGet)
	api.HandleFunc("/usuarios/"+id, h.Usuarios.BuscarPorID).Methods(http.MethodGet)
	api.Handle("/usuarios", gestores(http.HandlerFunc(h.Usuarios.Criar))).Methods(http.MethodPost)
	api.Handle("/usuarios/delete-batch", gestores(http.HandlerFunc(h.Usuarios.DeleteBatch))).Methods(http.MethodPost)
	api.Handle("/usuarios/"+id, gestores(http.HandlerFunc(h.Usuarios.Atualizar))).Methods(http.MethodPut)
	api.Handle("/usuarios/"+id, gestores(http.HandlerFunc(h.Usuarios.Deletar))).Methods(http.MethodDelete)

	api.HandleFunc("/empresas", h.Empresas.Listar).Methods(http.MethodGet)
	api.HandleFunc("/empresas/"+id, h.Empresas.BuscarPorID).Methods(http.MethodGet)
	api.Handle("/empresas", admin(http.HandlerFunc(h.Empresas.Criar))).Methods(http.MethodPost)
	api.Handle("/empresas/delete-batch", admin(http.HandlerFunc(h.Empresas.DeleteBatch))).Methods(http.MethodPost)
	api.Handle("/empresas/"+id, gestores(http.HandlerFunc(h.Empresas.Atualizar))).Methods(http.MethodPut)
	api.Handle("/empresas/"+id, admin(http.HandlerFunc(h.Empresas.Deletar))).Methods(http.MethodDelete)
	api.Handle("/empresas/"+id+"/logo", gestores(http.HandlerFunc(h.Empresas.UploadLogo))).Methods(http.MethodPost)
	api.Handle("/empresas/"+id+"/assinatura", gestores(http.HandlerFunc(h.Empresas.UploadAssinatura))).Methods(http.MethodPost)

	api.HandleFunc("/configuracoes", h.Configuracao.Obter).Methods(http.MethodGet)
	api.Handle("/configuracoes", gestores(http.HandlerFunc(h.Configuracao.Atualizar))).Methods(http.MethodPut)

	api.HandleFunc("/clientes", h.Clientes.Listar).Methods(http.MethodGet)
	api.HandleFunc("/clientes", h.Clientes.Criar).Methods(http.MethodPost)
	api.HandleFunc("/clientes/"+id, h.Clientes.BuscarPorID).Methods(http.MethodGet)
	api.HandleFunc("/clientes/"+id, h.Clientes.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/clientes/"+id, h.Clientes.Deletar).Methods(http.MethodDelete)

	api.HandleFunc("/imoveis", h.Imoveis.Listar).Methods(http.MethodGet)
	api.HandleFunc("/imoveis", h.Imoveis.Criar).Methods(http.MethodPost)
	api.HandleFunc("/imoveis/"+id, h.Imoveis.BuscarPorID).Methods(http.MethodGet)
	api.HandleFunc("/imoveis/"+id, h.Imoveis.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/imoveis/"+id, h.Imoveis.Deletar).Methods(http.MethodDelete)
	api.HandleFunc("/imoveis/"+id+"/status", h.Imoveis.AtualizarStatus).Methods(http.MethodPatch)
	api.HandleFunc("/imoveis/"+id+"/upload-foto", h.Imoveis.UploadFotos).Methods(http.MethodPost)
	api.HandleFunc("/imoveis/"+id+"/foto/{url:.+}", h.Imoveis.RemoverFoto).Methods(http.MethodDelete)

	api.HandleFunc("/negociacoes", h.Negociacoes.Listar).Methods(http.MethodGet)
	api.HandleFunc("/negociacoes", h.Negociacoes.Criar).Methods(http.MethodPost)
	api.HandleFunc("/negociacoes/"+id, h.Negociacoes.BuscarPorID).Methods(http.MethodGet)
	api.HandleFunc("/negociacoes/"+id, h.Negociacoes.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/negociacoes/"+id, h.Negociacoes.Deletar).Methods(http.MethodDelete)
	api.HandleFunc("/negociacoes/"+id+"/status", h.Negociacoes.AlterarStatus).Methods(http.MethodPatch)
	api.HandleFunc("/negociacoes/"+id+"/refazer", h.Negociacoes.Refazer).Methods(http.MethodPost)
	api.HandleFunc("/negociacoes/"+id+"/fechamento", h.Fechamento.Fechar).Methods(http.MethodPost)
	api.HandleFunc("/negociacoes/"+id+"/historico", h.Historico.ListarNegociacao).Methods(http.MethodGet)
	api.HandleFunc("/negociacoes/"+id+"/historico", h.Historico.CriarNegociacao).Methods(http.MethodPost)
	api.HandleFunc("/fechamento/simular", h.Fechamento.Simular).Methods(http.MethodPost)

	api.HandleFunc("/financeiro", h.Financeiro.Listar).Methods(http.MethodGet)
	api.HandleFunc("/financeiro", h.Financeiro.Criar).Methods(http.MethodPost)
	api.HandleFunc("/financeiro/resumo", h.Financeiro.Resumo).Methods(http.MethodGet)
	api.HandleFunc("/financeiro/"+id, h.Financeiro.BuscarPorID).Methods(http.MethodGet)
	api.HandleFunc("/financeiro/"+id, h.Financeiro.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/financeiro/"+id, h.Financeiro.Deletar).Methods(http.MethodDelete)
	api.HandleFunc("/financeiro/"+id+"/pagar", h.Financeiro.Pagar).Methods(http.MethodPatch)
	api.HandleFunc("/financeiro/"+id+"/recibo", h.Financeiro.Recibo).Methods(http.MethodGet)

	api.HandleFunc("/leads", h.Leads.Listar).Methods(http.MethodGet)
	api.HandleFunc("/leads", h.Leads.Criar).Methods(http.MethodPost)
	api.HandleFunc("/leads/count", h.Leads.Contar).Methods(http.MethodGet)
	api.HandleFunc("/leads/"+id, h.Leads.BuscarPorID).Methods(http.MethodGet)
	api.HandleFunc("/leads/"+id, h.Leads.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/leads/"+id, h.Leads.Deletar).Methods(http.MethodDelete)
	api.HandleFunc("/leads/"+id+"/status", h.Leads.AlterarStatus).Methods(http.MethodPatch)
	api.HandleFunc("/leads/"+id+"/negociacao", h.Leads.Promover).Methods(http.MethodPost)
	api.HandleFunc("/leads/"+id+"/historico", h.Historico.ListarLead).Methods(http.MethodGet)
	api.HandleFunc("/leads/"+id+"/historico", h.Historico.CriarLead).Methods(http.MethodPost)

	api.HandleFunc("/agendamentos", h.Agendamentos.Listar).Methods(http.MethodGet)
	api.HandleFunc("/agendamentos", h.Agendamentos.Criar).Methods(http.MethodPost)
	api.HandleFunc("/agendamentos/count", h.Agendamentos.Contar).Methods(http.MethodGet)
	api.HandleFunc("/agendamentos/horarios-ocupados", h.Agendamentos.HorariosOcupados).Methods(http.MethodGet)
	api.HandleFunc("/agendamentos/horarios-disponiveis", h.Agendamentos.HorariosDisponiveis).Methods(http.MethodGet)
	api.HandleFunc("/agendamentos/"+id, h.Agendamentos.BuscarPorID).Methods(http.MethodGet)
	api.HandleFunc("/agendamentos/"+id, h.Agendamentos.Atualizar).Methods(http.MethodPut)
	api.HandleFunc("/agendamentos/"+id, h.Agendamentos.Deletar).Methods(http.MethodDelete)
	api.HandleFunc("/agendamentos/"+id+"/status", h.Agendamentos.AlterarStatus).Methods(http.MethodPatch)

	c := cors.New(cors.Options{
		AllowedOrigins:   o.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	var handler http.Handler = r
	handler = c.Handler(handler)
	handler = observability.RequestLogger(o.Logger)(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	return handler
}

// semCache: respostas de GET não devem ser reaproveitadas pelo navegador.
func semCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}
