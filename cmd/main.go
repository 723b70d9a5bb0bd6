package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imobgestor/api-imobiliaria/internal/agendamento"
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/cliente"
	"github.com/imobgestor/api-imobiliaria/internal/config"
	"github.com/imobgestor/api-imobiliaria/internal/configuracao"
	"github.com/imobgestor/api-imobiliaria/internal/dashboard"
	"github.com/imobgestor/api-imobiliaria/internal/empresa"
	"github.com/imobgestor/api-imobiliaria/internal/eventos"
	"github.com/imobgestor/api-imobiliaria/internal/fechamento"
	"github.com/imobgestor/api-imobiliaria/internal/financeiro"
	"github.com/imobgestor/api-imobiliaria/internal/historico"
	"github.com/imobgestor/api-imobiliaria/internal/imovel"
	"github.com/imobgestor/api-imobiliaria/internal/lead"
	"github.com/imobgestor/api-imobiliaria/internal/negociacao"
	"github.com/imobgestor/api-imobiliaria/internal/observability"
	"github.com/imobgestor/api-imobiliaria/internal/router"
	"github.com/imobgestor/api-imobiliaria/internal/storage"
	"github.com/imobgestor/api-imobiliaria/internal/usuario"
	"github.com/imobgestor/api-imobiliaria/internal/utils/db"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("servidor encerrado com erro", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// valores monetários saem como número no JSON
	decimal.MarshalJSONWithoutQuotes = true
	loc := cfg.Location()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.TracingEnabled, cfg.OTLPEndpoint, "api-imobiliaria")
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	database, err := db.GetDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := db.Migrar(database,
		&empresa.Empresa{},
		&usuario.Usuario{},
		&auth.RefreshToken{},
		&configuracao.Configuracao{},
		&cliente.Cliente{},
		&imovel.Imovel{},
		&negociacao.Negociacao{},
		&historico.Registro{},
		&financeiro.Fechamento{},
		&financeiro.Transacao{},
		&lead.Lead{},
		&agendamento.Agendamento{},
	); err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	bus := eventos.NewBus(64, metrics, logger)
	defer bus.Fechar()

	disco := storage.NewDisco(cfg.UploadDir, cfg.PublicBaseURL)
	configs := configuracao.NewService(ctx, database, 5*time.Minute, logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	dash := dashboard.NewHandler(database, loc, logger)

	handlers := router.Handlers{
		Auth: &auth.Handler{
			DB:           database,
			Contas:       usuario.Contas{},
			Tokens:       tokens,
			RefreshTTL:   cfg.JWTRefreshTTL,
			CookieSecure: cfg.CookieSecure,
			Logger:       logger,
		},
		Usuarios:     usuario.NewHandler(database, logger),
		Empresas:     empresa.NewHandler(database, disco, metrics, logger),
		Clientes:     cliente.NewHandler(database, logger),
		Imoveis:      imovel.NewHandler(database, disco, metrics, logger),
		Negociacoes:  negociacao.NewHandler(database, bus, metrics, logger),
		Fechamento:   fechamento.NewHandler(database, configs, bus, metrics, loc, logger),
		Historico:    historico.NewHandler(database, logger),
		Financeiro:   financeiro.NewHandler(database, loc, cfg.PublicBaseURL, logger),
		Leads:        lead.NewHandler(database, bus, metrics, logger),
		Agendamentos: agendamento.NewHandler(database, bus, loc, logger),
		Configuracao: &configuracao.Handler{Service: configs, Logger: logger},
		Dashboard:    dash,
		Eventos:      &eventos.SSEHandler{Bus: bus, Logger: logger, Heartbeat: 25 * time.Second},
	}

	limiter := router.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	go limiter.Limpar(ctx, time.Minute, 10*time.Minute)

	if cfg.WebhookURL != "" {
		go eventos.NewWebhook(cfg.WebhookURL, logger).Run(ctx, bus)
	}

	poller := &eventos.Poller[[]eventos.Contadores]{
		Intervalo: cfg.ContadoresIntervalo,
		Buscar:    dash.Service.Contadores,
		Entregar:  eventos.PublicarContadores(bus),
		Logger:    logger,
	}
	go poller.Run(ctx)

	agenda := cron.New(cron.WithLocation(loc))
	if _, err := financeiro.NewJobAtrasos(database, loc, logger).Agendar(ctx, agenda); err != nil {
		return fmt.Errorf("agendar job de atrasos: %w", err)
	}
	agenda.Start()
	defer func() { <-agenda.Stop().Done() }()

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: router.New(handlers, router.Options{
			Tokens:      tokens,
			Metrics:     metrics,
			Limiter:     limiter,
			CORSOrigins: cfg.CORSOrigins,
			UploadDir:   cfg.UploadDir,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// streams SSE terminam junto com o processo
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	erros := make(chan error, 1)
	go func() {
		logger.Info("servidor iniciado", zap.Int("port", cfg.Port), zap.String("timezone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			erros <- err
		}
		close(erros)
	}()

	select {
	case err := <-erros:
		return err
	case <-ctx.Done():
	}

	logger.Info("encerrando servidor")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
